package schedule

import (
	"fmt"
	"time"
)

// WorkingDayOracle reports whether a given date is a normal working day.
// Bank holidays and weekends are not working days.
type WorkingDayOracle interface {
	IsWorkingDay(t time.Time) bool
}

// Engine computes pickup and delivery cutoffs and builds the booking
// calendar. All answers are in the policy's timezone.
type Engine struct {
	hours  OperatingHours
	policy Policy
	oracle WorkingDayOracle
}

func NewEngine(hours OperatingHours, policy Policy, oracle WorkingDayOracle) (*Engine, error) {
	if err := hours.Validate(); err != nil {
		return nil, fmt.Errorf("operating hours: %w", err)
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}
	if oracle == nil {
		return nil, fmt.Errorf("working day oracle is required")
	}
	return &Engine{hours: hours, policy: policy, oracle: oracle}, nil
}

func (e *Engine) Location() *time.Location { return e.policy.Location }

func (e *Engine) Weeks() int { return e.policy.Weeks }
