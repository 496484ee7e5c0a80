package schedule

import (
	"fmt"
	"time"
)

// DayHours is the bookable range for one weekday. Close is exclusive:
// Open=8, Close=22 means the last bookable slot starts at 21:00.
// LastPickup is the hour after which no same-day pickup round departs.
type DayHours struct {
	Open       int
	Close      int
	LastPickup int
}

// OperatingHours holds the per-weekday hours for Monday through Saturday.
// Sunday is always closed.
type OperatingHours struct {
	days [6]DayHours // indexed Monday=0 .. Saturday=5
}

// NewOperatingHours applies weekday hours to Monday-Friday and the given
// Saturday hours to Saturday.
func NewOperatingHours(weekday, saturday DayHours) OperatingHours {
	var oh OperatingHours
	for i := 0; i < 5; i++ {
		oh.days[i] = weekday
	}
	oh.days[5] = saturday
	return oh
}

// ForDay returns the hours for the given weekday. The second return is
// false on Sunday.
func (oh OperatingHours) ForDay(wd time.Weekday) (DayHours, bool) {
	if wd == time.Sunday {
		return DayHours{}, false
	}
	return oh.days[int(wd)-1], true
}

func (oh OperatingHours) Validate() error {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	for i, d := range oh.days {
		if d.Open < 0 || d.Open >= 24 {
			return fmt.Errorf("%s: opening hour %d out of range", names[i], d.Open)
		}
		if d.Close <= d.Open || d.Close > 24 {
			return fmt.Errorf("%s: closing hour %d must be after opening hour %d and at most 24", names[i], d.Close, d.Open)
		}
		if d.LastPickup < d.Open || d.LastPickup >= d.Close {
			return fmt.Errorf("%s: last pickup hour %d must fall within opening hours [%d,%d)", names[i], d.LastPickup, d.Open, d.Close)
		}
	}
	return nil
}

// Span returns the earliest opening and latest closing hour across the week.
// The calendar grid renders this full range for every day so the rows line up,
// with per-day availability filled in from each day's own hours.
func (oh OperatingHours) Span() (open, close int) {
	open, close = 24, 0
	for _, d := range oh.days {
		if d.Open < open {
			open = d.Open
		}
		if d.Close > close {
			close = d.Close
		}
	}
	return open, close
}

// lastSaturdaySlot is the start hour of the last bookable Saturday slot,
// derived from the configured Saturday range rather than a constant.
func (oh OperatingHours) lastSaturdaySlot() int {
	return oh.days[5].Close - 1
}

// Policy carries the cutoff and grid constants.
type Policy struct {
	PickupLeadHours   int // minimum hours between "now" and a pickup
	DeliveryLeadHours int // minimum hours between pickup and delivery
	MaxPickupDays     int // pickup lookahead from "now"
	ProceedingHour    int // first hour of the day at which new orders proceed
	Weeks             int // grid span in weeks
	HorizonDays       int // days from today after which slots are closed off
	Location          *time.Location
}

// DefaultPolicy returns the production constants.
func DefaultPolicy(loc *time.Location) Policy {
	return Policy{
		PickupLeadHours:   2,
		DeliveryLeadHours: 48,
		MaxPickupDays:     6,
		ProceedingHour:    9,
		Weeks:             5,
		HorizonDays:       28,
		Location:          loc,
	}
}

func (p Policy) Validate() error {
	if p.Location == nil {
		return fmt.Errorf("location is required")
	}
	if p.PickupLeadHours < 0 || p.DeliveryLeadHours < 0 {
		return fmt.Errorf("lead hours must not be negative")
	}
	if p.ProceedingHour < 0 || p.ProceedingHour >= 24 {
		return fmt.Errorf("proceeding hour %d out of range", p.ProceedingHour)
	}
	if p.Weeks <= 0 || p.HorizonDays <= 0 || p.MaxPickupDays <= 0 {
		return fmt.Errorf("grid window must be positive")
	}
	return nil
}

// DefaultOperatingHours returns the production hours: Monday-Friday 8-22
// with last pickup at 17, Saturday 8-17 with last pickup at 14.
func DefaultOperatingHours() OperatingHours {
	return NewOperatingHours(
		DayHours{Open: 8, Close: 22, LastPickup: 17},
		DayHours{Open: 8, Close: 17, LastPickup: 14},
	)
}
