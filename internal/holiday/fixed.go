package holiday

import "time"

// Fixed is a working-day oracle over an explicit holiday list. Weekends are
// non-working days as usual.
type Fixed struct {
	dates map[string]bool
}

func NewFixed(holidays ...time.Time) *Fixed {
	f := &Fixed{dates: make(map[string]bool, len(holidays))}
	for _, d := range holidays {
		f.dates[d.Format("2006-01-02")] = true
	}
	return f
}

func (f *Fixed) IsWorkingDay(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !f.dates[t.Format("2006-01-02")]
}
