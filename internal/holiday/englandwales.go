// Package holiday provides working-day oracles for scheduling. The
// EnglandWales calendar computes the statutory bank holidays for any year;
// Fixed wraps an explicit date list for tests and overrides.
package holiday

import (
	"sync"
	"time"
)

// EnglandWales reports working days under the England and Wales bank
// holiday calendar. Weekends are never working days. Holiday sets are
// computed per year on first use and cached.
type EnglandWales struct {
	mu    sync.Mutex
	years map[int]map[string]bool
}

func NewEnglandWales() *EnglandWales {
	return &EnglandWales{years: make(map[int]map[string]bool)}
}

func (c *EnglandWales) IsWorkingDay(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !c.isHoliday(t)
}

func (c *EnglandWales) isHoliday(t time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	year := t.Year()
	set, ok := c.years[year]
	if !ok {
		set = holidaySet(year)
		c.years[year] = set
	}
	return set[t.Format("2006-01-02")]
}

func holidaySet(year int) map[string]bool {
	set := make(map[string]bool, 10)
	add := func(d time.Time) { set[d.Format("2006-01-02")] = true }

	add(observed(date(year, time.January, 1)))

	easter := easterSunday(year)
	add(easter.AddDate(0, 0, -2)) // Good Friday
	add(easter.AddDate(0, 0, 1))  // Easter Monday

	// Early May and spring bank holidays, with the proclaimed one-off
	// moves: VE Day 75 in 2020, the platinum jubilee pair in 2022.
	switch year {
	case 2020:
		add(date(2020, time.May, 8))
		add(lastWeekday(2020, time.May, time.Monday))
	case 2022:
		add(firstWeekday(2022, time.May, time.Monday))
		add(date(2022, time.June, 2))
		add(date(2022, time.June, 3))
	default:
		add(firstWeekday(year, time.May, time.Monday))
		add(lastWeekday(year, time.May, time.Monday))
	}

	add(lastWeekday(year, time.August, time.Monday))

	// One-off proclaimed holidays.
	switch year {
	case 2011:
		add(date(2011, time.April, 29)) // royal wedding
	case 2012:
		add(date(2012, time.June, 5)) // diamond jubilee
	case 2022:
		add(date(2022, time.September, 19)) // state funeral
	case 2023:
		add(date(2023, time.May, 8)) // coronation
	}

	// Christmas Day and Boxing Day substitute forward past the weekend and
	// past each other.
	christmas := substitute(date(year, time.December, 25), set)
	add(christmas)
	add(substitute(date(year, time.December, 26), set))

	return set
}

// observed shifts a weekend holiday to the following Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	}
	return d
}

// substitute moves a holiday forward to the next weekday not already taken.
func substitute(d time.Time, taken map[string]bool) time.Time {
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday || taken[d.Format("2006-01-02")] {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func firstWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := date(year, month, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func lastWeekday(year int, month time.Month, wd time.Weekday) time.Time {
	d := date(year, month+1, 1).AddDate(0, 0, -1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// easterSunday computes Gregorian Easter with the anonymous algorithm.
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return date(year, time.Month(month), day)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
