package schedule

import (
	"fmt"
	"time"
)

// daysPerWeek is the number of rendered days per calendar week. Sunday is
// never shown.
const daysPerWeek = 6

const dateLayout = "2006-01-02"

// Slot is one bookable hour on the calendar.
type Slot struct {
	Hour      int    `json:"hour"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// Day is one Monday-Saturday column of the calendar.
type Day struct {
	Date       string `json:"date"`
	DayName    string `json:"day_name"`
	MonthName  string `json:"month_name"`
	DayOfMonth int    `json:"day_of_month"`
	Slots      []Slot `json:"time_slots"`
}

// Grid is the booking calendar: Weeks x 6 days, each day carrying the same
// full hour range so the rows line up when rendered.
type Grid struct {
	Days []Day `json:"days"`
}

// PickupGrid builds the pickup calendar for the given instant: the base
// grid restricted to the earliest-pickup cutoff and the pickup lookahead.
// The result is deterministic for a given now; capacity is layered on
// separately.
func (e *Engine) PickupGrid(now time.Time) *Grid {
	now = now.In(e.policy.Location)
	g := e.baseGrid(now)
	notAfter := now.AddDate(0, 0, e.policy.MaxPickupDays)
	g.MarkUnavailable(e.EarliestPickup(now), notAfter, e.policy.Location)
	return g
}

// DeliveryGrid builds the delivery calendar for an order picked up at the
// given time. Only the lower bound applies; the horizon already caps the
// far end.
func (e *Engine) DeliveryGrid(now, pickup time.Time) *Grid {
	now = now.In(e.policy.Location)
	g := e.baseGrid(now)
	g.MarkUnavailable(e.EarliestDelivery(pickup), time.Time{}, e.policy.Location)
	return g
}

// baseGrid lays out the full calendar with per-day opening hours, bank
// holiday knockouts, the booking horizon, and the same-day pickup lead
// applied. Cutoff bounds are marked afterwards.
func (e *Engine) baseGrid(now time.Time) *Grid {
	minOpen, maxClose := e.hours.Span()
	monday := e.startingMonday(now)
	today := startOfDay(now)

	g := &Grid{Days: make([]Day, 0, e.policy.Weeks*daysPerWeek)}
	for week := 0; week < e.policy.Weeks; week++ {
		for offset := 0; offset < daysPerWeek; offset++ {
			d := monday.AddDate(0, 0, week*7+offset)
			hrs, _ := e.hours.ForDay(d.Weekday())
			holidayOut := offset < 5 && !e.oracle.IsWorkingDay(d)
			dist := daysBetween(today, d)
			outOfRange := dist < 0 || dist > e.policy.HorizonDays
			sameDay := dist == 0

			day := Day{
				Date:       d.Format(dateLayout),
				DayName:    d.Weekday().String(),
				MonthName:  d.Month().String(),
				DayOfMonth: d.Day(),
				Slots:      make([]Slot, 0, maxClose-minOpen),
			}
			for h := minOpen; h < maxClose; h++ {
				avail := hrs.Open <= h && h < hrs.Close
				if holidayOut || outOfRange {
					avail = false
				}
				if sameDay && h < now.Hour()+e.policy.PickupLeadHours {
					avail = false
				}
				day.Slots = append(day.Slots, Slot{Hour: h, Label: hourLabel(h), Available: avail})
			}
			g.Days = append(g.Days, day)
		}
	}
	return g
}

// startingMonday picks the Monday the calendar opens on. Mid-week the
// current week is shown with its past days closed off. A Sunday, or a
// Saturday after the last bookable slot has slipped out of reach, rolls
// straight into next week.
func (e *Engine) startingMonday(now time.Time) time.Time {
	switch now.Weekday() {
	case time.Sunday:
		return startOfDay(now.AddDate(0, 0, 1))
	case time.Saturday:
		if now.Hour() > e.hours.lastSaturdaySlot()-e.policy.PickupLeadHours {
			return startOfDay(now.AddDate(0, 0, 2))
		}
		return startOfDay(now.AddDate(0, 0, -5))
	default:
		return startOfDay(now.AddDate(0, 0, -(int(now.Weekday()) - 1)))
	}
}

// MarkUnavailable closes off every slot strictly before notBefore or
// strictly after notAfter. A zero bound is ignored. A slot exactly on a
// bound stays available.
func (g *Grid) MarkUnavailable(notBefore, notAfter time.Time, loc *time.Location) {
	for di := range g.Days {
		day := &g.Days[di]
		d, err := time.ParseInLocation(dateLayout, day.Date, loc)
		if err != nil {
			continue
		}
		for si := range day.Slots {
			at := time.Date(d.Year(), d.Month(), d.Day(), day.Slots[si].Hour, 0, 0, 0, loc)
			if !notBefore.IsZero() && at.Before(notBefore) {
				day.Slots[si].Available = false
			}
			if !notAfter.IsZero() && at.After(notAfter) {
				day.Slots[si].Available = false
			}
		}
	}
}

// MarkFull closes off the given fully-booked instants. Instants that do not
// correspond to a rendered slot are ignored.
func (g *Grid) MarkFull(full []time.Time, loc *time.Location) {
	if len(full) == 0 {
		return
	}
	taken := make(map[string]map[int]bool, len(full))
	for _, at := range full {
		local := at.In(loc)
		date := local.Format(dateLayout)
		if taken[date] == nil {
			taken[date] = make(map[int]bool)
		}
		taken[date][local.Hour()] = true
	}
	for di := range g.Days {
		hours := taken[g.Days[di].Date]
		if hours == nil {
			continue
		}
		for si := range g.Days[di].Slots {
			if hours[g.Days[di].Slots[si].Hour] {
				g.Days[di].Slots[si].Available = false
			}
		}
	}
}

// HasAvailable reports whether the slot at the given instant exists on the
// grid and is still available.
func (g *Grid) HasAvailable(at time.Time, loc *time.Location) bool {
	local := at.In(loc)
	date := local.Format(dateLayout)
	for _, day := range g.Days {
		if day.Date != date {
			continue
		}
		for _, s := range day.Slots {
			if s.Hour == local.Hour() {
				return s.Available
			}
		}
		return false
	}
	return false
}

// Bounds returns the instant range covered by the grid, from the first
// day's midnight through the end of the last day.
func (g *Grid) Bounds(loc *time.Location) (from, to time.Time) {
	if len(g.Days) == 0 {
		return time.Time{}, time.Time{}
	}
	first, err := time.ParseInLocation(dateLayout, g.Days[0].Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	last, err := time.ParseInLocation(dateLayout, g.Days[len(g.Days)-1].Date, loc)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return first, last.AddDate(0, 0, 1).Add(-time.Second)
}

// hourLabel renders a slot start hour as a 12-hour range, suffixed with the
// meridiem of the end hour: "8 - 9am", "12 - 1pm", "11 - 12am".
func hourLabel(hour int) string {
	start := hour % 12
	if start == 0 {
		start = 12
	}
	end := (hour + 1) % 12
	if end == 0 {
		end = 12
	}
	suffix := "pm"
	if hour+1 < 12 || hour+1 == 24 {
		suffix = "am"
	}
	return fmt.Sprintf("%d - %d%s", start, end, suffix)
}

// daysBetween counts whole calendar days from a to b, ignoring clock
// offsets so a DST transition inside the range does not skew the count.
func daysBetween(a, b time.Time) int {
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
