package schedule

import "time"

// maxInactivePushes bounds the rescan loop in pushPastInactiveDays. A
// delivery window can never cross more than a few closed days in practice;
// the bound only guards against a pathological oracle.
const maxInactivePushes = 62

// EarliestPickup returns the first instant a pickup may be scheduled.
// The pickup lead always applies; on top of it, orders placed outside
// collection hours are floored to the proceeding hour of the next day a
// van goes out.
func (e *Engine) EarliestPickup(now time.Time) time.Time {
	now = now.In(e.policy.Location)
	earliest := now.Add(time.Duration(e.policy.PickupLeadHours) * time.Hour)

	var floorDay time.Time
	wd := now.Weekday()
	day, open := e.hours.ForDay(wd)
	switch {
	case open && now.Hour() <= day.Open:
		// Before opening: orders proceed later the same morning.
		floorDay = now
	case wd >= time.Monday && wd <= time.Friday && now.Hour() >= day.LastPickup:
		floorDay = now.AddDate(0, 0, 1)
	case wd == time.Saturday && now.Hour() >= day.LastPickup:
		// The last Saturday round has left; Sunday is closed.
		floorDay = now.AddDate(0, 0, 2)
	case wd == time.Sunday:
		floorDay = now.AddDate(0, 0, 1)
	}
	if !floorDay.IsZero() {
		floor := time.Date(floorDay.Year(), floorDay.Month(), floorDay.Day(),
			e.policy.ProceedingHour, 0, 0, 0, e.policy.Location)
		if floor.After(earliest) {
			earliest = floor
		}
	}
	return earliest
}

// EarliestDelivery returns the first instant laundry picked up at the given
// time can come back. The delivery lead is counted in open-for-business
// days: every Sunday or bank holiday inside the window pushes the bound a
// further day out. The result is then snapped into opening hours.
func (e *Engine) EarliestDelivery(pickup time.Time) time.Time {
	pickup = pickup.In(e.policy.Location)
	due := pickup.Add(time.Duration(e.policy.DeliveryLeadHours) * time.Hour)
	due = e.pushPastInactiveDays(pickup, due)

	wd := due.Weekday()
	day, open := e.hours.ForDay(wd)
	switch {
	case open && due.Hour() < day.Open:
		due = time.Date(due.Year(), due.Month(), due.Day(), day.Open, 0, 0, 0, e.policy.Location)
	case wd >= time.Monday && wd <= time.Friday && due.Hour() >= day.Close:
		next := due.AddDate(0, 0, 1)
		nextDay, _ := e.hours.ForDay(next.Weekday())
		due = time.Date(next.Year(), next.Month(), next.Day(), nextDay.Open, 0, 0, 0, e.policy.Location)
	case wd == time.Saturday && due.Hour() >= day.Close:
		// Past Saturday closing lands on Monday morning, which may itself
		// be a bank holiday.
		monday := due.AddDate(0, 0, 2)
		mondayHours, _ := e.hours.ForDay(time.Monday)
		due = time.Date(monday.Year(), monday.Month(), monday.Day(), mondayHours.Open, 0, 0, 0, e.policy.Location)
		due = e.pushPastInactiveDays(due.AddDate(0, 0, -1), due)
	}
	return due
}

// pushPastInactiveDays walks the dates strictly after start up to and
// including due's date; every Sunday or non-working weekday found pushes due
// out a day and restarts the scan from the day after the hit, until a pass
// finds nothing. Pushing past a Saturday can expose a new Sunday inside the
// window, so a single pass is not enough.
func (e *Engine) pushPastInactiveDays(start, due time.Time) time.Time {
	pushes := 0
	for pushes < maxInactivePushes {
		hit := false
		for d := startOfDay(start).AddDate(0, 0, 1); !d.After(startOfDay(due)); d = d.AddDate(0, 0, 1) {
			if e.inactiveDay(d) {
				due = due.AddDate(0, 0, 1)
				start = d
				hit = true
				pushes++
				break
			}
		}
		if !hit {
			return due
		}
	}
	return due
}

// inactiveDay reports whether no vans run on the given date: every Sunday,
// and any weekday the oracle calls a non-working day. Saturdays are working
// days here regardless of the oracle; UK bank holidays fall on weekdays.
func (e *Engine) inactiveDay(d time.Time) bool {
	switch wd := d.Weekday(); {
	case wd == time.Sunday:
		return true
	case wd >= time.Monday && wd <= time.Friday:
		return !e.oracle.IsWorkingDay(d)
	default:
		return false
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
