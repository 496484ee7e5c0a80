package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestHourLabel(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{0, "12 - 1am"},
		{8, "8 - 9am"},
		{10, "10 - 11am"},
		{11, "11 - 12pm"},
		{12, "12 - 1pm"},
		{16, "4 - 5pm"},
		{23, "11 - 12am"},
	}
	for _, tc := range cases {
		if got := hourLabel(tc.hour); got != tc.want {
			t.Errorf("hourLabel(%d) = %q, want %q", tc.hour, got, tc.want)
		}
	}
}

func TestStartingMonday(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"midweek keeps the current week", at(loc, 2015, time.January, 7, 12, 0), at(loc, 2015, time.January, 5, 0, 0)},
		{"sunday starts next week", at(loc, 2015, time.January, 11, 12, 0), at(loc, 2015, time.January, 12, 0, 0)},
		{"saturday with slots left keeps the current week", at(loc, 2015, time.January, 10, 13, 0), at(loc, 2015, time.January, 5, 0, 0)},
		{"saturday past the last reachable slot starts next week", at(loc, 2015, time.January, 10, 15, 0), at(loc, 2015, time.January, 12, 0, 0)},
		{"bst saturday afternoon starts next week", at(loc, 2015, time.April, 4, 16, 0), at(loc, 2015, time.April, 6, 0, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.startingMonday(tc.now); !got.Equal(tc.want) {
				t.Errorf("startingMonday(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestPickupGridShape(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	g := e.PickupGrid(at(loc, 2015, time.January, 7, 12, 0))

	if len(g.Days) != 30 {
		t.Fatalf("got %d days, want 30", len(g.Days))
	}
	for _, day := range g.Days {
		if len(day.Slots) != 14 {
			t.Fatalf("day %s has %d slots, want 14", day.Date, len(day.Slots))
		}
		if day.Slots[0].Hour != 8 || day.Slots[13].Hour != 21 {
			t.Fatalf("day %s spans %d-%d, want 8-21", day.Date, day.Slots[0].Hour, day.Slots[13].Hour)
		}
	}
	if g.Days[0].Date != "2015-01-05" || g.Days[0].DayName != "Monday" {
		t.Errorf("grid starts on %s %s, want Monday 2015-01-05", g.Days[0].DayName, g.Days[0].Date)
	}
}

func TestPickupGridIsDeterministic(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	now := at(loc, 2015, time.January, 7, 12, 0)
	if a, b := e.PickupGrid(now), e.PickupGrid(now); !reflect.DeepEqual(a, b) {
		t.Error("two builds for the same instant differ")
	}
}

func availableHours(t *testing.T, g *Grid, date string) []int {
	t.Helper()
	for _, day := range g.Days {
		if day.Date != date {
			continue
		}
		var hours []int
		for _, s := range day.Slots {
			if s.Available {
				hours = append(hours, s.Hour)
			}
		}
		return hours
	}
	t.Fatalf("day %s not on grid", date)
	return nil
}

func hourRange(from, to int) []int {
	var out []int
	for h := from; h <= to; h++ {
		out = append(out, h)
	}
	return out
}

func TestPickupGridMidweek(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	g := e.PickupGrid(at(loc, 2015, time.January, 7, 12, 0))

	if hours := availableHours(t, g, "2015-01-05"); hours != nil {
		t.Errorf("monday already past should be closed, got hours %v", hours)
	}
	if got, want := availableHours(t, g, "2015-01-07"), hourRange(14, 21); !reflect.DeepEqual(got, want) {
		t.Errorf("same day hours = %v, want %v", got, want)
	}
	if got, want := availableHours(t, g, "2015-01-08"), hourRange(8, 21); !reflect.DeepEqual(got, want) {
		t.Errorf("next day hours = %v, want %v", got, want)
	}
	if got, want := availableHours(t, g, "2015-01-10"), hourRange(8, 16); !reflect.DeepEqual(got, want) {
		t.Errorf("saturday hours = %v, want %v", got, want)
	}
	if hours := availableHours(t, g, "2015-01-14"); hours != nil {
		t.Errorf("day past the pickup lookahead should be closed, got %v", hours)
	}
}

func TestPickupGridEasterCluster(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	// Saturday afternoon before Easter Monday: the grid opens on the bank
	// holiday itself.
	g := e.PickupGrid(at(loc, 2015, time.April, 4, 16, 0))

	if g.Days[0].Date != "2015-04-06" {
		t.Fatalf("grid starts %s, want 2015-04-06", g.Days[0].Date)
	}
	if hours := availableHours(t, g, "2015-04-06"); hours != nil {
		t.Errorf("easter monday should be closed, got %v", hours)
	}
	if got, want := availableHours(t, g, "2015-04-07"), hourRange(8, 21); !reflect.DeepEqual(got, want) {
		t.Errorf("tuesday hours = %v, want %v", got, want)
	}
}

func TestDeliveryGrid(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	now := at(loc, 2015, time.January, 7, 12, 0)
	pickup := at(loc, 2015, time.January, 8, 10, 0)
	g := e.DeliveryGrid(now, pickup)

	if hours := availableHours(t, g, "2015-01-09"); hours != nil {
		t.Errorf("friday inside the turnaround should be closed, got %v", hours)
	}
	if got, want := availableHours(t, g, "2015-01-10"), hourRange(10, 16); !reflect.DeepEqual(got, want) {
		t.Errorf("saturday hours = %v, want %v", got, want)
	}
	if got, want := availableHours(t, g, "2015-01-12"), hourRange(8, 21); !reflect.DeepEqual(got, want) {
		t.Errorf("monday hours = %v, want %v", got, want)
	}
}

func TestMarkFull(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	g := e.PickupGrid(at(loc, 2015, time.January, 7, 12, 0))

	g.MarkFull([]time.Time{at(loc, 2015, time.January, 8, 10, 0).UTC()}, loc)

	got := availableHours(t, g, "2015-01-08")
	want := append(hourRange(8, 9), hourRange(11, 21)...)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("thursday hours = %v, want %v", got, want)
	}
}

func TestHasAvailable(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	g := e.PickupGrid(at(loc, 2015, time.January, 7, 12, 0))

	if !g.HasAvailable(at(loc, 2015, time.January, 8, 10, 0), loc) {
		t.Error("open slot reported unavailable")
	}
	if g.HasAvailable(at(loc, 2015, time.January, 7, 9, 0), loc) {
		t.Error("slot inside the pickup lead reported available")
	}
	if g.HasAvailable(at(loc, 2015, time.March, 2, 10, 0), loc) {
		t.Error("instant off the grid reported available")
	}
}

func TestGridBounds(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	g := e.PickupGrid(at(loc, 2015, time.January, 7, 12, 0))

	from, to := g.Bounds(loc)
	if want := at(loc, 2015, time.January, 5, 0, 0); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	if want := at(loc, 2015, time.February, 7, 0, 0).AddDate(0, 0, 1).Add(-time.Second); !to.Equal(want) {
		t.Errorf("to = %v, want %v", to, want)
	}
}

func TestPruneEmptyWeeks(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	now := at(loc, 2015, time.January, 7, 12, 0)

	t.Run("pickup keeps current week and drops dead tail weeks", func(t *testing.T) {
		g := e.PickupGrid(now)
		g.PruneEmptyWeeks(1, e.Weeks())
		if len(g.Days) != 12 {
			t.Fatalf("got %d days, want 12", len(g.Days))
		}
		if g.Days[0].Date != "2015-01-05" || g.Days[len(g.Days)-1].Date != "2015-01-17" {
			t.Errorf("kept %s..%s, want 2015-01-05..2015-01-17", g.Days[0].Date, g.Days[len(g.Days)-1].Date)
		}
	})

	t.Run("delivery drops an empty leading week", func(t *testing.T) {
		pickup := at(loc, 2015, time.January, 9, 16, 0)
		g := e.DeliveryGrid(now, pickup)
		g.PruneEmptyWeeks(0, 1)
		if g.Days[0].Date != "2015-01-12" {
			t.Errorf("first day %s, want 2015-01-12", g.Days[0].Date)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		g := e.PickupGrid(now)
		g.PruneEmptyWeeks(1, e.Weeks())
		before := len(g.Days)
		g.PruneEmptyWeeks(1, e.Weeks())
		if len(g.Days) != before {
			t.Errorf("second prune changed day count %d -> %d", before, len(g.Days))
		}
	})
}

func TestOperatingHoursValidate(t *testing.T) {
	cases := []struct {
		name    string
		hours   OperatingHours
		wantErr bool
	}{
		{"defaults", DefaultOperatingHours(), false},
		{"close before open", NewOperatingHours(DayHours{Open: 10, Close: 9, LastPickup: 9}, DayHours{Open: 8, Close: 17, LastPickup: 14}), true},
		{"last pickup outside hours", NewOperatingHours(DayHours{Open: 8, Close: 22, LastPickup: 22}, DayHours{Open: 8, Close: 17, LastPickup: 14}), true},
		{"open out of range", NewOperatingHours(DayHours{Open: -1, Close: 22, LastPickup: 17}, DayHours{Open: 8, Close: 17, LastPickup: 14}), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.hours.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
