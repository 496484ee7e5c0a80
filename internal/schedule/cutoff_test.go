package schedule

import (
	"testing"
	"time"

	"github.com/j-cartmel/washline/internal/holiday"
)

func london(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	return loc
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultOperatingHours(), DefaultPolicy(london(t)), holiday.NewEnglandWales())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func at(loc *time.Location, y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, loc)
}

func TestEarliestPickup(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "monday before opening floors to proceeding hour",
			now:  at(loc, 2015, time.January, 5, 1, 0),
			want: at(loc, 2015, time.January, 5, 9, 0),
		},
		{
			name: "monday midday only the lead applies",
			now:  at(loc, 2015, time.January, 5, 12, 0),
			want: at(loc, 2015, time.January, 5, 14, 0),
		},
		{
			name: "monday after last pickup rolls to tuesday morning",
			now:  at(loc, 2015, time.January, 5, 17, 30),
			want: at(loc, 2015, time.January, 6, 9, 0),
		},
		{
			name: "friday evening rolls to saturday morning",
			now:  at(loc, 2015, time.January, 9, 18, 0),
			want: at(loc, 2015, time.January, 10, 9, 0),
		},
		{
			name: "saturday early morning floors to same day",
			now:  at(loc, 2015, time.January, 10, 5, 0),
			want: at(loc, 2015, time.January, 10, 9, 0),
		},
		{
			name: "saturday before last pickup only the lead applies",
			now:  at(loc, 2015, time.January, 10, 13, 0),
			want: at(loc, 2015, time.January, 10, 15, 0),
		},
		{
			name: "saturday after last pickup skips sunday to monday",
			now:  at(loc, 2015, time.January, 10, 14, 30),
			want: at(loc, 2015, time.January, 12, 9, 0),
		},
		{
			name: "sunday rolls to monday morning",
			now:  at(loc, 2015, time.January, 11, 10, 0),
			want: at(loc, 2015, time.January, 12, 9, 0),
		},
		{
			name: "bst sunday rolls to bst monday",
			now:  at(loc, 2015, time.May, 10, 11, 0),
			want: at(loc, 2015, time.May, 11, 9, 0),
		},
		{
			name: "saturday roll across spring clock change",
			now:  at(loc, 2015, time.March, 28, 15, 0),
			want: at(loc, 2015, time.March, 30, 9, 0),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.EarliestPickup(tc.now)
			if !got.Equal(tc.want) {
				t.Errorf("EarliestPickup(%v) = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestEarliestDelivery(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	cases := []struct {
		name   string
		pickup time.Time
		want   time.Time
	}{
		{
			name:   "monday pickup is a plain 48 hour turnaround",
			pickup: at(loc, 2015, time.January, 5, 12, 0),
			want:   at(loc, 2015, time.January, 7, 12, 0),
		},
		{
			name:   "friday pickup pushes past sunday",
			pickup: at(loc, 2015, time.January, 9, 12, 0),
			want:   at(loc, 2015, time.January, 12, 12, 0),
		},
		{
			name:   "pickup before the easter cluster pushes three days",
			pickup: at(loc, 2015, time.April, 2, 12, 0),
			want:   at(loc, 2015, time.April, 7, 12, 0),
		},
		{
			name:   "saturday pickup before the spring bank holiday",
			pickup: at(loc, 2015, time.May, 23, 12, 0),
			want:   at(loc, 2015, time.May, 27, 12, 0),
		},
		{
			name:   "new year pushes past the observed holiday and sunday",
			pickup: at(loc, 2015, time.December, 31, 10, 30),
			want:   at(loc, 2016, time.January, 4, 10, 30),
		},
		{
			name:   "autumn clock change lands before opening and snaps forward",
			pickup: at(loc, 2015, time.October, 23, 8, 0),
			want:   at(loc, 2015, time.October, 26, 8, 0),
		},
		{
			name:   "spring clock change lands past closing and snaps to next morning",
			pickup: at(loc, 2015, time.March, 27, 21, 0),
			want:   at(loc, 2015, time.March, 31, 8, 0),
		},
		{
			name:   "past saturday closing snaps to monday morning",
			pickup: at(loc, 2015, time.January, 8, 21, 0),
			want:   at(loc, 2015, time.January, 12, 8, 0),
		},
		{
			name:   "past saturday closing onto a bank holiday monday",
			pickup: at(loc, 2015, time.April, 30, 21, 0),
			want:   at(loc, 2015, time.May, 5, 8, 0),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.EarliestDelivery(tc.pickup)
			if !got.Equal(tc.want) {
				t.Errorf("EarliestDelivery(%v) = %v, want %v", tc.pickup, got, tc.want)
			}
		})
	}
}

func TestEarliestDeliveryWithFixedHolidays(t *testing.T) {
	loc := london(t)
	// A made-up midweek closure: Wednesday 2025-07-16.
	e, err := NewEngine(DefaultOperatingHours(), DefaultPolicy(loc),
		holiday.NewFixed(time.Date(2025, time.July, 16, 0, 0, 0, 0, loc)))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	pickup := at(loc, 2025, time.July, 15, 10, 0)
	want := at(loc, 2025, time.July, 18, 10, 0)
	if got := e.EarliestDelivery(pickup); !got.Equal(want) {
		t.Errorf("EarliestDelivery(%v) = %v, want %v", pickup, got, want)
	}
}

func TestEarliestDeliveryNeverBeforeLead(t *testing.T) {
	loc := london(t)
	e := newTestEngine(t)
	pickup := at(loc, 2015, time.January, 5, 12, 0)
	if got := e.EarliestDelivery(pickup); got.Sub(pickup) < 48*time.Hour {
		t.Errorf("delivery %v is under 48h after pickup %v", got, pickup)
	}
}
