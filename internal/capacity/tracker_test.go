package capacity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func slot(h int) time.Time {
	return time.Date(2025, time.March, 3, h, 0, 0, 0, time.UTC)
}

func TestTryReserveInvalidInstant(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), 16, testLogger())
	cases := []struct {
		name string
		at   time.Time
	}{
		{"zero", time.Time{}},
		{"minutes", time.Date(2025, time.March, 3, 10, 30, 0, 0, time.UTC)},
		{"seconds", time.Date(2025, time.March, 3, 10, 0, 5, 0, time.UTC)},
		{"on the hour in a half-hour-offset zone", time.Date(2025, time.March, 3, 14, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tr.TryReserve(context.Background(), tc.at); !errors.Is(err, ErrInvalidInstant) {
				t.Errorf("got %v, want ErrInvalidInstant", err)
			}
		})
	}
}

func TestNormalizeInstant(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	cases := []struct {
		name    string
		at      time.Time
		want    time.Time
		wantErr bool
	}{
		{
			name: "utc on the hour",
			at:   time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC),
			want: time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC),
		},
		{
			// 14:00+05:30 is 08:30 UTC; a clean wall clock must not
			// smuggle a half-hour instant past validation.
			name:    "half-hour zone with clean wall clock",
			at:      time.Date(2025, time.March, 3, 14, 0, 0, 0, ist),
			wantErr: true,
		},
		{
			name: "half-hour zone on an absolute hour",
			at:   time.Date(2025, time.March, 3, 14, 30, 0, 0, ist),
			want: time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeInstant(tc.at)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidInstant) {
					t.Errorf("got %v, want ErrInvalidInstant", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Errorf("got %v, want %v in UTC", got, tc.want)
			}
		})
	}
}

func TestTryReserveHonorsCeiling(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), 2, testLogger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := tr.TryReserve(ctx, slot(10))
		if err != nil || !ok {
			t.Fatalf("reservation %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := tr.TryReserve(ctx, slot(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("reservation above the ceiling succeeded")
	}
	if ok, _ = tr.TryReserve(ctx, slot(11)); !ok {
		t.Error("unrelated slot rejected")
	}
}

func TestTryReserveTimezoneIrrelevant(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	tr := NewTracker(NewMemoryStore(), 1, testLogger())
	ctx := context.Background()

	if ok, _ := tr.TryReserve(ctx, time.Date(2025, time.July, 7, 11, 0, 0, 0, loc)); !ok {
		t.Fatal("first reservation failed")
	}
	// Same instant expressed in UTC must hit the same counter.
	if ok, _ := tr.TryReserve(ctx, time.Date(2025, time.July, 7, 10, 0, 0, 0, time.UTC)); ok {
		t.Error("same instant in another zone was counted separately")
	}
}

func TestTryReserveConcurrent(t *testing.T) {
	const ceiling = 16
	const contenders = ceiling + 9
	tr := NewTracker(NewMemoryStore(), ceiling, testLogger())

	var granted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := tr.TryReserve(context.Background(), slot(14))
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			if ok {
				granted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := granted.Load(); got != ceiling {
		t.Errorf("granted %d reservations, want exactly %d", got, ceiling)
	}
}

func TestIsAvailable(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), 1, testLogger())
	ctx := context.Background()

	ok, err := tr.IsAvailable(ctx, slot(9))
	if err != nil || !ok {
		t.Fatalf("untouched slot: ok=%v err=%v", ok, err)
	}
	if _, err := tr.TryReserve(ctx, slot(9)); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if ok, _ = tr.IsAvailable(ctx, slot(9)); ok {
		t.Error("full slot reported available")
	}
}

func TestFullSlots(t *testing.T) {
	tr := NewTracker(NewMemoryStore(), 1, testLogger())
	ctx := context.Background()
	for _, h := range []int{9, 12} {
		if _, err := tr.TryReserve(ctx, slot(h)); err != nil {
			t.Fatalf("reserve: %v", err)
		}
	}

	full, err := tr.FullSlots(ctx, slot(8), slot(11))
	if err != nil {
		t.Fatalf("full slots: %v", err)
	}
	if len(full) != 1 || !full[0].Equal(slot(9)) {
		t.Errorf("got %v, want [%v]", full, slot(9))
	}
}

// flakyStore fails a fixed number of Increment calls before delegating.
type flakyStore struct {
	Store
	failures int
	calls    atomic.Int32
}

func (s *flakyStore) Increment(ctx context.Context, at time.Time, ceiling int) (bool, error) {
	if int(s.calls.Add(1)) <= s.failures {
		return false, errors.New("connection reset")
	}
	return s.Store.Increment(ctx, at, ceiling)
}

func TestTryReserveRetriesTransientErrors(t *testing.T) {
	store := &flakyStore{Store: NewMemoryStore(), failures: 2}
	tr := NewTracker(store, 16, testLogger())

	ok, err := tr.TryReserve(context.Background(), slot(15))
	if err != nil {
		t.Fatalf("reserve after transient failures: %v", err)
	}
	if !ok {
		t.Error("reservation rejected")
	}
	if got := store.calls.Load(); got != 3 {
		t.Errorf("store called %d times, want 3", got)
	}
}

func TestTryReserveGivesUpAfterMaxTries(t *testing.T) {
	store := &flakyStore{Store: NewMemoryStore(), failures: 10}
	tr := NewTracker(store, 16, testLogger())

	if _, err := tr.TryReserve(context.Background(), slot(16)); err == nil {
		t.Error("expected error after exhausting retries")
	}
	if got := store.calls.Load(); got != 3 {
		t.Errorf("store called %d times, want 3", got)
	}
}

func TestFullSlotIsNotRetried(t *testing.T) {
	mem := NewMemoryStore()
	if ok, _ := mem.Increment(context.Background(), slot(17), 1); !ok {
		t.Fatal("seed increment failed")
	}
	store := &flakyStore{Store: mem}
	tr := NewTracker(store, 1, testLogger())

	ok, err := tr.TryReserve(context.Background(), slot(17))
	if err != nil || ok {
		t.Fatalf("ok=%v err=%v, want full slot with no error", ok, err)
	}
	if got := store.calls.Load(); got != 1 {
		t.Errorf("full answer took %d calls, want 1", got)
	}
}
