// Package capacity tracks how many appointments are booked against each
// hour slot and enforces the per-hour ceiling without lost updates.
package capacity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrInvalidInstant is returned for reservation instants that are not
// aligned to a whole hour.
var ErrInvalidInstant = errors.New("appointment instant must be aligned to a whole hour")

// Store persists slot counters. Increment must be atomic with respect to
// the ceiling: under concurrent calls the counter never exceeds it.
type Store interface {
	Increment(ctx context.Context, at time.Time, ceiling int) (bool, error)
	Count(ctx context.Context, at time.Time) (int, error)
	Full(ctx context.Context, from, to time.Time, ceiling int) ([]time.Time, error)
}

// Tracker answers availability questions and takes reservations against a
// Store, retrying transient store errors with exponential backoff. A full
// slot is an answer, not an error, and is never retried.
type Tracker struct {
	store    Store
	ceiling  int
	logger   *slog.Logger
	maxTries uint
}

func NewTracker(store Store, ceiling int, logger *slog.Logger) *Tracker {
	return &Tracker{store: store, ceiling: ceiling, logger: logger, maxTries: 3}
}

func (t *Tracker) Ceiling() int { return t.ceiling }

// TryReserve books one appointment in the slot at the given instant.
// It returns false with a nil error when the slot is already full.
func (t *Tracker) TryReserve(ctx context.Context, atInstant time.Time) (bool, error) {
	key, err := NormalizeInstant(atInstant)
	if err != nil {
		return false, err
	}
	ok, err := retryOp(ctx, t, "reserve", func() (bool, error) {
		return t.store.Increment(ctx, key, t.ceiling)
	})
	if err != nil {
		return false, fmt.Errorf("reserve slot %s: %w", key.Format(time.RFC3339), err)
	}
	return ok, nil
}

// IsAvailable reports whether the slot at the given instant still has room.
// A slot with no counter yet is available.
func (t *Tracker) IsAvailable(ctx context.Context, atInstant time.Time) (bool, error) {
	key, err := NormalizeInstant(atInstant)
	if err != nil {
		return false, err
	}
	count, err := retryOp(ctx, t, "count", func() (int, error) {
		return t.store.Count(ctx, key)
	})
	if err != nil {
		return false, fmt.Errorf("count slot %s: %w", key.Format(time.RFC3339), err)
	}
	return count < t.ceiling, nil
}

// FullSlots returns every fully booked slot instant in [from, to].
func (t *Tracker) FullSlots(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	full, err := retryOp(ctx, t, "full", func() ([]time.Time, error) {
		return t.store.Full(ctx, from.UTC(), to.UTC(), t.ceiling)
	})
	if err != nil {
		return nil, fmt.Errorf("list full slots: %w", err)
	}
	return full, nil
}

func retryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}

func retryOp[T any](ctx context.Context, t *Tracker, name string, op backoff.Operation[T]) (T, error) {
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(retryPolicy()),
		backoff.WithMaxTries(t.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			t.logger.Warn("slot store call failed, retrying",
				slog.String("op", name),
				slog.Duration("wait", wait),
				slog.String("error", err.Error()))
		}))
}

// NormalizeInstant validates that the instant is hour-aligned and returns
// its canonical UTC form used as the counter key. Alignment is a property
// of the absolute instant, not of its zone's wall clock: 14:00 in a
// half-hour-offset zone is 08:30 UTC and must be rejected.
func NormalizeInstant(atInstant time.Time) (time.Time, error) {
	if atInstant.IsZero() {
		return time.Time{}, ErrInvalidInstant
	}
	if !atInstant.Truncate(time.Hour).Equal(atInstant) {
		return time.Time{}, ErrInvalidInstant
	}
	return atInstant.UTC(), nil
}
