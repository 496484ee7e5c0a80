// Package storage holds the Postgres repositories.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/j-cartmel/washline/internal/capacity"
	"github.com/j-cartmel/washline/libs/db"
)

// SlotRepository persists per-hour slot counters. The ceiling is enforced
// in a single conditional upsert so concurrent reservations cannot raise
// the counter past it.
type SlotRepository struct {
	pool *db.Pool
}

var _ capacity.Store = (*SlotRepository)(nil)

func NewSlotRepository(pool *db.Pool) *SlotRepository {
	return &SlotRepository{pool: pool}
}

func (r *SlotRepository) Increment(ctx context.Context, at time.Time, ceiling int) (bool, error) {
	return r.IncrementTx(ctx, r.pool, at, ceiling)
}

// IncrementTx runs the conditional upsert on the given querier, so an order
// confirmation can reserve pickup and delivery inside one transaction. The
// WHERE clause guards only the update arm; a zero ceiling must not let the
// initial insert through.
func (r *SlotRepository) IncrementTx(ctx context.Context, q db.Querier, at time.Time, ceiling int) (bool, error) {
	if ceiling <= 0 {
		return false, nil
	}
	var counter int
	err := q.QueryRow(ctx, `
		INSERT INTO slot_counters (appointment, counter)
		VALUES ($1, 1)
		ON CONFLICT (appointment) DO UPDATE
		SET counter = slot_counters.counter + 1,
		    updated_at = now()
		WHERE slot_counters.counter < $2
		RETURNING counter`,
		at.UTC(), ceiling).Scan(&counter)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("increment slot counter: %w", err)
	}
	return true, nil
}

func (r *SlotRepository) Count(ctx context.Context, at time.Time) (int, error) {
	var counter int
	err := r.pool.QueryRow(ctx,
		`SELECT counter FROM slot_counters WHERE appointment = $1`,
		at.UTC()).Scan(&counter)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read slot counter: %w", err)
	}
	return counter, nil
}

func (r *SlotRepository) Full(ctx context.Context, from, to time.Time, ceiling int) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment FROM slot_counters
		WHERE counter >= $1 AND appointment BETWEEN $2 AND $3
		ORDER BY appointment`,
		ceiling, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("query full slots: %w", err)
	}
	defer rows.Close()

	var full []time.Time
	for rows.Next() {
		var at time.Time
		if err := rows.Scan(&at); err != nil {
			return nil, fmt.Errorf("scan full slot: %w", err)
		}
		full = append(full, at.UTC())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate full slots: %w", err)
	}
	return full, nil
}
