// Package booking joins the schedule engine and the capacity tracker into
// the calendars and checks the HTTP handlers serve.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/j-cartmel/washline/internal/capacity"
	"github.com/j-cartmel/washline/internal/schedule"
)

type Service struct {
	engine  *schedule.Engine
	tracker *capacity.Tracker
}

func NewService(engine *schedule.Engine, tracker *capacity.Tracker) *Service {
	return &Service{engine: engine, tracker: tracker}
}

func (s *Service) Location() *time.Location { return s.engine.Location() }

func (s *Service) EarliestPickup(now time.Time) time.Time {
	return s.engine.EarliestPickup(now)
}

func (s *Service) EarliestDelivery(pickup time.Time) time.Time {
	return s.engine.EarliestDelivery(pickup)
}

// PickupGrid builds the pickup calendar with fully booked slots closed off.
// The current week survives pruning even when every slot in it has passed,
// so the rendered calendar always starts on this week's Monday.
func (s *Service) PickupGrid(ctx context.Context, now time.Time) (*schedule.Grid, error) {
	g := s.engine.PickupGrid(now)
	if err := s.overlayCapacity(ctx, g); err != nil {
		return nil, err
	}
	g.PruneEmptyWeeks(1, s.engine.Weeks())
	return g, nil
}

// DeliveryGrid builds the delivery calendar for an order picked up at the
// given time. Only an entirely dead leading week is pruned.
func (s *Service) DeliveryGrid(ctx context.Context, now, pickup time.Time) (*schedule.Grid, error) {
	g := s.engine.DeliveryGrid(now, pickup)
	if err := s.overlayCapacity(ctx, g); err != nil {
		return nil, err
	}
	g.PruneEmptyWeeks(0, 1)
	return g, nil
}

func (s *Service) overlayCapacity(ctx context.Context, g *schedule.Grid) error {
	from, to := g.Bounds(s.engine.Location())
	full, err := s.tracker.FullSlots(ctx, from, to)
	if err != nil {
		return fmt.Errorf("overlay capacity: %w", err)
	}
	g.MarkFull(full, s.engine.Location())
	return nil
}

// SlotAvailable answers the capacity point query: is the slot at this
// instant still under its ceiling. Calendar rules are not consulted here;
// ValidateTimes does the full check at confirmation time.
func (s *Service) SlotAvailable(ctx context.Context, atInstant time.Time) (bool, error) {
	return s.tracker.IsAvailable(ctx, atInstant)
}

// ValidateTimes re-derives both calendars at confirmation time and checks
// the chosen pickup and delivery are still on them. Slots can slip away
// between form render and submit, from the clock moving or other customers
// booking.
func (s *Service) ValidateTimes(ctx context.Context, now, pickup, delivery time.Time) error {
	if _, err := capacity.NormalizeInstant(pickup); err != nil {
		return fmt.Errorf("pickup: %w", err)
	}
	if _, err := capacity.NormalizeInstant(delivery); err != nil {
		return fmt.Errorf("delivery: %w", err)
	}
	pg, err := s.PickupGrid(ctx, now)
	if err != nil {
		return err
	}
	if !pg.HasAvailable(pickup, s.engine.Location()) {
		return fmt.Errorf("pickup %s: %w", pickup.Format(time.RFC3339), ErrSlotUnavailable)
	}
	dg, err := s.DeliveryGrid(ctx, now, pickup)
	if err != nil {
		return err
	}
	if !dg.HasAvailable(delivery, s.engine.Location()) {
		return fmt.Errorf("delivery %s: %w", delivery.Format(time.RFC3339), ErrSlotUnavailable)
	}
	return nil
}
