package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/j-cartmel/washline/internal/booking"
	"github.com/j-cartmel/washline/internal/capacity"
	"github.com/j-cartmel/washline/internal/outbox"
	"github.com/j-cartmel/washline/internal/storage"
)

// OrdersHandler confirms orders: it re-validates the chosen times against
// fresh calendars, then reserves both slots, writes the order and its
// outbox events in one transaction.
type OrdersHandler struct {
	svc        *booking.Service
	tracker    *capacity.Tracker
	slots      *storage.SlotRepository
	orders     *storage.OrderRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	now        func() time.Time
}

func NewOrdersHandler(svc *booking.Service, tracker *capacity.Tracker, slots *storage.SlotRepository, orders *storage.OrderRepository, outboxRepo *outbox.Repository, logger *slog.Logger, now func() time.Time) *OrdersHandler {
	if now == nil {
		now = time.Now
	}
	return &OrdersHandler{
		svc:        svc,
		tracker:    tracker,
		slots:      slots,
		orders:     orders,
		outboxRepo: outboxRepo,
		logger:     logger,
		now:        now,
	}
}

type createOrderRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	PickupTime    string `json:"pickup_time"`
	DeliveryTime  string `json:"delivery_time"`
}

type createOrderResponse struct {
	OrderID    string `json:"order_id"`
	Status     string `json:"status"`
	PickupAt   string `json:"pickup_at"`
	DeliveryAt string `json:"delivery_at"`
}

func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	if req.CustomerName == "" || req.CustomerEmail == "" {
		http.Error(w, "missing required fields", http.StatusBadRequest)
		return
	}

	pickup, err := time.Parse(time.RFC3339, req.PickupTime)
	if err != nil {
		http.Error(w, "invalid pickup_time", http.StatusBadRequest)
		return
	}
	delivery, err := time.Parse(time.RFC3339, req.DeliveryTime)
	if err != nil {
		http.Error(w, "invalid delivery_time", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	now := h.now().In(h.svc.Location())
	if err := h.svc.ValidateTimes(ctx, now, pickup, delivery); err != nil {
		switch {
		case errors.Is(err, capacity.ErrInvalidInstant):
			http.Error(w, "times must be aligned to a whole hour", http.StatusBadRequest)
		case errors.Is(err, booking.ErrSlotUnavailable):
			http.Error(w, "requested slot is no longer available", http.StatusUnprocessableEntity)
		default:
			h.logger.Error("order validation failed", "err", err)
			http.Error(w, "availability temporarily unavailable", http.StatusServiceUnavailable)
		}
		return
	}

	tx, err := h.orders.Begin(ctx)
	if err != nil {
		h.logger.Error("order tx begin failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// The grids answer from a snapshot; only the conditional increment
	// decides who gets the last place in a slot.
	for _, at := range []time.Time{pickup, delivery} {
		ok, err := h.slots.IncrementTx(ctx, tx, at, h.tracker.Ceiling())
		if err != nil {
			h.logger.Error("slot reservation failed", "err", err)
			http.Error(w, "db error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "slot filled up, pick another time", http.StatusConflict)
			return
		}
	}

	order := &storage.Order{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Pickup:        pickup,
		Delivery:      delivery,
	}
	if err := h.orders.Create(ctx, tx, order); err != nil {
		h.logger.Error("order insert failed", "err", err)
		http.Error(w, "failed to create order", http.StatusInternalServerError)
		return
	}

	builders := []func() (outbox.Event, error){
		func() (outbox.Event, error) { return outbox.OrderConfirmed(order) },
		func() (outbox.Event, error) { return outbox.ReminderRequested(order, "pickup", order.Pickup) },
		func() (outbox.Event, error) { return outbox.ReminderRequested(order, "delivery", order.Delivery) },
	}
	for _, build := range builders {
		evt, err := build()
		if err != nil {
			h.logger.Error("event payload build failed", "err", err)
			http.Error(w, "failed to build event payload", http.StatusInternalServerError)
			return
		}
		if err := h.outboxRepo.Insert(ctx, tx, evt); err != nil {
			h.logger.Error("outbox insert failed", "err", err)
			http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.Error("order commit failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("order confirmed",
		slog.String("order_id", order.ID),
		slog.Time("pickup_at", order.Pickup),
		slog.Time("delivery_at", order.Delivery))
	writeJSON(w, http.StatusCreated, createOrderResponse{
		OrderID:    order.ID,
		Status:     order.Status,
		PickupAt:   order.Pickup.UTC().Format(time.RFC3339),
		DeliveryAt: order.Delivery.UTC().Format(time.RFC3339),
	})
}
