package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/j-cartmel/washline/internal/booking"
	"github.com/j-cartmel/washline/internal/capacity"
	"github.com/j-cartmel/washline/internal/schedule"
)

// SlotsHandler serves the pickup and delivery calendars and the point
// availability check.
type SlotsHandler struct {
	svc    *booking.Service
	logger *slog.Logger
	now    func() time.Time
}

func NewSlotsHandler(svc *booking.Service, logger *slog.Logger, now func() time.Time) *SlotsHandler {
	if now == nil {
		now = time.Now
	}
	return &SlotsHandler{svc: svc, logger: logger, now: now}
}

type gridResponse struct {
	GeneratedAt string         `json:"generated_at"`
	NotBefore   string         `json:"not_before"`
	Days        []schedule.Day `json:"days"`
}

type availabilityResponse struct {
	At        string `json:"at"`
	Available bool   `json:"available"`
}

func (h *SlotsHandler) Pickup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	now := h.now().In(h.svc.Location())
	grid, err := h.svc.PickupGrid(r.Context(), now)
	if err != nil {
		h.logger.Error("pickup grid build failed", "err", err)
		http.Error(w, "availability temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, gridResponse{
		GeneratedAt: now.Format(time.RFC3339),
		NotBefore:   h.svc.EarliestPickup(now).Format(time.RFC3339),
		Days:        grid.Days,
	})
}

func (h *SlotsHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	pickup, err := time.Parse(time.RFC3339, r.URL.Query().Get("pickup"))
	if err != nil {
		http.Error(w, "invalid pickup parameter, want RFC 3339", http.StatusBadRequest)
		return
	}
	if _, err := capacity.NormalizeInstant(pickup); err != nil {
		http.Error(w, "pickup must be aligned to a whole hour", http.StatusUnprocessableEntity)
		return
	}
	now := h.now().In(h.svc.Location())
	grid, err := h.svc.DeliveryGrid(r.Context(), now, pickup)
	if err != nil {
		h.logger.Error("delivery grid build failed", "err", err)
		http.Error(w, "availability temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, gridResponse{
		GeneratedAt: now.Format(time.RFC3339),
		NotBefore:   h.svc.EarliestDelivery(pickup).Format(time.RFC3339),
		Days:        grid.Days,
	})
}

func (h *SlotsHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	at, err := time.Parse(time.RFC3339, r.URL.Query().Get("at"))
	if err != nil {
		http.Error(w, "invalid at parameter, want RFC 3339", http.StatusBadRequest)
		return
	}
	available, err := h.svc.SlotAvailable(r.Context(), at)
	if err != nil {
		if errors.Is(err, capacity.ErrInvalidInstant) {
			http.Error(w, "at must be aligned to a whole hour", http.StatusBadRequest)
			return
		}
		h.logger.Error("availability check failed", "err", err)
		http.Error(w, "availability temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		At:        at.UTC().Format(time.RFC3339),
		Available: available,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
