// Package outbox implements the transactional outbox: domain events commit
// in the same transaction as the rows that caused them, and a background
// publisher relays them to Kafka.
package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/j-cartmel/washline/internal/storage"
)

// Topic names double as event types; each event type has its own topic.
const (
	TopicOrderConfirmed    = "washline.order.confirmed.v1"
	TopicReminderRequested = "washline.reminder.requested.v1"
)

// Event is the envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type orderConfirmedPayload struct {
	OrderID       string    `json:"order_id"`
	CustomerEmail string    `json:"customer_email"`
	PickupAt      time.Time `json:"pickup_at"`
	DeliveryAt    time.Time `json:"delivery_at"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

type reminderRequestedPayload struct {
	OrderID  string    `json:"order_id"`
	Kind     string    `json:"kind"`
	RemindAt time.Time `json:"remind_at"`
}

// OrderConfirmed builds the event announcing a confirmed order.
func OrderConfirmed(o *storage.Order) (Event, error) {
	payload, err := json.Marshal(orderConfirmedPayload{
		OrderID:       o.ID,
		CustomerEmail: o.CustomerEmail,
		PickupAt:      o.Pickup.UTC(),
		DeliveryAt:    o.Delivery.UTC(),
		ConfirmedAt:   o.CreatedAt.UTC(),
	})
	if err != nil {
		return Event{}, fmt.Errorf("marshal order confirmed: %w", err)
	}
	return Event{
		AggregateType: "order",
		AggregateID:   o.ID,
		EventType:     TopicOrderConfirmed,
		Payload:       payload,
	}, nil
}

// ReminderRequested builds the event asking the notification pipeline to
// remind the customer an hour before a pickup or delivery round.
func ReminderRequested(o *storage.Order, kind string, roundAt time.Time) (Event, error) {
	payload, err := json.Marshal(reminderRequestedPayload{
		OrderID:  o.ID,
		Kind:     kind,
		RemindAt: roundAt.UTC().Add(-time.Hour),
	})
	if err != nil {
		return Event{}, fmt.Errorf("marshal reminder requested: %w", err)
	}
	return Event{
		AggregateType: "order",
		AggregateID:   o.ID,
		EventType:     TopicReminderRequested,
		Payload:       payload,
	}, nil
}
