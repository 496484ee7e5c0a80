package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/j-cartmel/washline/libs/db"
)

const (
	OrderStatusConfirmed = "confirmed"
)

// Order is a confirmed pickup and delivery pair.
type Order struct {
	ID            string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Pickup        time.Time
	Delivery      time.Time
	Status        string
	CreatedAt     time.Time
}

type OrderRepository struct {
	pool *db.Pool
}

func NewOrderRepository(pool *db.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Begin opens the transaction an order confirmation runs in: slot
// reservations, the order row and its outbox event commit together.
func (r *OrderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin order tx: %w", err)
	}
	return tx, nil
}

func (r *OrderRepository) Create(ctx context.Context, q db.Querier, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.Status = OrderStatusConfirmed
	err := q.QueryRow(ctx, `
		INSERT INTO orders (id, customer_name, customer_email, customer_phone, pickup_at, delivery_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.Pickup.UTC(), o.Delivery.UTC(), o.Status).Scan(&o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
