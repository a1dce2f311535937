package repository

import (
	"context"
	"time"

	"HashArb/internal/domain/models"
)

// Exchange is the rental order surface of the hash-power marketplace.
type Exchange interface {
	CreateOrder(ctx context.Context, order *models.Order) (string, error)
	UpdateOrderPrice(ctx context.Context, orderID string, price float64) error
	CancelOrder(ctx context.Context, orderID string) error
	HasCredentials() bool
}

// Wallet exposes the funding account used to pay for orders.
type Wallet interface {
	Balance(ctx context.Context) (float64, error)
	Recharge(ctx context.Context, amount float64) error
}

// EventSink publishes order lifecycle and cycle summary events.
type EventSink interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordFetch(category, source, result string)
	RecordError(kind string)
	RecordNetProfit(algorithm string, profit float64)
	RecordSourceHealth(source string, healthy bool)
	RecordActiveOrders(n int)
	RecordRecharge()
	RecordOrderAction(action string)
	RecordCycleDuration(seconds float64)
}

// Clock abstracts wall time for schedule-sensitive components.
type Clock interface {
	Now() time.Time
}
