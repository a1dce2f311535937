package models

import "time"

// OrderPriority drives price aggressiveness and budget sizing.
type OrderPriority string

const (
	PriorityCritical OrderPriority = "critical"
	PriorityHigh     OrderPriority = "high"
	PriorityNormal   OrderPriority = "normal"
	PriorityLow      OrderPriority = "low"
)

// Order is one active hash-power rental order. At most one per algorithm.
type Order struct {
	ID        string    `json:"id"`
	Algorithm string    `json:"algorithm"`
	Market    string    `json:"market"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"` // budget in BTC
	Speed     float64   `json:"speed"`  // throughput limit in TH/s
	CreatedAt time.Time `json:"created_at"`
}

// RechargeEvent records one executed wallet top-up.
type RechargeEvent struct {
	Time          time.Time `json:"time"`
	Amount        float64   `json:"amount"`
	BalanceBefore float64   `json:"balance_before"`
}

// SpeedChange is one entry of the append-only speed limit change log.
type SpeedChange struct {
	Time   time.Time `json:"time"`
	Old    float64   `json:"old"`
	New    float64   `json:"new"`
	Reason string    `json:"reason"`
}
