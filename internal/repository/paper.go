package repository

import (
	"context"
	"fmt"
	"sync"

	"HashArb/internal/domain/models"
)

// PaperExchange keeps orders in memory for running without marketplace
// credentials. Order IDs are sequential.
type PaperExchange struct {
	mu     sync.Mutex
	next   int
	orders map[string]models.Order
}

func NewPaperExchange() *PaperExchange {
	return &PaperExchange{orders: make(map[string]models.Order)}
}

func (e *PaperExchange) HasCredentials() bool { return true }

func (e *PaperExchange) CreateOrder(_ context.Context, order *models.Order) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	id := fmt.Sprintf("paper-%d", e.next)
	o := *order
	o.ID = id
	e.orders[id] = o
	return id, nil
}

func (e *PaperExchange) UpdateOrderPrice(_ context.Context, orderID string, price float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	o.Price = price
	e.orders[orderID] = o
	return nil
}

func (e *PaperExchange) CancelOrder(_ context.Context, orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.orders[orderID]; !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	delete(e.orders, orderID)
	return nil
}

// Orders returns a copy of the live paper orders.
func (e *PaperExchange) Orders() []models.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Order, 0, len(e.orders))
	for _, o := range e.orders {
		out = append(out, o)
	}
	return out
}

// PaperWallet is an in-memory funding account for credential-less runs.
type PaperWallet struct {
	mu      sync.Mutex
	balance float64
}

func NewPaperWallet(initial float64) *PaperWallet {
	return &PaperWallet{balance: initial}
}

func (w *PaperWallet) Balance(_ context.Context) (float64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance, nil
}

func (w *PaperWallet) Recharge(_ context.Context, amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("recharge amount must be positive, got %.8f", amount)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
	return nil
}

// Spend reduces the balance, used by paper order placement flows.
func (w *PaperWallet) Spend(amount float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance -= amount
}
