package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"HashArb/internal/domain/models"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeWallet struct {
	balance    float64
	recharges  []float64
	failNext   bool
	balanceErr error
}

func (w *fakeWallet) Balance(context.Context) (float64, error) {
	if w.balanceErr != nil {
		return 0, w.balanceErr
	}
	return w.balance, nil
}

func (w *fakeWallet) Recharge(_ context.Context, amount float64) error {
	if w.failNext {
		w.failNext = false
		return fmt.Errorf("wallet unavailable")
	}
	w.balance += amount
	w.recharges = append(w.recharges, amount)
	return nil
}

type fakeExchange struct {
	mu         sync.Mutex
	next       int
	orders     map[string]models.Order
	creds      bool
	failCreate bool
	cancelled  []string
}

func newFakeExchange() *fakeExchange {
	return &fakeExchange{orders: make(map[string]models.Order), creds: true}
}

func (e *fakeExchange) HasCredentials() bool { return e.creds }

func (e *fakeExchange) CreateOrder(_ context.Context, order *models.Order) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failCreate {
		return "", fmt.Errorf("exchange rejected order")
	}
	e.next++
	id := fmt.Sprintf("order-%d", e.next)
	o := *order
	o.ID = id
	e.orders[id] = o
	return id, nil
}

func (e *fakeExchange) UpdateOrderPrice(_ context.Context, orderID string, price float64) error {
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

func (e *fakeExchange) CancelOrder(_ context.Context, orderID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.orders[orderID]; !ok {
		return fmt.Errorf("order %s not found", orderID)
	}
	delete(e.orders, orderID)
	e.cancelled = append(e.cancelled, orderID)
	return nil
}

func (e *fakeExchange) open() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.orders)
}

type fakeSink struct {
	mu     sync.Mutex
	events []string
}

func (s *fakeSink) Publish(_ context.Context, eventType string, _ interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, eventType)
	return nil
}

func (s *fakeSink) Close() error { return nil }

func (s *fakeSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	copy(out, s.events)
	return out
}

type fakeMetrics struct{}

func (fakeMetrics) RecordFetch(string, string, string)  {}
func (fakeMetrics) RecordError(string)                  {}
func (fakeMetrics) RecordNetProfit(string, float64)     {}
func (fakeMetrics) RecordSourceHealth(string, bool)     {}
func (fakeMetrics) RecordActiveOrders(int)              {}
func (fakeMetrics) RecordRecharge()                     {}
func (fakeMetrics) RecordOrderAction(string)            {}
func (fakeMetrics) RecordCycleDuration(float64)         {}
