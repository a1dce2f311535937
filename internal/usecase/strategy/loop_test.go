package strategy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"HashArb/internal/domain/models"
	"HashArb/internal/service/cache"
	"HashArb/internal/service/fetch"
	"HashArb/internal/service/retry"
	"HashArb/internal/sources"
	"HashArb/internal/usecase/profit"
	applogger "HashArb/pkg/logger"
)

type loopFixture struct {
	loop       *Loop
	exchange   *fakeExchange
	wallet     *fakeWallet
	sink       *fakeSink
	clock      *fakeClock
	prices     map[string]float64
	profits    map[string]float64
	fees       models.Fees
	feeFetches int
}

func newLoopFixture(t *testing.T) *loopFixture {
	t.Helper()
	return newLoopFixtureTTL(t, time.Millisecond)
}

func newLoopFixtureTTL(t *testing.T, cacheTTL time.Duration) *loopFixture {
	t.Helper()

	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	f := &loopFixture{
		exchange: newFakeExchange(),
		wallet:   &fakeWallet{balance: 0.01},
		sink:     &fakeSink{},
		clock:    &fakeClock{now: time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)},
		prices:   map[string]float64{"SHA256": 0.001},
		profits:  map[string]float64{"SHA256": 0.004},
		fees:     models.Fees{},
	}

	registry := sources.NewRegistry(l, fakeMetrics{})
	registry.Register(models.SourceDescriptor{
		ID: "test-prices", Category: models.CategoryPrices, Priority: 1,
		BaseURL: srv.URL, Endpoints: []string{"/"}, RateLimit: 6000, Timeout: time.Second,
	}, func(context.Context) (map[string]float64, error) {
		return f.prices, nil
	})
	registry.Register(models.SourceDescriptor{
		ID: "test-profits", Category: models.CategoryPoolProfits, Priority: 1,
		BaseURL: srv.URL, Endpoints: []string{"/"}, RateLimit: 6000, Timeout: time.Second,
	}, func(context.Context) (map[string]float64, error) {
		return f.profits, nil
	})
	registry.RegisterFees(models.SourceDescriptor{
		ID: "test-fees", Category: models.CategoryFees, Priority: 1,
		BaseURL: srv.URL, Endpoints: []string{"/"}, RateLimit: 6000, Timeout: time.Second,
	}, func(context.Context) (models.Fees, error) {
		f.feeFetches++
		return f.fees, nil
	})
	registry.RefreshAll(context.Background())

	coordinator := fetch.NewCoordinator(2, 5*time.Second, l)
	t.Cleanup(coordinator.Close)

	wallet := f.wallet
	f.loop = NewLoop(LoopConfig{
		ProfitThreshold: 0.001,
		RateLimitDelay:  0,
		CheckInterval:   time.Minute,
	}, LoopDeps{
		Logger:      l,
		Registry:    registry,
		Coordinator: coordinator,
		Cache:       cache.NewTTLCache(cacheTTL),
		Retrier:     retry.New(1, 1),
		Monitor:     NewPriceMonitor(time.Minute),
		Ranker:      profit.NewRanker("nicehash"),
		Guarantee:   NewGuaranteeSelector(3),
		Orders:      NewOrderManager(OrderManagerConfig{MaxOrders: 5, MinOrderAmount: 0.001, MaxOrderAmount: 0.01}),
		Speed:       NewSpeedManager(testSpeedConfig(SpeedAdaptive)),
		Recharge:    NewRechargeManager(testRechargeConfig(), wallet, fakeMetrics{}, f.clock),
		Exchange:    f.exchange,
		Wallet:      wallet,
		Sink:        f.sink,
		Metrics:     fakeMetrics{},
		Clock:       f.clock,
	})
	return f
}

func TestCycleCreatesOrder(t *testing.T) {
	f := newLoopFixture(t)
	f.loop.cycle(context.Background())

	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected 1 open order, got %d", got)
	}
	status := f.loop.Status()
	if status.CycleCount != 1 {
		t.Fatalf("expected 1 cycle, got %d", status.CycleCount)
	}
	if len(status.ActiveOrders) != 1 {
		t.Fatalf("expected 1 tracked order")
	}
	if len(status.Records) != 1 || status.Records[0].Algorithm != "SHA256" {
		t.Fatalf("unexpected records %+v", status.Records)
	}

	created := false
	for _, e := range f.sink.types() {
		if e == EventOrderCreated {
			created = true
		}
	}
	if !created {
		t.Fatalf("expected order_created event, got %v", f.sink.types())
	}
}

func TestCycleSkipsWithoutMarketData(t *testing.T) {
	f := newLoopFixture(t)
	f.prices = map[string]float64{}
	f.profits = map[string]float64{}

	f.loop.cycle(context.Background())
	if got := f.loop.Status().CycleCount; got != 0 {
		t.Fatalf("expected no completed cycle, got %d", got)
	}
	if got := f.exchange.open(); got != 0 {
		t.Fatalf("expected no orders, got %d", got)
	}
}

func TestCycleCancelsUnprofitableOrder(t *testing.T) {
	f := newLoopFixture(t)
	f.loop.cycle(context.Background())
	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected 1 open order, got %d", got)
	}

	// Pool income collapses; next cycle must drop the order.
	f.profits["SHA256"] = 0.0011
	time.Sleep(3 * time.Millisecond)
	f.clock.advance(time.Minute)
	f.loop.cycle(context.Background())

	if got := f.exchange.open(); got != 0 {
		t.Fatalf("expected order cancelled, got %d open", got)
	}
	if len(f.exchange.cancelled) != 1 {
		t.Fatalf("expected 1 cancellation")
	}
}

func TestCycleRechargesWhenShort(t *testing.T) {
	f := newLoopFixture(t)
	f.wallet.balance = 0.0005

	f.loop.cycle(context.Background())
	if len(f.wallet.recharges) != 1 {
		t.Fatalf("expected a recharge, got %v", f.wallet.recharges)
	}
	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected order after recharge, got %d", got)
	}
}

func TestShutdownCancelsOpenOrders(t *testing.T) {
	f := newLoopFixture(t)
	f.loop.cycle(context.Background())
	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected 1 open order, got %d", got)
	}

	f.loop.shutdown()
	if got := f.exchange.open(); got != 0 {
		t.Fatalf("expected all orders cancelled, got %d", got)
	}
	if f.loop.orders.ActiveCount() != 0 {
		t.Fatalf("expected tracking cleared")
	}
}

func TestCreateFailurePromotesBackup(t *testing.T) {
	f := newLoopFixture(t)
	f.prices["Scrypt"] = 0.001
	f.prices["Ethash"] = 0.001
	f.prices["X11"] = 0.001
	f.profits["Scrypt"] = 0.005
	f.profits["Ethash"] = 0.0035
	f.profits["X11"] = 0.003

	f.exchange.failCreate = true
	f.loop.cycle(context.Background())
	if got := f.exchange.open(); got != 0 {
		t.Fatalf("expected no orders while exchange rejects, got %d", got)
	}

	f.exchange.failCreate = false
	time.Sleep(3 * time.Millisecond)
	f.clock.advance(time.Minute)
	f.loop.cycle(context.Background())
	if got := f.exchange.open(); got == 0 {
		t.Fatalf("expected orders once exchange recovers")
	}
}

func TestCyclePriceOutageKeepsOrders(t *testing.T) {
	f := newLoopFixture(t)
	f.loop.cycle(context.Background())
	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected 1 open order, got %d", got)
	}

	// Price sources go dark while pool profits keep flowing. The cycle must
	// hold position instead of reading the gap as lost profitability.
	f.prices = map[string]float64{}
	time.Sleep(3 * time.Millisecond)
	f.clock.advance(time.Minute)
	f.loop.cycle(context.Background())

	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected order kept through outage, got %d open", got)
	}
	if len(f.exchange.cancelled) != 0 {
		t.Fatalf("unexpected cancellations %v", f.exchange.cancelled)
	}
	if got := f.loop.Status().CycleCount; got != 1 {
		t.Fatalf("expected outage cycle skipped, got %d", got)
	}
}

func TestCycleProfitOutageKeepsOrders(t *testing.T) {
	f := newLoopFixture(t)
	f.loop.cycle(context.Background())

	f.profits = map[string]float64{}
	time.Sleep(3 * time.Millisecond)
	f.clock.advance(time.Minute)
	f.loop.cycle(context.Background())

	if got := f.exchange.open(); got != 1 {
		t.Fatalf("expected order kept through outage, got %d open", got)
	}
	if len(f.exchange.cancelled) != 0 {
		t.Fatalf("unexpected cancellations %v", f.exchange.cancelled)
	}
}

func TestFeeFetchCachedAcrossCycles(t *testing.T) {
	f := newLoopFixtureTTL(t, time.Minute)
	f.fees = models.Fees{"SHA256": {"EU": 0.02, "US": 0.03}}

	f.loop.cycle(context.Background())
	f.clock.advance(time.Minute)
	f.loop.cycle(context.Background())

	if f.feeFetches != 1 {
		t.Fatalf("expected one fee fetch across cached cycles, got %d", f.feeFetches)
	}
	records := f.loop.Status().Records
	if len(records) != 1 || records[0].Market != "EU" {
		t.Fatalf("expected cheapest fee market applied, got %+v", records)
	}
}

func TestHasAlgorithm(t *testing.T) {
	f := newLoopFixture(t)
	if f.loop.HasAlgorithm("SHA256") {
		t.Fatalf("nothing tracked before the first cycle")
	}

	f.loop.cycle(context.Background())
	if !f.loop.HasAlgorithm("SHA256") {
		t.Fatalf("expected ranked algorithm tracked")
	}
	if f.loop.HasAlgorithm("Blake2s") {
		t.Fatalf("unexpected tracking of unranked algorithm")
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	f := newLoopFixture(t)
	events, unsubscribe := f.loop.Subscribe()
	defer unsubscribe()

	f.loop.cycle(context.Background())

	select {
	case e := <-events:
		if e.Type == "" {
			t.Fatalf("empty event type")
		}
	default:
		t.Fatalf("expected at least one event")
	}
}
