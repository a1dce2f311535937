package strategy

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"HashArb/internal/domain/models"
	"HashArb/internal/domain/repository"
	"HashArb/internal/service/cache"
	"HashArb/internal/service/fetch"
	"HashArb/internal/service/retry"
	"HashArb/internal/sources"
	"HashArb/internal/usecase/profit"
	applogger "HashArb/pkg/logger"
)

const trendWindow = 10

const (
	EventCycleSummary   = "cycle_summary"
	EventOrderCreated   = "order_created"
	EventOrderUpdated   = "order_updated"
	EventOrderCancelled = "order_cancelled"
	EventRecharge       = "recharge"
)

// Event is one strategy occurrence, published to the sink and to local
// subscribers.
type Event struct {
	Type    string      `json:"type"`
	Time    time.Time   `json:"time"`
	Payload interface{} `json:"payload"`
}

// LoopConfig shapes the trading cycle.
type LoopConfig struct {
	ProfitThreshold float64
	RateLimitDelay  time.Duration
	CheckInterval   time.Duration
}

// Status is a point-in-time snapshot of the strategy state, safe to serve
// from HTTP handlers while the loop runs.
type Status struct {
	CycleCount    int                      `json:"cycle_count"`
	LastCycle     time.Time                `json:"last_cycle"`
	Balance       float64                  `json:"balance"`
	Summary       models.RankingSummary    `json:"summary"`
	TopCoins      []string                 `json:"top_coins"`
	Records       []models.ProfitRecord    `json:"records"`
	Trends        []models.TrendEntry      `json:"trends"`
	ActiveOrders  map[string]OrderStrategy `json:"active_orders"`
	RechargeCount int                      `json:"recharge_count"`
	SpeedChanges  []models.SpeedChange     `json:"speed_changes"`
}

// Loop runs the trading cycle: fetch market data, rank algorithms, place and
// maintain rental orders, and top up the wallet when needed.
type Loop struct {
	cfg         LoopConfig
	logger      *applogger.Logger
	registry    *sources.Registry
	coordinator *fetch.Coordinator
	cache       cache.Cache
	retrier     *retry.Executor

	monitor   *PriceMonitor
	ranker    *profit.Ranker
	guarantee *GuaranteeSelector
	orders    *OrderManager
	speed     *SpeedManager
	recharge  *RechargeManager

	exchange repository.Exchange
	wallet   repository.Wallet
	sink     repository.EventSink
	metrics  repository.Metrics
	clock    repository.Clock

	lastFees models.Fees

	mu     sync.RWMutex
	status Status

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// LoopDeps bundles the collaborators of the loop.
type LoopDeps struct {
	Logger      *applogger.Logger
	Registry    *sources.Registry
	Coordinator *fetch.Coordinator
	Cache       cache.Cache
	Retrier     *retry.Executor
	Monitor     *PriceMonitor
	Ranker      *profit.Ranker
	Guarantee   *GuaranteeSelector
	Orders      *OrderManager
	Speed       *SpeedManager
	Recharge    *RechargeManager
	Exchange    repository.Exchange
	Wallet      repository.Wallet
	Sink        repository.EventSink
	Metrics     repository.Metrics
	Clock       repository.Clock
}

func NewLoop(cfg LoopConfig, deps LoopDeps) *Loop {
	return &Loop{
		cfg:         cfg,
		logger:      deps.Logger,
		registry:    deps.Registry,
		coordinator: deps.Coordinator,
		cache:       deps.Cache,
		retrier:     deps.Retrier,
		monitor:     deps.Monitor,
		ranker:      deps.Ranker,
		guarantee:   deps.Guarantee,
		orders:      deps.Orders,
		speed:       deps.Speed,
		recharge:    deps.Recharge,
		exchange:    deps.Exchange,
		wallet:      deps.Wallet,
		sink:        deps.Sink,
		metrics:     deps.Metrics,
		clock:       deps.Clock,
		subs:        make(map[int]chan Event),
	}
}

// Run executes cycles until ctx is cancelled, then cancels all open orders.
// The pause between cycles adapts to observed price volatility.
func (l *Loop) Run(ctx context.Context) {
	l.registry.RefreshAll(ctx)

	for {
		l.safeCycle(ctx)

		interval := l.monitor.MinAdaptiveInterval(l.trackedAlgorithms())
		if interval <= 0 {
			interval = l.cfg.CheckInterval
		}

		select {
		case <-ctx.Done():
			l.shutdown()
			return
		case <-time.After(interval):
		}
	}
}

// safeCycle isolates one cycle behind a recover boundary so a provider or
// exchange surprise cannot kill the loop.
func (l *Loop) safeCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			l.metrics.RecordError("cycle_panic")
			l.logger.Error("cycle panicked",
				applogger.Any("panic", r),
				applogger.String("stack", string(debug.Stack())),
			)
		}
	}()
	l.cycle(ctx)
}

func (l *Loop) cycle(ctx context.Context) {
	start := l.clock.Now()

	prices, profits, fees := l.fetchMarketData(ctx)
	if len(prices) == 0 || len(profits) == 0 {
		l.metrics.RecordError("incomplete_market_data")
		l.logger.Warn("incomplete market data, holding orders this cycle",
			applogger.Int("prices", len(prices)),
			applogger.Int("profits", len(profits)),
		)
		return
	}

	if len(fees) == 0 {
		fees = l.lastFees
	} else {
		l.lastFees = fees
	}

	now := l.clock.Now()
	l.monitor.UpdatePrices(prices, "global", now)

	records := l.ranker.Build(prices, profits, fees, now)
	for _, rec := range records {
		l.metrics.RecordNetProfit(rec.Algorithm, rec.NetProfit)
	}

	primary := l.guarantee.SelectPrimary(records)
	balance := l.fetchBalance(ctx)
	balance = l.manageOrders(ctx, primary, balance, now)
	l.cancelStaleOrders(ctx, records)

	l.metrics.RecordActiveOrders(l.orders.ActiveCount())
	elapsed := time.Since(start)
	l.metrics.RecordCycleDuration(elapsed.Seconds())

	summary := l.ranker.Summary(records)
	l.snapshotStatus(records, summary, balance, now)
	l.publish(ctx, EventCycleSummary, map[string]interface{}{
		"summary":       summary,
		"top_coins":     l.ranker.TopProfitableCoins(records, 3),
		"active_orders": l.orders.ActiveCount(),
		"duration_ms":   elapsed.Milliseconds(),
	})

	l.logger.Info("cycle done",
		applogger.Int("algorithms", len(records)),
		applogger.Int("profitable", summary.Profitable),
		applogger.Int("active_orders", l.orders.ActiveCount()),
		applogger.Duration("elapsed", elapsed),
	)
}

// fetchMarketData loads the price, pool profit and fee categories
// concurrently, serving from cache when fresh and retrying source failures.
func (l *Loop) fetchMarketData(ctx context.Context) (map[string]float64, map[string]float64, models.Fees) {
	jobs := []fetch.Job{
		{Category: string(models.CategoryPrices), Run: l.categoryJob(models.CategoryPrices)},
		{Category: string(models.CategoryPoolProfits), Run: l.categoryJob(models.CategoryPoolProfits)},
		{Category: string(models.CategoryFees), Run: l.feesJob()},
	}
	results := l.coordinator.FetchAll(ctx, jobs)

	prices := results[string(models.CategoryPrices)].Data
	profits := results[string(models.CategoryPoolProfits)].Data
	fees := models.ExpandFees(results[string(models.CategoryFees)].Data)
	return prices, profits, fees
}

func (l *Loop) categoryJob(category models.SourceCategory) func(ctx context.Context) (map[string]float64, error) {
	return func(ctx context.Context) (map[string]float64, error) {
		if snap, ok := l.cache.Get(string(category)); ok {
			return snap, nil
		}
		var data map[string]float64
		err := l.retrier.Do(ctx, func(ctx context.Context) error {
			data = l.registry.Fetch(ctx, category)
			if len(data) == 0 {
				return ErrNoSourceData
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		l.cache.Set(string(category), data)
		return data, nil
	}
}

// feesJob is the fee-category flavor of categoryJob: fee tables cache and
// retry like the scalar categories but travel flattened through the snapshot
// cache.
func (l *Loop) feesJob() func(ctx context.Context) (map[string]float64, error) {
	return func(ctx context.Context) (map[string]float64, error) {
		if snap, ok := l.cache.Get(string(models.CategoryFees)); ok {
			return snap, nil
		}
		var flat map[string]float64
		err := l.retrier.Do(ctx, func(ctx context.Context) error {
			fees := l.registry.FetchFees(ctx)
			if len(fees) == 0 {
				return ErrNoSourceData
			}
			flat = fees.Flatten()
			return nil
		})
		if err != nil {
			return nil, err
		}
		l.cache.Set(string(models.CategoryFees), flat)
		return flat, nil
	}
}

func (l *Loop) fetchBalance(ctx context.Context) float64 {
	balance, err := l.wallet.Balance(ctx)
	if err != nil {
		l.metrics.RecordError("balance_fetch")
		l.logger.Warn("balance fetch failed", applogger.Error(err))
		return 0
	}
	return balance
}

// manageOrders walks the primary set, cancelling unprofitable orders,
// repricing drifted ones and placing new ones, pacing placements by the
// configured delay. Returns the remaining balance.
func (l *Loop) manageOrders(ctx context.Context, primary []models.ProfitRecord, balance float64, now time.Time) float64 {
	queue := make([]models.ProfitRecord, len(primary))
	copy(queue, primary)

	for i := 0; i < len(queue); i++ {
		rec := queue[i]

		if orderID, ok := l.orders.OrderIDFor(rec.Algorithm); ok {
			if rec.NetProfit < l.cfg.ProfitThreshold {
				l.cancelOrder(ctx, orderID, rec.Algorithm, "below threshold")
				l.guarantee.UpdatePerformance(rec.Algorithm, false, 0)
				if backup, ok := l.guarantee.BackupFor(); ok {
					queue = append(queue, backup)
				}
				continue
			}
			l.maybeReprice(ctx, orderID, rec)
			continue
		}

		if !l.orders.ShouldCreate(rec.Algorithm, rec.NetProfit, l.exchange.HasCredentials()) {
			continue
		}
		if rec.NetProfit < l.cfg.ProfitThreshold {
			continue
		}

		trend, trendKnown := l.monitor.Trend(rec.Algorithm)
		volatility := l.monitor.Volatility(rec.Algorithm)
		strat := l.orders.BuildStrategy(rec.Algorithm, rec.Market, rec.RentalPrice, rec.NetProfit, trend, trendKnown, volatility)

		if balance < strat.Amount {
			recharged, ok := l.maybeRecharge(ctx, balance, strat.Amount)
			if !ok {
				continue
			}
			balance += recharged
		}

		optimal := l.speed.OptimalLimit(rec.Algorithm, rec.NetProfit, l.monitor.VolatilityRatio(rec.Algorithm))
		limit := l.speed.AdjustToIncrement(optimal)
		l.speed.UpdateLimit(rec.Algorithm, limit, "cycle placement", now)

		if l.placeOrder(ctx, strat, limit, now) {
			balance -= strat.Amount
			l.guarantee.UpdatePerformance(rec.Algorithm, true, rec.NetProfit)
			l.pause(ctx, l.cfg.RateLimitDelay)
		} else {
			l.guarantee.UpdatePerformance(rec.Algorithm, false, 0)
			if backup, ok := l.guarantee.BackupFor(); ok {
				queue = append(queue, backup)
			}
		}
	}
	return balance
}

func (l *Loop) placeOrder(ctx context.Context, strat OrderStrategy, limit float64, now time.Time) bool {
	order := &models.Order{
		Algorithm: strat.Algorithm,
		Market:    strat.Market,
		Price:     strat.TargetPrice,
		Amount:    strat.Amount,
		Speed:     limit,
		CreatedAt: now,
	}
	id, err := l.exchange.CreateOrder(ctx, order)
	if err != nil {
		l.metrics.RecordError("order_create")
		l.logger.Error("order create failed",
			applogger.String("algorithm", strat.Algorithm),
			applogger.Error(err),
		)
		return false
	}
	l.orders.Add(id, strat)
	l.metrics.RecordOrderAction("create")
	l.publish(ctx, EventOrderCreated, order)
	l.logger.Info("order created",
		applogger.String("order_id", id),
		applogger.String("algorithm", strat.Algorithm),
		applogger.Float64("price", strat.TargetPrice),
		applogger.Float64("amount", strat.Amount),
	)
	return true
}

func (l *Loop) maybeReprice(ctx context.Context, orderID string, rec models.ProfitRecord) {
	if !l.orders.ShouldUpdate(orderID, rec.RentalPrice) {
		return
	}
	strat, ok := l.orders.Strategy(orderID)
	if !ok {
		return
	}
	newPrice := rec.RentalPrice * strat.AdjustmentFactor
	if err := l.exchange.UpdateOrderPrice(ctx, orderID, newPrice); err != nil {
		l.metrics.RecordError("order_update")
		l.logger.Warn("order reprice failed",
			applogger.String("order_id", orderID),
			applogger.Error(err),
		)
		return
	}
	l.metrics.RecordOrderAction("update")
	l.publish(ctx, EventOrderUpdated, map[string]interface{}{
		"order_id":  orderID,
		"algorithm": rec.Algorithm,
		"price":     newPrice,
	})
}

func (l *Loop) maybeRecharge(ctx context.Context, balance, required float64) (float64, bool) {
	ok, reason := l.recharge.ShouldRecharge(balance, required)
	if !ok {
		l.logger.Debug("recharge skipped",
			applogger.String("reason", reason),
			applogger.Float64("balance", balance),
			applogger.Float64("required", required),
		)
		return 0, false
	}
	event, err := l.recharge.Execute(ctx, balance, required)
	if err != nil {
		l.metrics.RecordError("recharge")
		l.logger.Warn("recharge failed", applogger.Error(err))
		return 0, false
	}
	l.publish(ctx, EventRecharge, event)
	l.logger.Info("wallet recharged",
		applogger.Float64("amount", event.Amount),
		applogger.Float64("balance_before", event.BalanceBefore),
	)
	return event.Amount, true
}

// cancelStaleOrders drops active orders whose algorithms fell below the
// profit threshold or out of the ranking entirely.
func (l *Loop) cancelStaleOrders(ctx context.Context, records []models.ProfitRecord) {
	nets := make(map[string]float64, len(records))
	for _, rec := range records {
		nets[rec.Algorithm] = rec.NetProfit
	}
	for orderID, strat := range l.orders.Active() {
		net, ok := nets[strat.Algorithm]
		if ok && net >= l.cfg.ProfitThreshold {
			continue
		}
		l.cancelOrder(ctx, orderID, strat.Algorithm, "stale")
	}
}

func (l *Loop) cancelOrder(ctx context.Context, orderID, algorithm, reason string) {
	if err := l.exchange.CancelOrder(ctx, orderID); err != nil {
		l.metrics.RecordError("order_cancel")
		l.logger.Warn("order cancel failed",
			applogger.String("order_id", orderID),
			applogger.Error(err),
		)
		return
	}
	l.orders.Remove(orderID)
	l.metrics.RecordOrderAction("cancel")
	l.publish(ctx, EventOrderCancelled, map[string]interface{}{
		"order_id":  orderID,
		"algorithm": algorithm,
		"reason":    reason,
	})
}

// shutdown cancels every open order on a fresh deadline so funds are not
// left committed after the process exits.
func (l *Loop) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	active := l.orders.Active()
	for orderID, strat := range active {
		l.cancelOrder(ctx, orderID, strat.Algorithm, "shutdown")
	}
	l.metrics.RecordActiveOrders(l.orders.ActiveCount())
	l.logger.Info("strategy loop stopped", applogger.Int("orders_cancelled", len(active)))
}

func (l *Loop) snapshotStatus(records []models.ProfitRecord, summary models.RankingSummary, balance float64, now time.Time) {
	status := Status{
		LastCycle:     now,
		Balance:       balance,
		Summary:       summary,
		TopCoins:      l.ranker.TopProfitableCoins(records, 3),
		Records:       records,
		Trends:        l.ranker.Trends(trendWindow),
		ActiveOrders:  l.orders.Active(),
		RechargeCount: len(l.recharge.History()),
		SpeedChanges:  l.speed.Changes(),
	}

	l.mu.Lock()
	status.CycleCount = l.status.CycleCount + 1
	l.status = status
	l.mu.Unlock()
}

// Status returns the latest cycle snapshot.
func (l *Loop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// SourceHealth exposes the registry's health records.
func (l *Loop) SourceHealth() map[string]models.SourceHealth {
	return l.registry.Health()
}

// HasAlgorithm reports whether the latest cycle ranked the algorithm or an
// open order still runs on it.
func (l *Loop) HasAlgorithm(algorithm string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, rec := range l.status.Records {
		if rec.Algorithm == algorithm {
			return true
		}
	}
	for _, strat := range l.status.ActiveOrders {
		if strat.Algorithm == algorithm {
			return true
		}
	}
	return false
}

// SetSpeedLimit applies an operator-requested limit for an algorithm.
func (l *Loop) SetSpeedLimit(algorithm string, limit float64, reason string) float64 {
	return l.speed.UpdateLimit(algorithm, limit, reason, l.clock.Now())
}

// Subscribe registers a local event listener. Slow listeners drop events.
// The returned func unsubscribes.
func (l *Loop) Subscribe() (<-chan Event, func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()

	id := l.nextSub
	l.nextSub++
	ch := make(chan Event, 16)
	l.subs[id] = ch

	return ch, func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

func (l *Loop) publish(ctx context.Context, eventType string, payload interface{}) {
	event := Event{Type: eventType, Time: l.clock.Now(), Payload: payload}

	if l.sink != nil {
		if err := l.sink.Publish(ctx, eventType, event); err != nil {
			l.metrics.RecordError("event_publish")
			l.logger.Warn("event publish failed",
				applogger.String("type", eventType),
				applogger.Error(err),
			)
		}
	}

	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, ch := range l.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (l *Loop) trackedAlgorithms() []string {
	snapshot, ok := l.ranker.Latest()
	if !ok {
		return nil
	}
	algorithms := make([]string, 0, len(snapshot.Records))
	for _, rec := range snapshot.Records {
		algorithms = append(algorithms, rec.Algorithm)
	}
	return algorithms
}

func (l *Loop) pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
