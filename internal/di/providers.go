package di

import (
	"fmt"

	"HashArb/internal/domain/repository"
	"HashArb/internal/handler/api"
	internalrepo "HashArb/internal/repository"
	"HashArb/internal/service/cache"
	"HashArb/internal/service/fetch"
	"HashArb/internal/service/retry"
	"HashArb/internal/sources"
	"HashArb/internal/usecase/profit"
	"HashArb/internal/usecase/strategy"
	"HashArb/pkg/config"
	xhttp "HashArb/pkg/http"
	pkgkafka "HashArb/pkg/kafka"
	applogger "HashArb/pkg/logger"
	"HashArb/pkg/metrics"
	"HashArb/pkg/server"
)

const defaultPool = "nicehash"

// paperWalletBalance funds credential-less runs with a small starting budget.
const paperWalletBalance = 0.01

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClock provides the wall clock.
func ProvideClock() repository.Clock {
	return internalrepo.SystemClock{}
}

// ProvideCache selects the snapshot cache backend.
func ProvideCache(cfg *config.Config) cache.Cache {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		}, cfg.Cache.TTL)
	}
	return cache.NewTTLCache(cfg.Cache.TTL)
}

// ProvideRetrier creates the fetch retry executor.
func ProvideRetrier(cfg *config.Config) *retry.Executor {
	return retry.New(cfg.Retry.MaxAttempts, cfg.Retry.BackoffFactor)
}

// ProvideCoordinator creates the fetch worker pool.
func ProvideCoordinator(cfg *config.Config, l *applogger.Logger) *fetch.Coordinator {
	return fetch.NewCoordinator(cfg.Fetch.MaxWorkers, cfg.Fetch.Timeout, l)
}

// ProvideRegistry builds the source registry with the built-in providers.
// WhatToMine serves pool profits first and doubles as the price backup.
func ProvideRegistry(l *applogger.Logger, m repository.Metrics) *sources.Registry {
	r := sources.NewRegistry(l, m)
	for _, desc := range sources.Defaults() {
		switch desc.ID {
		case sources.SourceWhatToMine:
			p := sources.NewWhatToMineProvider(desc)
			r.Register(desc, p.FetchProfits)

			backup := desc
			backup.ID = desc.ID + "_prices"
			backup.Category = "prices"
			backup.Priority = 4
			r.Register(backup, p.FetchPrices)
		case sources.SourceCoinGecko:
			r.Register(desc, sources.NewCoinGeckoProvider(desc).FetchPrices)
		case sources.SourceCryptoCompare:
			r.Register(desc, sources.NewCryptoCompareProvider(desc).FetchPrices)
		case sources.SourceNiceHash:
			r.RegisterFees(desc, sources.NewNiceHashStatsProvider(desc).FetchFees)
		}
	}
	return r
}

// ProvideExchange picks the live marketplace client when credentials are
// configured, the in-memory paper exchange otherwise.
func ProvideExchange(cfg *config.Config) repository.Exchange {
	if cfg.Exchange.APIKey == "" || cfg.Exchange.APISecret == "" {
		return internalrepo.NewPaperExchange()
	}
	return internalrepo.NewNiceHashExchange(internalrepo.NiceHashConfig{
		BaseURL:   cfg.Exchange.BaseURL,
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		OrgID:     cfg.Exchange.OrgID,
	})
}

// ProvideWallet picks the funding account matching the exchange choice.
func ProvideWallet(cfg *config.Config) repository.Wallet {
	if cfg.Exchange.APIKey == "" || cfg.Exchange.APISecret == "" {
		return internalrepo.NewPaperWallet(paperWalletBalance)
	}
	return internalrepo.NewNiceHashWallet(internalrepo.NiceHashConfig{
		BaseURL:   cfg.Exchange.BaseURL,
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		OrgID:     cfg.Exchange.OrgID,
	})
}

// ProvideSink creates the Kafka event sink, or a no-op when disabled.
func ProvideSink(cfg *config.Config) (repository.EventSink, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopSink{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSink(producer, cfg.Kafka.Topic), nil
}

// ProvideMonitor creates the price monitor.
func ProvideMonitor(cfg *config.Config) *strategy.PriceMonitor {
	return strategy.NewPriceMonitor(cfg.Trading.CheckInterval)
}

// ProvideRanker creates the profit ranker.
func ProvideRanker() *profit.Ranker {
	return profit.NewRanker(defaultPool)
}

// ProvideGuarantee creates the primary/backup selector.
func ProvideGuarantee(cfg *config.Config) *strategy.GuaranteeSelector {
	return strategy.NewGuaranteeSelector(cfg.Trading.MinProfitableAlgorithms)
}

// ProvideOrders creates the order manager.
func ProvideOrders(cfg *config.Config) *strategy.OrderManager {
	return strategy.NewOrderManager(strategy.OrderManagerConfig{
		MaxOrders:      cfg.Trading.MaxOrders,
		MinOrderAmount: cfg.Trading.MinOrderAmount,
		MaxOrderAmount: cfg.Trading.MaxOrderAmount,
	})
}

// ProvideSpeed creates the speed limit manager.
func ProvideSpeed(cfg *config.Config) *strategy.SpeedManager {
	return strategy.NewSpeedManager(strategy.SpeedConfig{
		Mode:             strategy.SpeedMode(cfg.Speed.Mode),
		FixedLimit:       cfg.Speed.FixedLimit,
		MinLimit:         cfg.Speed.MinLimit,
		MaxLimit:         cfg.Speed.MaxLimit,
		Increment:        cfg.Speed.Increment,
		AdaptiveFactor:   cfg.Speed.AdaptiveFactor,
		DynamicThreshold: cfg.Speed.DynamicThreshold,
	})
}

// ProvideRecharge creates the wallet recharge manager.
func ProvideRecharge(
	cfg *config.Config,
	wallet repository.Wallet,
	m repository.Metrics,
	clock repository.Clock,
) *strategy.RechargeManager {
	return strategy.NewRechargeManager(strategy.RechargeConfig{
		Enabled:             cfg.Recharge.Enabled,
		Amount:              cfg.Recharge.Amount,
		MinBalanceThreshold: cfg.Recharge.MinBalanceThreshold,
		MaxDailyRecharges:   cfg.Recharge.MaxDailyRecharges,
		CooldownMinutes:     cfg.Recharge.CooldownMinutes,
	}, wallet, m, clock)
}

// ProvideLoop assembles the strategy loop.
func ProvideLoop(
	cfg *config.Config,
	l *applogger.Logger,
	registry *sources.Registry,
	coordinator *fetch.Coordinator,
	c cache.Cache,
	retrier *retry.Executor,
	monitor *strategy.PriceMonitor,
	ranker *profit.Ranker,
	guarantee *strategy.GuaranteeSelector,
	orders *strategy.OrderManager,
	speed *strategy.SpeedManager,
	recharge *strategy.RechargeManager,
	exchange repository.Exchange,
	wallet repository.Wallet,
	sink repository.EventSink,
	m repository.Metrics,
	clock repository.Clock,
) *strategy.Loop {
	return strategy.NewLoop(strategy.LoopConfig{
		ProfitThreshold: cfg.Trading.ProfitThreshold,
		RateLimitDelay:  cfg.Trading.RateLimitDelay,
		CheckInterval:   cfg.Trading.CheckInterval,
	}, strategy.LoopDeps{
		Logger:      l,
		Registry:    registry,
		Coordinator: coordinator,
		Cache:       c,
		Retrier:     retrier,
		Monitor:     monitor,
		Ranker:      ranker,
		Guarantee:   guarantee,
		Orders:      orders,
		Speed:       speed,
		Recharge:    recharge,
		Exchange:    exchange,
		Wallet:      wallet,
		Sink:        sink,
		Metrics:     m,
		Clock:       clock,
	})
}

// ProvideHTTPHandler exposes the status handler through the server interface.
func ProvideHTTPHandler(h *api.StatusHandler) xhttp.Handler {
	return h
}

// ProvideStatusHandler creates the HTTP status handler.
func ProvideStatusHandler(l *applogger.Logger, loop *strategy.Loop) *api.StatusHandler {
	return api.NewStatusHandler(l, loop)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	loop *strategy.Loop,
	registry *sources.Registry,
	coordinator *fetch.Coordinator,
	sink repository.EventSink,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, loop, registry, coordinator, sink, handler)
}
