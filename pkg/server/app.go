package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"HashArb/internal/domain/repository"
	"HashArb/internal/service/fetch"
	"HashArb/internal/sources"
	"HashArb/internal/usecase/strategy"
	"HashArb/pkg/config"
	xhttp "HashArb/pkg/http"
	applogger "HashArb/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	loop        *strategy.Loop
	registry    *sources.Registry
	coordinator *fetch.Coordinator
	sink        repository.EventSink
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	cron        *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	loop *strategy.Loop,
	registry *sources.Registry,
	coordinator *fetch.Coordinator,
	sink repository.EventSink,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		loop:        loop,
		registry:    registry,
		coordinator: coordinator,
		sink:        sink,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler, a.logger,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}

	a.cron = cron.New()
	spec := "@every " + a.cfg.Sources.RefreshInterval.String()
	if _, err := a.cron.AddFunc(spec, func() {
		probeCtx, probeCancel := context.WithTimeout(ctx, a.cfg.Sources.ProbeTimeout*4)
		defer probeCancel()
		a.registry.RefreshAll(probeCtx)
	}); err != nil {
		a.logger.Error("cron schedule error", applogger.Error(err))
		return err
	}
	a.cron.Start()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		a.loop.Run(ctx)
	}()
	a.logger.Info("strategy loop started",
		applogger.Duration("check_interval", a.cfg.Trading.CheckInterval),
		applogger.Int("port", a.cfg.Server.Port),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown(loopDone)
}

// shutdown stops the loop first so open orders get cancelled, then tears
// down the outer surfaces.
func (a *App) shutdown(loopDone <-chan struct{}) error {
	select {
	case <-loopDone:
	case <-time.After(a.cfg.Server.ShutdownTimeout + 30*time.Second):
		a.logger.Warn("strategy loop did not stop in time")
	}

	cronCtx := a.cron.Stop()
	<-cronCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	a.coordinator.Close()

	if err := a.sink.Close(); err != nil {
		a.logger.Warn("event sink close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
