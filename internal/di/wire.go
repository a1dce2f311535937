//go:build wireinject
// +build wireinject

package di

import (
	"HashArb/pkg/config"
	"HashArb/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient services
		ProvideLogger,
		ProvideMetrics,
		ProvideClock,

		// Data plumbing
		ProvideCache,
		ProvideRetrier,
		ProvideCoordinator,
		ProvideRegistry,

		// Marketplace adapters
		ProvideExchange,
		ProvideWallet,
		ProvideSink,

		// Strategy components
		ProvideMonitor,
		ProvideRanker,
		ProvideGuarantee,
		ProvideOrders,
		ProvideSpeed,
		ProvideRecharge,
		ProvideLoop,

		// HTTP surface
		ProvideStatusHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
