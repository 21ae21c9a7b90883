//go:build wireinject
// +build wireinject

package di

import (
	"SentiPulse/pkg/config"
	"SentiPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Storage backends
		ProvideStore,
		ProvideClickHouseClient,
		ProvideArchive,
		ProvideAlertSink,

		// Sources
		ProvideAdapters,

		// Use cases
		ProvideAggregator,
		ProvideScheduler,

		// HTTP
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
