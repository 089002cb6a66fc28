//go:build wireinject
// +build wireinject

package di

import (
	"SigPulse/pkg/config"
	"SigPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideHTTPClient,
		ProvideCache,

		// Exchange access
		ProvideMarketData,
		ProvideTickerStream,

		// Decision pipeline
		ProvideScoringEngine,
		ProvideRiskCalculator,
		ProvideEvaluator,
		ProvideIndicatorBuilder,
		ProvideAlertDetector,

		// Notifications
		ProvideKafkaProducer,
		ProvideNotifyChannels,
		ProvideNotifyQueue,
		ProvideNotifier,

		// Orchestration
		ProvideLatestStore,
		ProvideTickerCollector,
		ProvideRunner,
		ProvideHTTPHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
