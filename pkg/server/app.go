package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SigPulse/internal/service/notify"
	"SigPulse/internal/usecase"
	"SigPulse/pkg/config"
	xhttp "SigPulse/pkg/http"
	pkgkafka "SigPulse/pkg/kafka"
	applogger "SigPulse/pkg/logger"
	"SigPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	runner     *usecase.Runner
	collector  *usecase.TickerCollector
	queue      *queue.RedisQueue
	producer   *pkgkafka.Producer
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	runner *usecase.Runner,
	collector *usecase.TickerCollector,
	q *queue.RedisQueue,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		runner:    runner,
		collector: collector,
		queue:     q,
		producer:  producer,
		handler:   handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			// The REST fallback keeps evaluation running without the stream.
			a.log.Warn("ticker stream unavailable", applogger.Error(err))
		} else {
			a.log.Info("ticker stream started", applogger.String("pair", a.cfg.Exchange.Pair))
		}
	}

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			a.log.Error("notification queue start error", applogger.Error(err))
			return err
		}
		a.queue.StartRetryProcessor()
		a.log.Info("notification queue started")

		// Aggregate repeated error logs and ship them through the queue.
		a.log.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          notify.LogAlertMessageType,
			Publisher:      a.queue,
		})
	}

	a.runner.Start(ctx)
	a.log.Info("evaluation loop started",
		applogger.String("pair", a.cfg.Exchange.Pair),
		applogger.Strings("timeframes", a.cfg.Evaluation.Timeframes))

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.runner.Wait()

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("ticker stream stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.queue != nil {
		a.log.RemoveCollector()
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("notification queue stop error", applogger.Error(err))
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
