package usecase

import (
	"context"
	"time"

	"SigPulse/internal/domain/models"
	drepo "SigPulse/internal/domain/repository"
	"SigPulse/internal/services/alerts"
	"SigPulse/internal/services/indicators"
	applogger "SigPulse/pkg/logger"
)

// Runner drives the evaluation loop: on every poll tick it fetches
// candle history for each configured timeframe, builds a snapshot,
// evaluates it and dispatches emitted decisions.
type Runner struct {
	pair       string
	timeframes []drepo.Timeframe
	market     drepo.MarketData
	builder    *indicators.Builder
	eval       *Evaluator
	notifier   drepo.Notifier
	metrics    drepo.Metrics
	store      *LatestStore
	tickers    *TickerCollector
	log        *applogger.Logger

	detector      *alerts.Detector
	alertCooldown time.Duration
	lastAlert     map[string]time.Time

	pollEvery   time.Duration
	historyBars int
	done        chan struct{}
}

// RunnerParams groups the Runner dependencies.
type RunnerParams struct {
	Pair        string
	Timeframes  []drepo.Timeframe
	Market      drepo.MarketData
	Builder     *indicators.Builder
	Evaluator   *Evaluator
	Notifier    drepo.Notifier
	Metrics     drepo.Metrics
	Store       *LatestStore
	Tickers     *TickerCollector
	Logger      *applogger.Logger
	PollEvery   time.Duration
	HistoryBars int

	// Detector is optional; when set, each cycle also scans the candle
	// window for market anomalies and dispatches them as alerts.
	Detector      *alerts.Detector
	AlertCooldown time.Duration
}

// NewRunner creates a new Runner instance.
func NewRunner(p RunnerParams) *Runner {
	if p.PollEvery <= 0 {
		p.PollEvery = time.Minute
	}
	if p.HistoryBars <= 0 {
		p.HistoryBars = 250
	}
	if p.AlertCooldown <= 0 {
		p.AlertCooldown = 5 * time.Minute
	}
	return &Runner{
		pair:        p.Pair,
		timeframes:  p.Timeframes,
		market:      p.Market,
		builder:     p.Builder,
		eval:        p.Evaluator,
		notifier:    p.Notifier,
		metrics:     p.Metrics,
		store:       p.Store,
		tickers:     p.Tickers,
		log:         p.Logger,
		pollEvery:   p.PollEvery,
		historyBars: p.HistoryBars,

		detector:      p.Detector,
		alertCooldown: p.AlertCooldown,
		lastAlert:     make(map[string]time.Time),

		done: make(chan struct{}),
	}
}

// Start launches the poll loop. The first cycle runs immediately.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		defer close(r.done)
		r.runCycle(ctx)
		ticker := time.NewTicker(r.pollEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.runCycle(ctx)
			}
		}
	}()
}

// Wait blocks until the loop has exited.
func (r *Runner) Wait() { <-r.done }

func (r *Runner) runCycle(ctx context.Context) {
	for _, tf := range r.timeframes {
		if ctx.Err() != nil {
			return
		}
		r.evaluateTimeframe(ctx, tf)
	}
}

func (r *Runner) evaluateTimeframe(ctx context.Context, tf drepo.Timeframe) {
	started := time.Now()

	candles, err := r.market.Candles(ctx, r.pair, tf, r.historyBars)
	if err != nil {
		r.metrics.RecordError("candles")
		r.log.Error("fetch candles failed",
			applogger.String("pair", r.pair),
			applogger.String("tf", string(tf)),
			applogger.Error(err))
		return
	}

	r.dispatchAlerts(ctx, tf, candles)

	snap, err := r.builder.BuildSnapshot(candles)
	if err != nil {
		r.metrics.RecordError("snapshot")
		r.log.Error("build snapshot failed",
			applogger.String("pair", r.pair),
			applogger.String("tf", string(tf)),
			applogger.Error(err))
		return
	}

	d, err := r.eval.Evaluate(r.pair, tf, snap)
	if err != nil {
		r.metrics.RecordError("evaluate")
		r.log.Error("evaluation failed",
			applogger.String("pair", r.pair),
			applogger.String("tf", string(tf)),
			applogger.Error(err))
		return
	}

	r.store.Put(d)
	r.metrics.RecordDecision(d.Pair, d.Timeframe, d.Tier, d.Emitted)
	r.metrics.RecordScore(d.Pair, d.Timeframe, d.Score)
	r.metrics.RecordLatency("evaluate", time.Since(started).Seconds())

	r.log.Debug("cycle complete",
		applogger.String("pair", d.Pair),
		applogger.String("tf", d.Timeframe),
		applogger.String("tier", string(d.Tier)),
		applogger.Float64("score", d.Score),
		applogger.Bool("emitted", d.Emitted))

	if !d.Emitted {
		return
	}

	tk := r.currentTicker(ctx)
	if err := r.notifier.Dispatch(ctx, d, tk); err != nil {
		r.metrics.RecordError("notify")
		r.log.Error("dispatch failed",
			applogger.String("pair", d.Pair),
			applogger.String("tier", string(d.Tier)),
			applogger.Error(err))
		return
	}
	r.log.Info("signal emitted",
		applogger.String("pair", d.Pair),
		applogger.String("tf", d.Timeframe),
		applogger.String("tier", string(d.Tier)),
		applogger.Float64("score", d.Score))
}

// dispatchAlerts scans the window for market anomalies. Each alert
// class is rate limited independently so a persisting condition does
// not spam every cycle. Only the loop goroutine touches lastAlert.
func (r *Runner) dispatchAlerts(ctx context.Context, tf drepo.Timeframe, candles []models.Candle) {
	if r.detector == nil {
		return
	}
	now := time.Now()
	for _, a := range r.detector.DetectAll(candles, string(tf)) {
		alert := a
		if at, ok := r.lastAlert[alert.Key()]; ok && now.Sub(at) < r.alertCooldown {
			continue
		}
		r.log.Warn(alert.Message,
			applogger.String("alert", alert.Key()),
			applogger.String("severity", string(alert.Severity)))
		if err := r.notifier.DispatchAlert(ctx, &alert, r.currentTicker(ctx)); err != nil {
			r.metrics.RecordError("alert")
			r.log.Error("alert dispatch failed",
				applogger.String("alert", alert.Key()),
				applogger.Error(err))
			continue
		}
		r.lastAlert[alert.Key()] = now
	}
}

// currentTicker prefers the live stream, falling back to REST. A nil
// ticker is acceptable; the dispatcher formats without 24h context.
func (r *Runner) currentTicker(ctx context.Context) *models.Ticker {
	if r.tickers != nil {
		if tk := r.tickers.Latest(); tk != nil {
			return tk
		}
	}
	tk, err := r.market.Ticker(ctx, r.pair)
	if err != nil {
		r.log.Warn("ticker fetch failed", applogger.Error(err))
		return nil
	}
	return tk
}
