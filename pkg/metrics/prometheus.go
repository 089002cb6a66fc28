package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"SigPulse/internal/domain/models"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	decisionsTotal *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	lastScore      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		decisionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigpulse_decisions_total",
				Help: "Total number of evaluation decisions by tier and emission",
			},
			[]string{"pair", "tf", "tier", "emitted"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sigpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sigpulse_last_price",
				Help: "Last recorded price for a pair",
			},
			[]string{"pair"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sigpulse_composite_score",
				Help: "Latest composite score per pair and timeframe",
			},
			[]string{"pair", "tf"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sigpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordDecision records the outcome of one evaluation cycle.
func (r *Recorder) RecordDecision(pair, tf string, tier models.SignalTier, emitted bool) {
	e := "false"
	if emitted {
		e = "true"
	}
	r.decisionsTotal.WithLabelValues(pair, tf, string(tier), e).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a pair.
func (r *Recorder) RecordLastPrice(pair string, price float64) {
	r.lastPrice.WithLabelValues(pair).Set(price)
}

// RecordScore records the latest composite score.
func (r *Recorder) RecordScore(pair, tf string, score float64) {
	r.lastScore.WithLabelValues(pair, tf).Set(score)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
