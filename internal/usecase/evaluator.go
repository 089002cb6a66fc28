package usecase

import (
	"fmt"
	"time"

	"SigPulse/internal/domain/models"
	drepo "SigPulse/internal/domain/repository"
	"SigPulse/internal/services/risk"
	"SigPulse/internal/services/scoring"
	"SigPulse/internal/services/throttle"
)

// Evaluator runs one full decision cycle: score the snapshot, attach
// risk levels, then consult the throttle. Any stage failing aborts the
// cycle without touching throttle state.
type Evaluator struct {
	engine    *scoring.Engine
	risk      *risk.Calculator
	throttle  *throttle.Throttle
	intervals map[drepo.Timeframe]time.Duration
	now       func() time.Time
}

// NewEvaluator wires the three stages together. The interval map sets
// the per-timeframe minimum spacing between same-direction signals.
func NewEvaluator(engine *scoring.Engine, calc *risk.Calculator, th *throttle.Throttle, intervals map[drepo.Timeframe]time.Duration) *Evaluator {
	return &Evaluator{
		engine:    engine,
		risk:      calc,
		throttle:  th,
		intervals: intervals,
		now:       time.Now,
	}
}

// Evaluate produces the decision for one pair, timeframe and snapshot.
func (e *Evaluator) Evaluate(pair string, tf drepo.Timeframe, snap *models.IndicatorSnapshot) (*models.Decision, error) {
	res, err := e.engine.Score(snap)
	if err != nil {
		return nil, fmt.Errorf("score %s %s: %w", pair, tf, err)
	}

	var levels *models.RiskLevels
	if res.Tier.Actionable() {
		levels, err = e.risk.Compute(res.Tier, snap.Price, snap.Volatility.ATR)
		if err != nil {
			return nil, fmt.Errorf("risk %s %s: %w", pair, tf, err)
		}
	}

	d := &models.Decision{
		Pair:       pair,
		Timeframe:  string(tf),
		Tier:       res.Tier,
		Score:      res.Composite,
		Components: res.Components,
		Risk:       levels,
		Reasons:    res.Reasons,
		Timestamp:  e.now(),
	}

	// Holds carry no alert, so the throttle never sees them.
	if !res.Tier.Actionable() {
		d.Emitted = false
		return d, nil
	}

	d.Emitted = e.throttle.TryAcquire(pair, string(tf), res.Tier, d.Timestamp, e.interval(tf))
	return d, nil
}

func (e *Evaluator) interval(tf drepo.Timeframe) time.Duration {
	if min, ok := e.intervals[tf]; ok {
		return min
	}
	// Default to one bar of quiet time.
	return tf.Duration()
}
