package models

import "time"

// SignalTier classifies a composite score into a discrete recommendation.
type SignalTier string

const (
	TierStrongBuy  SignalTier = "strong_buy"
	TierBuy        SignalTier = "buy"
	TierHold       SignalTier = "hold"
	TierSell       SignalTier = "sell"
	TierStrongSell SignalTier = "strong_sell"
)

// Direction returns +1 for buy-family tiers, -1 for sell-family, 0 for hold.
func (t SignalTier) Direction() int {
	switch t {
	case TierStrongBuy, TierBuy:
		return 1
	case TierStrongSell, TierSell:
		return -1
	default:
		return 0
	}
}

// Actionable reports whether the tier recommends a trade.
func (t SignalTier) Actionable() bool { return t.Direction() != 0 }

// Label returns a human-readable tier name for notifications.
func (t SignalTier) Label() string {
	switch t {
	case TierStrongBuy:
		return "STRONG BUY"
	case TierBuy:
		return "BUY"
	case TierSell:
		return "SELL"
	case TierStrongSell:
		return "STRONG SELL"
	default:
		return "HOLD"
	}
}

// Dimension names used as component score keys.
const (
	DimTrend      = "trend"
	DimMomentum   = "momentum"
	DimVolatility = "volatility"
	DimVolume     = "volume"
	DimLevels     = "levels"
)

// ScoreResult is the scoring engine output: a bounded composite score,
// its tier, and the per-dimension sub-scores for explainability.
// Composite is the weighted sum of Components under the configured weights.
type ScoreResult struct {
	Composite  float64
	Tier       SignalTier
	Components map[string]float64
	Reasons    []string
}

// RiskLevels holds the trade levels attached to an actionable signal.
// For buy tiers StopLoss < Entry < TakeProfit; for sell tiers reversed.
type RiskLevels struct {
	Entry      float64
	StopLoss   float64
	TakeProfit float64
}

// RewardRiskRatio returns |target distance| / |stop distance|, or 0 when
// the stop distance is degenerate.
func (r *RiskLevels) RewardRiskRatio() float64 {
	stop := r.Entry - r.StopLoss
	if stop < 0 {
		stop = -stop
	}
	if stop == 0 {
		return 0
	}
	target := r.TakeProfit - r.Entry
	if target < 0 {
		target = -target
	}
	return target / stop
}

// Decision is the terminal output of one evaluation cycle. It is built
// by the orchestrator, handed by value to notification dispatch, and not
// retained beyond the latest-state store.
type Decision struct {
	Pair       string
	Timeframe  string
	Tier       SignalTier
	Score      float64
	Components map[string]float64
	Risk       *RiskLevels // nil for hold
	// Emitted is true when the decision produced an alert. Holds are
	// always false: they carry no alert, which is distinct from an
	// actionable signal suppressed by the throttle.
	Emitted bool
	Reasons    []string
	Timestamp  time.Time
}
