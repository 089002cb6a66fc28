package risk

import (
	"fmt"

	"SigPulse/internal/domain/models"
)

// Calculator derives stop-loss and take-profit levels from the current
// price and the average true range.
type Calculator struct {
	stopMult   float64
	profitMult float64
}

// DefaultStopMultiplier and DefaultProfitMultiplier give a 1.5 reward
// to risk ratio out of the box.
const (
	DefaultStopMultiplier   = 2.0
	DefaultProfitMultiplier = 3.0
)

// NewCalculator rejects non-positive multipliers at construction so a
// broken risk profile can never annotate a trade.
func NewCalculator(stopMult, profitMult float64) (*Calculator, error) {
	if stopMult <= 0 || profitMult <= 0 {
		return nil, fmt.Errorf("%w: multipliers must be positive, got stop=%v profit=%v",
			models.ErrInvalidRiskInput, stopMult, profitMult)
	}
	return &Calculator{stopMult: stopMult, profitMult: profitMult}, nil
}

// Compute returns nil levels for a hold: no position means no stops.
// Actionable tiers place the stop and target a multiple of ATR away
// from entry, mirrored for sell-side signals.
func (c *Calculator) Compute(tier models.SignalTier, price, atr float64) (*models.RiskLevels, error) {
	if !tier.Actionable() {
		return nil, nil
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive, got %v", models.ErrInvalidRiskInput, price)
	}
	if atr <= 0 {
		return nil, fmt.Errorf("%w: atr must be positive, got %v", models.ErrInvalidRiskInput, atr)
	}

	levels := &models.RiskLevels{Entry: price}
	switch tier.Direction() {
	case 1:
		levels.StopLoss = price - atr*c.stopMult
		levels.TakeProfit = price + atr*c.profitMult
	case -1:
		levels.StopLoss = price + atr*c.stopMult
		levels.TakeProfit = price - atr*c.profitMult
	default:
		return nil, fmt.Errorf("%w: tier %q has no direction", models.ErrInvalidRiskInput, tier)
	}
	return levels, nil
}
