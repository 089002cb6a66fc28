package risk

import (
	"errors"
	"testing"

	"SigPulse/internal/domain/models"
)

func mustCalculator(t *testing.T) *Calculator {
	t.Helper()
	c, err := NewCalculator(DefaultStopMultiplier, DefaultProfitMultiplier)
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	return c
}

func TestNewCalculatorRejectsBadMultipliers(t *testing.T) {
	for _, tc := range []struct{ stop, profit float64 }{
		{0, 3}, {-1, 3}, {2, 0}, {2, -0.5},
	} {
		if _, err := NewCalculator(tc.stop, tc.profit); !errors.Is(err, models.ErrInvalidRiskInput) {
			t.Fatalf("NewCalculator(%v, %v): got %v, want ErrInvalidRiskInput", tc.stop, tc.profit, err)
		}
	}
}

func TestComputeHoldReturnsNoLevels(t *testing.T) {
	c := mustCalculator(t)
	levels, err := c.Compute(models.TierHold, 100, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if levels != nil {
		t.Fatalf("hold produced levels: %+v", levels)
	}
}

func TestComputeBuySide(t *testing.T) {
	c := mustCalculator(t)
	for _, tier := range []models.SignalTier{models.TierBuy, models.TierStrongBuy} {
		levels, err := c.Compute(tier, 100, 2)
		if err != nil {
			t.Fatalf("Compute(%s): %v", tier, err)
		}
		if levels.Entry != 100 || levels.StopLoss != 96 || levels.TakeProfit != 106 {
			t.Fatalf("Compute(%s) = %+v, want entry 100 stop 96 target 106", tier, levels)
		}
		if !(levels.StopLoss < levels.Entry && levels.Entry < levels.TakeProfit) {
			t.Fatalf("buy ordering broken: %+v", levels)
		}
	}
}

func TestComputeSellSideMirrors(t *testing.T) {
	c := mustCalculator(t)
	for _, tier := range []models.SignalTier{models.TierSell, models.TierStrongSell} {
		levels, err := c.Compute(tier, 100, 2)
		if err != nil {
			t.Fatalf("Compute(%s): %v", tier, err)
		}
		if levels.Entry != 100 || levels.StopLoss != 104 || levels.TakeProfit != 94 {
			t.Fatalf("Compute(%s) = %+v, want entry 100 stop 104 target 94", tier, levels)
		}
		if !(levels.TakeProfit < levels.Entry && levels.Entry < levels.StopLoss) {
			t.Fatalf("sell ordering broken: %+v", levels)
		}
	}
}

func TestComputeRejectsBadInputs(t *testing.T) {
	c := mustCalculator(t)

	if _, err := c.Compute(models.TierBuy, 0, 2); !errors.Is(err, models.ErrInvalidRiskInput) {
		t.Fatalf("zero price: got %v, want ErrInvalidRiskInput", err)
	}
	if _, err := c.Compute(models.TierBuy, -10, 2); !errors.Is(err, models.ErrInvalidRiskInput) {
		t.Fatalf("negative price: got %v, want ErrInvalidRiskInput", err)
	}
	// A dead market has no measurable range to size the stop from.
	if _, err := c.Compute(models.TierBuy, 100, 0); !errors.Is(err, models.ErrInvalidRiskInput) {
		t.Fatalf("zero atr: got %v, want ErrInvalidRiskInput", err)
	}
	if _, err := c.Compute(models.TierStrongSell, 100, -1); !errors.Is(err, models.ErrInvalidRiskInput) {
		t.Fatalf("negative atr: got %v, want ErrInvalidRiskInput", err)
	}
}

func TestRewardRiskRatio(t *testing.T) {
	c := mustCalculator(t)
	levels, err := c.Compute(models.TierStrongBuy, 100, 2)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if rr := levels.RewardRiskRatio(); rr != 1.5 {
		t.Fatalf("RewardRiskRatio() = %v, want 1.5", rr)
	}
}
