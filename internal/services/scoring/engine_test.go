package scoring

import (
	"errors"
	"math"
	"testing"
	"time"

	"SigPulse/internal/domain/models"
)

func neutralSnapshot() *models.IndicatorSnapshot {
	return &models.IndicatorSnapshot{
		Timestamp: time.Unix(1700000000, 0),
		Price:     100,
		Trend: models.TrendIndicators{
			MA20: 100, MA50: 100, MA200: 100,
			EMA9: 100, EMA21: 100,
			MACD: 0, MACDSignal: 0, MACDHist: 0, MACDHistPrev: 0,
			ADX: 15, DIPlus: 20, DIMinus: 20,
		},
		Momentum: models.MomentumIndicators{
			RSI: 50, RSIPrev: 50, StochK: 50, StochD: 50, CCI: 0, WilliamsR: -50,
		},
		Volatility: models.VolatilityIndicators{
			BBUpper: 105, BBMiddle: 100, BBLower: 95, BBWidth: 0.10, BBPercent: 0.5,
			ATR: 2, KCUpper: 104, KCMiddle: 100, KCLower: 96,
		},
		Volume: models.VolumeIndicators{
			OBV: 1000, OBVChange: 0, Volume: 500, VolumeMA: 500, VolumeRatio: 1.0, VWAP: 100,
		},
		Levels: models.LevelIndicators{
			Pivot: 80, R1: 130, R2: 140, R3: 150, S1: 60, S2: 50, S3: 40,
			Fib236: 70, Fib382: 72, Fib500: 74, Fib618: 76, Fib786: 78,
		},
	}
}

func breakoutSnapshot() *models.IndicatorSnapshot {
	snap := neutralSnapshot()
	snap.Price = 110
	snap.Trend = models.TrendIndicators{
		MA20: 105, MA50: 100, MA200: 100,
		EMA9: 108, EMA21: 105,
		MACD: 1.2, MACDSignal: 0.8, MACDHist: 0.4, MACDHistPrev: 0.2,
		ADX: 40, DIPlus: 32, DIMinus: 14,
	}
	snap.Momentum = models.MomentumIndicators{
		RSI: 75, RSIPrev: 68, StochK: 82, StochD: 74, CCI: 120, WilliamsR: -15,
	}
	snap.Volatility = models.VolatilityIndicators{
		BBUpper: 109, BBMiddle: 104, BBLower: 99, BBWidth: 0.05, BBPercent: 1.05,
		ATR: 2.5, KCUpper: 111, KCMiddle: 104, KCLower: 97,
	}
	snap.Volume = models.VolumeIndicators{
		OBV: 5000, OBVChange: 400, Volume: 1100, VolumeMA: 500, VolumeRatio: 2.2, VWAP: 107,
	}
	return snap
}

func mirrorSnapshot(snap *models.IndicatorSnapshot) *models.IndicatorSnapshot {
	// Reflect every directional read around its neutral point so a
	// bullish fixture becomes its bearish twin.
	out := *snap
	out.Price = 90
	out.Trend = models.TrendIndicators{
		MA20: 95, MA50: 100, MA200: 100,
		EMA9: 92, EMA21: 95,
		MACD: -1.2, MACDSignal: -0.8, MACDHist: -0.4, MACDHistPrev: -0.2,
		ADX: 40, DIPlus: 14, DIMinus: 32,
	}
	out.Momentum = models.MomentumIndicators{
		RSI: 25, RSIPrev: 32, StochK: 18, StochD: 26, CCI: -120, WilliamsR: -85,
	}
	out.Volatility = models.VolatilityIndicators{
		BBUpper: 101, BBMiddle: 96, BBLower: 91, BBWidth: 0.05, BBPercent: -0.05,
		ATR: 2.5, KCUpper: 103, KCMiddle: 96, KCLower: 89,
	}
	out.Volume = models.VolumeIndicators{
		OBV: 5000, OBVChange: -400, Volume: 1100, VolumeMA: 500, VolumeRatio: 2.2, VWAP: 93,
	}
	out.Levels = models.LevelIndicators{
		Pivot: 110, R1: 130, R2: 140, R3: 150, S1: 60, S2: 50, S3: 40,
		Fib236: 50, Fib382: 52, Fib500: 54, Fib618: 56, Fib786: 58,
	}
	return &out
}

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func TestNewEngineRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weights.Trend = 0.5 // sum now 1.2
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for weights not summing to 1")
	}

	cfg = DefaultConfig()
	cfg.SignalThreshold = 0
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for zero threshold")
	}

	cfg = DefaultConfig()
	cfg.ADXCeiling = cfg.ADXFloor
	if _, err := NewEngine(cfg); err == nil {
		t.Fatal("expected error for collapsed adx band")
	}
}

func TestScoreRejectsInvalidSnapshot(t *testing.T) {
	eng := mustEngine(t)

	if _, err := eng.Score(nil); !errors.Is(err, models.ErrInvalidSnapshot) {
		t.Fatalf("nil snapshot: got %v, want ErrInvalidSnapshot", err)
	}

	snap := neutralSnapshot()
	snap.Momentum.RSI = math.NaN()
	if _, err := eng.Score(snap); !errors.Is(err, models.ErrInvalidSnapshot) {
		t.Fatalf("NaN rsi: got %v, want ErrInvalidSnapshot", err)
	}

	snap = neutralSnapshot()
	snap.Price = 0
	if _, err := eng.Score(snap); !errors.Is(err, models.ErrInvalidSnapshot) {
		t.Fatalf("zero price: got %v, want ErrInvalidSnapshot", err)
	}
}

func TestScoreNeutralSnapshotHolds(t *testing.T) {
	eng := mustEngine(t)
	res, err := eng.Score(neutralSnapshot())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Tier != models.TierHold {
		t.Fatalf("tier = %s, want hold (composite %v)", res.Tier, res.Composite)
	}
	if math.Abs(res.Composite) >= 30 {
		t.Fatalf("neutral composite = %v, want near zero", res.Composite)
	}
}

func TestScoreBreakoutIsStrongBuy(t *testing.T) {
	eng := mustEngine(t)
	res, err := eng.Score(breakoutSnapshot())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Tier != models.TierStrongBuy {
		t.Fatalf("tier = %s, want strong_buy (composite %v, components %v)",
			res.Tier, res.Composite, res.Components)
	}
	if res.Composite < DefaultConfig().SignalThreshold {
		t.Fatalf("composite = %v, want >= %v", res.Composite, DefaultConfig().SignalThreshold)
	}
	// Momentum must read an overbought breakout as pressure, not a fade.
	if res.Components[models.DimMomentum] <= 0 {
		t.Fatalf("momentum component = %v, want positive on breakout",
			res.Components[models.DimMomentum])
	}
	// Price pinned above the upper band stays a stretch warning.
	if res.Components[models.DimVolatility] >= 0 {
		t.Fatalf("volatility component = %v, want negative above upper band",
			res.Components[models.DimVolatility])
	}
}

func TestScoreMirrorIsStrongSell(t *testing.T) {
	eng := mustEngine(t)
	res, err := eng.Score(mirrorSnapshot(breakoutSnapshot()))
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Tier != models.TierStrongSell {
		t.Fatalf("tier = %s, want strong_sell (composite %v, components %v)",
			res.Tier, res.Composite, res.Components)
	}
}

func TestCompositeIsWeightedSumOfComponents(t *testing.T) {
	eng := mustEngine(t)
	w := DefaultConfig().Weights
	for name, snap := range map[string]*models.IndicatorSnapshot{
		"neutral":  neutralSnapshot(),
		"breakout": breakoutSnapshot(),
	} {
		res, err := eng.Score(snap)
		if err != nil {
			t.Fatalf("%s: Score: %v", name, err)
		}
		want := res.Components[models.DimTrend]*w.Trend +
			res.Components[models.DimMomentum]*w.Momentum +
			res.Components[models.DimVolatility]*w.Volatility +
			res.Components[models.DimVolume]*w.Volume +
			res.Components[models.DimLevels]*w.Levels
		want = clamp(want, -100, 100)
		if math.Abs(res.Composite-want) > 1e-9 {
			t.Fatalf("%s: composite = %v, want weighted sum %v", name, res.Composite, want)
		}
	}
}

func TestComponentsStayBounded(t *testing.T) {
	eng := mustEngine(t)
	for name, snap := range map[string]*models.IndicatorSnapshot{
		"neutral":  neutralSnapshot(),
		"breakout": breakoutSnapshot(),
		"mirror":   mirrorSnapshot(breakoutSnapshot()),
	} {
		res, err := eng.Score(snap)
		if err != nil {
			t.Fatalf("%s: Score: %v", name, err)
		}
		for dim, v := range res.Components {
			if v < -100 || v > 100 {
				t.Fatalf("%s: component %s = %v outside [-100, 100]", name, dim, v)
			}
		}
		if res.Composite < -100 || res.Composite > 100 {
			t.Fatalf("%s: composite %v outside [-100, 100]", name, res.Composite)
		}
		if res.Components[models.DimLevels] < -60 || res.Components[models.DimLevels] > 60 {
			t.Fatalf("%s: levels component %v outside [-60, 60]", name, res.Components[models.DimLevels])
		}
	}
}

func TestTierBoundariesAreInclusive(t *testing.T) {
	eng := mustEngine(t)
	th := DefaultConfig().SignalThreshold
	cases := []struct {
		composite float64
		want      models.SignalTier
	}{
		{th, models.TierStrongBuy},
		{th - 0.001, models.TierBuy},
		{th / 2, models.TierBuy},
		{th/2 - 0.001, models.TierHold},
		{0, models.TierHold},
		{-th/2 + 0.001, models.TierHold},
		{-th / 2, models.TierSell},
		{-th + 0.001, models.TierSell},
		{-th, models.TierStrongSell},
	}
	for _, tc := range cases {
		if got := eng.tierFor(tc.composite); got != tc.want {
			t.Fatalf("tierFor(%v) = %s, want %s", tc.composite, got, tc.want)
		}
	}
}

func TestADXScalesTrendConviction(t *testing.T) {
	eng := mustEngine(t)

	weak := breakoutSnapshot()
	weak.Trend.ADX = 12
	strong := breakoutSnapshot()
	strong.Trend.ADX = 45

	resWeak, err := eng.Score(weak)
	if err != nil {
		t.Fatalf("Score weak: %v", err)
	}
	resStrong, err := eng.Score(strong)
	if err != nil {
		t.Fatalf("Score strong: %v", err)
	}
	if resWeak.Components[models.DimTrend] >= resStrong.Components[models.DimTrend] {
		t.Fatalf("trend component weak=%v >= strong=%v, want adx to scale conviction",
			resWeak.Components[models.DimTrend], resStrong.Components[models.DimTrend])
	}
}

func TestVolumeRatioAmplifiesAndDampens(t *testing.T) {
	eng := mustEngine(t)

	base := neutralSnapshot()
	base.Volume.OBVChange = 300
	base.Volume.VWAP = 99 // price above vwap
	base.Volume.VolumeRatio = 1.0

	amped := *base
	amped.Volume.VolumeRatio = 2.0
	thin := *base
	thin.Volume.VolumeRatio = 0.3

	resBase, err := eng.Score(base)
	if err != nil {
		t.Fatalf("Score base: %v", err)
	}
	resAmped, err := eng.Score(&amped)
	if err != nil {
		t.Fatalf("Score amped: %v", err)
	}
	resThin, err := eng.Score(&thin)
	if err != nil {
		t.Fatalf("Score thin: %v", err)
	}

	b := resBase.Components[models.DimVolume]
	if resAmped.Components[models.DimVolume] <= b {
		t.Fatalf("high ratio did not amplify: %v <= %v", resAmped.Components[models.DimVolume], b)
	}
	if resThin.Components[models.DimVolume] >= b {
		t.Fatalf("thin ratio did not dampen: %v >= %v", resThin.Components[models.DimVolume], b)
	}
}

func TestSqueezeHalvesVolatilityScore(t *testing.T) {
	eng := mustEngine(t)

	open := neutralSnapshot()
	open.Volatility.BBPercent = -0.05 // below lower band

	squeezed := neutralSnapshot()
	squeezed.Volatility.BBPercent = -0.05
	squeezed.Volatility.BBWidth = 0.01

	resOpen, err := eng.Score(open)
	if err != nil {
		t.Fatalf("Score open: %v", err)
	}
	resSqueezed, err := eng.Score(squeezed)
	if err != nil {
		t.Fatalf("Score squeezed: %v", err)
	}
	wantHalf := resOpen.Components[models.DimVolatility] * 0.5
	if math.Abs(resSqueezed.Components[models.DimVolatility]-wantHalf) > 1e-9 {
		t.Fatalf("squeezed volatility = %v, want %v",
			resSqueezed.Components[models.DimVolatility], wantHalf)
	}
}

func TestCounterTrendFilterVetoesFightingTheRegime(t *testing.T) {
	// A bearish snapshot inside a pronounced long uptrend must be held.
	snap := mirrorSnapshot(breakoutSnapshot())
	snap.Trend.MA50 = 110
	snap.Trend.MA200 = 100

	eng := mustEngine(t)
	res, err := eng.Score(snap)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Tier != models.TierHold {
		t.Fatalf("tier = %s, want hold under counter-trend veto", res.Tier)
	}

	cfg := DefaultConfig()
	cfg.CounterTrendFilter = false
	unfiltered, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	res, err = unfiltered.Score(snap)
	if err != nil {
		t.Fatalf("Score unfiltered: %v", err)
	}
	if res.Tier == models.TierHold {
		t.Fatalf("filter disabled but tier still hold (composite %v)", res.Composite)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	eng := mustEngine(t)
	snap := breakoutSnapshot()
	first, err := eng.Score(snap)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := eng.Score(snap)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if again.Composite != first.Composite || again.Tier != first.Tier {
			t.Fatalf("run %d differs: %v/%s vs %v/%s",
				i, again.Composite, again.Tier, first.Composite, first.Tier)
		}
	}
}
