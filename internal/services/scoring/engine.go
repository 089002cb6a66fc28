package scoring

import (
	"fmt"
	"math"

	"SigPulse/internal/domain/models"
)

// Engine turns an indicator snapshot into a scored, tiered signal.
// It is stateless and safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration up front so a misconfigured
// engine can never score anything.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scoring config: %w", err)
	}
	return &Engine{cfg: cfg}, nil
}

// Score evaluates every dimension, combines them with the configured
// weights and maps the composite onto a signal tier.
func (e *Engine) Score(snap *models.IndicatorSnapshot) (*models.ScoreResult, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", models.ErrInvalidSnapshot)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	res := &models.ScoreResult{
		Components: make(map[string]float64, 5),
	}

	var reasons []string
	score := func(dim string, weight float64, fn func(*models.IndicatorSnapshot, *[]string) float64) {
		v := fn(snap, &reasons)
		res.Components[dim] = v
		res.Composite += v * weight
	}

	score(models.DimTrend, e.cfg.Weights.Trend, e.scoreTrend)
	score(models.DimMomentum, e.cfg.Weights.Momentum, e.scoreMomentum)
	score(models.DimVolatility, e.cfg.Weights.Volatility, e.scoreVolatility)
	score(models.DimVolume, e.cfg.Weights.Volume, e.scoreVolume)
	score(models.DimLevels, e.cfg.Weights.Levels, e.scoreLevels)

	res.Composite = clamp(res.Composite, -100, 100)
	res.Tier = e.tierFor(res.Composite)

	if e.cfg.CounterTrendFilter {
		if tier, reason, filtered := e.counterTrendVeto(snap, res.Composite, res.Tier); filtered {
			res.Tier = tier
			reasons = append(reasons, reason)
		}
	}
	res.Reasons = reasons
	return res, nil
}

// tierFor maps a composite score onto a tier. Outer bounds are
// inclusive: exactly the threshold is already the strong tier.
func (e *Engine) tierFor(composite float64) models.SignalTier {
	th := e.cfg.SignalThreshold
	switch {
	case composite >= th:
		return models.TierStrongBuy
	case composite >= th/2:
		return models.TierBuy
	case composite <= -th:
		return models.TierStrongSell
	case composite <= -th/2:
		return models.TierSell
	default:
		return models.TierHold
	}
}

// counterTrendVeto downgrades signals that fight the long-run regime.
// A pronounced MA50 > MA200 uptrend vetoes sell-side scores and vice
// versa. Flat regimes (MA50 within 2% of MA200) never veto.
func (e *Engine) counterTrendVeto(snap *models.IndicatorSnapshot, composite float64, tier models.SignalTier) (models.SignalTier, string, bool) {
	if !tier.Actionable() {
		return tier, "", false
	}
	ma50, ma200 := snap.Trend.MA50, snap.Trend.MA200
	if ma200 <= 0 {
		return tier, "", false
	}
	switch {
	case ma50 > ma200*1.02 && composite < -20:
		return models.TierHold, "sell signal vetoed by long uptrend regime", true
	case ma50 < ma200*0.98 && composite > 20:
		return models.TierHold, "buy signal vetoed by long downtrend regime", true
	}
	return tier, "", false
}

// scoreTrend reads moving-average alignment, MACD shape and directional
// movement, then scales the result by trend strength (ADX).
func (e *Engine) scoreTrend(snap *models.IndicatorSnapshot, reasons *[]string) float64 {
	t := snap.Trend
	var s float64

	// Short EMA cross with a 0.2% buffer against whipsaw.
	switch {
	case t.EMA9 > t.EMA21*1.002:
		s += 20
	case t.EMA9 < t.EMA21*0.998:
		s -= 20
	}

	// Medium MA alignment with a wider 0.5% buffer. Mixed stays neutral.
	switch {
	case t.MA20 > t.MA50*1.005:
		s += 25
		*reasons = append(*reasons, "medium moving averages aligned bullish")
	case t.MA20 < t.MA50*0.995:
		s -= 25
		*reasons = append(*reasons, "medium moving averages aligned bearish")
	}

	// Price position against the MA stack.
	above := 0
	for _, ma := range []float64{t.MA20, t.MA50, t.MA200} {
		if snap.Price > ma {
			above++
		}
	}
	switch above {
	case 3:
		s += 20
	case 0:
		s -= 20
	}

	// MACD: histogram sign plus zero-line position, histogram slope as
	// a small acceleration nudge.
	switch {
	case t.MACDHist > 0 && t.MACD > t.MACDSignal:
		s += 25
	case t.MACDHist < 0 && t.MACD < t.MACDSignal:
		s -= 25
	}
	switch {
	case t.MACDHist > t.MACDHistPrev:
		s += 5
	case t.MACDHist < t.MACDHistPrev:
		s -= 5
	}

	// Directional movement confirmation only counts in a real trend.
	if t.ADX >= e.cfg.ADXFloor+5 {
		switch {
		case t.DIPlus > t.DIMinus*e.cfg.DIRatioMin:
			s += 10
		case t.DIMinus > t.DIPlus*e.cfg.DIRatioMin:
			s -= 10
		}
	}

	// ADX measures strength, not direction: it scales whatever the
	// directional reads produced instead of adding its own sign.
	s *= e.adxGain(t.ADX)
	return clamp(s, -100, 100)
}

// adxGain maps trend strength to a multiplicative gain, linear between
// the configured floor and ceiling.
func (e *Engine) adxGain(adx float64) float64 {
	floor, ceil := e.cfg.ADXFloor, e.cfg.ADXCeiling
	switch {
	case adx <= floor:
		return e.cfg.ADXDampen
	case adx >= ceil:
		return e.cfg.ADXAmplify
	default:
		frac := (adx - floor) / (ceil - floor)
		return e.cfg.ADXDampen + frac*(e.cfg.ADXAmplify-e.cfg.ADXDampen)
	}
}

// scoreMomentum follows momentum rather than fading it: a deep
// overbought RSI during a breakout is bullish pressure, not an
// automatic reversal call.
func (e *Engine) scoreMomentum(snap *models.IndicatorSnapshot, reasons *[]string) float64 {
	m := snap.Momentum
	s := clamp((m.RSI-50)*2, -50, 50)
	switch {
	case m.RSI >= e.cfg.RSIOverbought:
		s += 20
		*reasons = append(*reasons, "rsi in overbought expansion")
	case m.RSI <= e.cfg.RSIOversold:
		s -= 20
		*reasons = append(*reasons, "rsi in oversold expansion")
	}

	switch {
	case m.StochK > m.StochD:
		s += 15
		if m.StochK < 25 {
			s += 10 // fresh cross off the lows carries extra weight
		}
	case m.StochK < m.StochD:
		s -= 15
		if m.StochK > 75 {
			s -= 10
		}
	}

	s += clamp(m.CCI/10, -15, 15)
	s += clamp((m.WilliamsR+50)/50*15, -15, 15)
	return clamp(s, -100, 100)
}

// scoreVolatility reads band position as stretch: price pinned outside
// the Bollinger envelope argues against chasing in that direction.
func (e *Engine) scoreVolatility(snap *models.IndicatorSnapshot, reasons *[]string) float64 {
	v := snap.Volatility
	var s float64

	switch {
	case v.BBPercent < 0:
		s += 35
		*reasons = append(*reasons, "price below lower bollinger band")
	case v.BBPercent < 0.15:
		s += 25
	case v.BBPercent > 1:
		s -= 35
		*reasons = append(*reasons, "price above upper bollinger band")
	case v.BBPercent > 0.85:
		s -= 25
	}

	switch {
	case snap.Price < v.KCLower:
		s += 10
	case snap.Price > v.KCUpper:
		s -= 10
	}

	// A squeeze means the bands carry little information yet.
	if v.BBWidth < e.cfg.SqueezeWidth {
		s *= 0.5
		*reasons = append(*reasons, "volatility squeeze, band reads discounted")
	}
	return clamp(s, -100, 100)
}

// scoreVolume confirms or denies the move with participation. Direction
// comes from OBV and the VWAP side, conviction from the volume ratio.
func (e *Engine) scoreVolume(snap *models.IndicatorSnapshot, reasons *[]string) float64 {
	v := snap.Volume
	var s float64

	switch {
	case v.OBVChange > 0:
		s += 25
	case v.OBVChange < 0:
		s -= 25
	}

	var vwapDev float64
	if v.VWAP > 0 {
		vwapDev = (snap.Price - v.VWAP) / v.VWAP
	}
	switch {
	case vwapDev > 0.001:
		s += 15
	case vwapDev < -0.001:
		s -= 15
	}

	// OBV and VWAP disagreeing is divergence: cut confidence in half.
	if (v.OBVChange > 0 && vwapDev < -0.001) || (v.OBVChange < 0 && vwapDev > 0.001) {
		s *= 0.5
		*reasons = append(*reasons, "volume flow diverges from vwap side")
	}

	switch {
	case v.VolumeRatio >= 1:
		s *= math.Min(v.VolumeRatio, e.cfg.VolumeAmpCap)
		if v.VolumeRatio >= 1.5 {
			*reasons = append(*reasons, "elevated participation confirms move")
		}
	case v.VolumeRatio > 0 && v.VolumeRatio < 0.5:
		s *= 0.5
	}
	return clamp(s, -100, 100)
}

// scoreLevels rewards proximity to support and penalizes proximity to
// resistance. The dimension is deliberately capped below the others:
// levels locate trades, they do not call direction on their own.
func (e *Engine) scoreLevels(snap *models.IndicatorSnapshot, reasons *[]string) float64 {
	l := snap.Levels
	p := snap.Price
	var s float64

	if d := proximity(p, l.S1); d >= 0 {
		if d <= 0.002 {
			s += 35
			*reasons = append(*reasons, "price testing first support")
		} else if d <= 0.01 {
			s += 25
		}
	}
	if d := proximity(p, l.R1); d >= 0 {
		if d <= 0.002 {
			s -= 35
			*reasons = append(*reasons, "price testing first resistance")
		} else if d <= 0.01 {
			s -= 25
		}
	}

	if d := proximity(p, l.Fib382); d >= 0 && d <= 0.005 {
		s += 20
	}
	if d := proximity(p, l.Fib618); d >= 0 && d <= 0.005 {
		s += 25
		*reasons = append(*reasons, "price at golden-ratio retracement")
	}
	return clamp(s, -60, 60)
}

// proximity returns |price-level|/level, or -1 when the level is unset.
func proximity(price, level float64) float64 {
	if level <= 0 {
		return -1
	}
	return math.Abs(price-level) / level
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
