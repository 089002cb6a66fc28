package scoring

import (
	"fmt"
	"math"
)

// Weights are the fixed dimension weights applied to the five sub-scores.
// They must sum to 1.0.
type Weights struct {
	Trend      float64
	Momentum   float64
	Volatility float64
	Volume     float64
	Levels     float64
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	return w.Trend + w.Momentum + w.Volatility + w.Volume + w.Levels
}

// DefaultWeights returns the standard dimension weighting.
func DefaultWeights() Weights {
	return Weights{Trend: 0.30, Momentum: 0.25, Volatility: 0.15, Volume: 0.15, Levels: 0.15}
}

// Config tunes the scoring engine. The per-indicator normalization curves
// are parameters, not fixed law: defaults reproduce the reference behavior
// but every band and gain can be overridden from configuration.
type Config struct {
	Weights         Weights
	SignalThreshold float64 // composite >= threshold -> strong tier

	// Trend curve: ADX below the floor dampens the directional sub-score,
	// above the ceiling amplifies it, linear in between.
	ADXFloor    float64
	ADXCeiling  float64
	ADXDampen   float64
	ADXAmplify  float64
	DIRatioMin  float64 // DI+ / DI- ratio needed for a directional ADX nudge

	// Momentum curve.
	RSIOverbought float64
	RSIOversold   float64

	// Volatility curve: a band width below SqueezeWidth halves confidence.
	SqueezeWidth float64

	// Volume curve: ratio above 1 amplifies direction, capped here.
	VolumeAmpCap float64

	// CounterTrendFilter forces Hold on signals that fight the long
	// moving-average regime (MA50 vs MA200).
	CounterTrendFilter bool
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Weights:            DefaultWeights(),
		SignalThreshold:    60,
		ADXFloor:           20,
		ADXCeiling:         30,
		ADXDampen:          0.5,
		ADXAmplify:         1.25,
		DIRatioMin:         1.2,
		RSIOverbought:      70,
		RSIOversold:        30,
		SqueezeWidth:       0.02,
		VolumeAmpCap:       2.5,
		CounterTrendFilter: true,
	}
}

// Validate rejects configurations that would make scoring meaningless.
// Failing here is fatal at startup; the evaluation loop must not begin.
func (c Config) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("dimension weights must sum to 1.0, got %v", c.Weights.Sum())
	}
	for name, w := range map[string]float64{
		"trend":      c.Weights.Trend,
		"momentum":   c.Weights.Momentum,
		"volatility": c.Weights.Volatility,
		"volume":     c.Weights.Volume,
		"levels":     c.Weights.Levels,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, w)
		}
	}
	if c.SignalThreshold <= 0 {
		return fmt.Errorf("signal threshold must be positive, got %v", c.SignalThreshold)
	}
	if c.ADXFloor < 0 || c.ADXCeiling <= c.ADXFloor {
		return fmt.Errorf("adx floor/ceiling out of order: %v >= %v", c.ADXFloor, c.ADXCeiling)
	}
	if c.ADXDampen <= 0 || c.ADXAmplify < c.ADXDampen {
		return fmt.Errorf("adx gains out of order: dampen %v amplify %v", c.ADXDampen, c.ADXAmplify)
	}
	if c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("rsi bands out of order: %v >= %v", c.RSIOversold, c.RSIOverbought)
	}
	if c.VolumeAmpCap < 1 {
		return fmt.Errorf("volume amplification cap must be >= 1, got %v", c.VolumeAmpCap)
	}
	return nil
}
