package alerts

import (
	"fmt"

	"SigPulse/internal/domain/models"
	"SigPulse/internal/services/indicators"
)

// Config holds the anomaly detection thresholds. Percent values are
// expressed in percent, not fractions (3 means 3%).
type Config struct {
	TrendPeriods      int     // bars inspected for one-sided runs
	TrendMinCount     int     // minimum same-direction closes in the run
	TrendMinChange    float64 // minimum move over the run, percent
	TrendMinDeviation float64 // minimum distance from MA20, percent

	WaterfallWindow   int     // bars for the fast-move window
	WaterfallChange   float64 // window move threshold, percent
	WaterfallVolRatio float64 // volume vs 20-bar average

	SingleBarChange   float64 // one-bar body threshold, percent
	SingleBarVolRatio float64

	PinWickRatio   float64 // dominant wick vs body
	PinOppositeMax float64 // opposite wick vs body ceiling
	PinMinRange    float64 // bar range vs close, percent
}

// DefaultConfig returns the detection thresholds of the stock setup.
func DefaultConfig() Config {
	return Config{
		TrendPeriods:      10,
		TrendMinCount:     7,
		TrendMinChange:    3,
		TrendMinDeviation: 2,
		WaterfallWindow:   5,
		WaterfallChange:   4,
		WaterfallVolRatio: 1.5,
		SingleBarChange:   2.5,
		SingleBarVolRatio: 2,
		PinWickRatio:      2,
		PinOppositeMax:    0.5,
		PinMinRange:       1,
	}
}

// Detector scans a candle window for market anomalies: one-sided
// trends, waterfall moves and pin bars. It is pure and stateless;
// alert cooldowns belong to the caller.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

const minBars = 20

// DetectAll runs every detector over the window. Candles must be
// oldest-first closed bars. Fewer than 20 bars yields no alerts.
func (d *Detector) DetectAll(candles []models.Candle, tf string) []models.MarketAlert {
	if len(candles) < minBars {
		return nil
	}

	var out []models.MarketAlert
	if a := d.detectTrend(candles, tf); a != nil {
		out = append(out, *a)
	}
	if a := d.detectWaterfall(candles, tf); a != nil {
		out = append(out, *a)
	}
	if a := d.detectPinBar(candles, tf); a != nil {
		out = append(out, *a)
	}
	return out
}

// detectTrend flags a one-sided run: most closes moving the same way,
// a material move over the run, and price stretched away from MA20.
func (d *Detector) detectTrend(candles []models.Candle, tf string) *models.MarketAlert {
	if len(candles) < d.cfg.TrendPeriods+5 {
		return nil
	}

	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	window := closes[len(closes)-d.cfg.TrendPeriods:]

	upCount := 0
	for i := 1; i < len(window); i++ {
		if window[i] > window[i-1] {
			upCount++
		}
	}
	downCount := d.cfg.TrendPeriods - 1 - upCount

	priceChange := (window[len(window)-1] - window[0]) / window[0] * 100
	ma20 := indicators.SMA(closes, 20)
	deviation := (closes[len(closes)-1] - ma20) / ma20 * 100

	last := candles[len(candles)-1]
	if upCount >= d.cfg.TrendMinCount && priceChange > d.cfg.TrendMinChange && deviation > d.cfg.TrendMinDeviation {
		return &models.MarketAlert{
			Type:      models.AlertTrend,
			Direction: 1,
			Severity:  models.SeverityWarning,
			Message:   "🚀 Strong uptrend",
			Details: map[string]string{
				"up_count":     fmt.Sprintf("%d/%d", upCount, d.cfg.TrendPeriods-1),
				"price_change": fmt.Sprintf("%+.2f%%", priceChange),
				"ma20_dev":     fmt.Sprintf("%+.2f%%", deviation),
			},
			Timeframe: tf,
			Timestamp: last.Bucket,
		}
	}
	if downCount >= d.cfg.TrendMinCount && priceChange < -d.cfg.TrendMinChange && deviation < -d.cfg.TrendMinDeviation {
		return &models.MarketAlert{
			Type:      models.AlertTrend,
			Direction: -1,
			Severity:  models.SeverityWarning,
			Message:   "📉 Strong downtrend",
			Details: map[string]string{
				"down_count":   fmt.Sprintf("%d/%d", downCount, d.cfg.TrendPeriods-1),
				"price_change": fmt.Sprintf("%+.2f%%", priceChange),
				"ma20_dev":     fmt.Sprintf("%+.2f%%", deviation),
			},
			Timeframe: tf,
			Timestamp: last.Bucket,
		}
	}
	return nil
}

// detectWaterfall flags fast moves on elevated volume: a large move
// over the short window, or a single outsized bar.
func (d *Detector) detectWaterfall(candles []models.Candle, tf string) *models.MarketAlert {
	n := len(candles)
	if n < 10 {
		return nil
	}
	last := candles[n-1]
	ref := candles[n-d.cfg.WaterfallWindow]

	windowChange := (last.Close - ref.Close) / ref.Close * 100
	singleChange := (last.Close - last.Open) / last.Open * 100

	volumes := make([]float64, n)
	for i, c := range candles {
		volumes[i] = c.Volume
	}
	volMA := indicators.SMA(volumes, 20)
	volRatio := 1.0
	if volMA > 0 {
		volRatio = last.Volume / volMA
	}

	details := func(label string, change float64) map[string]string {
		return map[string]string{
			label:       fmt.Sprintf("%+.2f%%", change),
			"vol_ratio": fmt.Sprintf("%.1fx", volRatio),
		}
	}

	if windowChange < -d.cfg.WaterfallChange && volRatio > d.cfg.WaterfallVolRatio {
		return &models.MarketAlert{
			Type: models.AlertWaterfall, Direction: -1, Severity: models.SeverityDanger,
			Message: "🌊 Waterfall drop", Details: details("window_change", windowChange),
			Timeframe: tf, Timestamp: last.Bucket,
		}
	}
	if windowChange > d.cfg.WaterfallChange && volRatio > d.cfg.WaterfallVolRatio {
		return &models.MarketAlert{
			Type: models.AlertWaterfall, Direction: 1, Severity: models.SeverityDanger,
			Message: "🚀 Vertical rally", Details: details("window_change", windowChange),
			Timeframe: tf, Timestamp: last.Bucket,
		}
	}
	if singleChange < -d.cfg.SingleBarChange && volRatio > d.cfg.SingleBarVolRatio {
		return &models.MarketAlert{
			Type: models.AlertWaterfall, Direction: -1, Severity: models.SeverityDanger,
			Message: "💥 Heavy sell bar", Details: details("bar_change", singleChange),
			Timeframe: tf, Timestamp: last.Bucket,
		}
	}
	if singleChange > d.cfg.SingleBarChange && volRatio > d.cfg.SingleBarVolRatio {
		return &models.MarketAlert{
			Type: models.AlertWaterfall, Direction: 1, Severity: models.SeverityDanger,
			Message: "💥 Heavy buy bar", Details: details("bar_change", singleChange),
			Timeframe: tf, Timestamp: last.Bucket,
		}
	}
	return nil
}

// detectPinBar flags a rejection wick on the last bar: dominant wick
// over twice the body, a short opposite wick, and a material range.
func (d *Detector) detectPinBar(candles []models.Candle, tf string) *models.MarketAlert {
	last := candles[len(candles)-1]

	body := last.Close - last.Open
	if body < 0 {
		body = -body
	}
	upper := last.High - max(last.Close, last.Open)
	lower := min(last.Close, last.Open) - last.Low
	totalRange := last.High - last.Low
	if totalRange == 0 || body == 0 {
		return nil
	}

	lowerRatio := lower / body
	upperRatio := upper / body
	rangePct := totalRange / last.Close * 100

	if lowerRatio > d.cfg.PinWickRatio && upperRatio < d.cfg.PinOppositeMax && rangePct > d.cfg.PinMinRange {
		return &models.MarketAlert{
			Type: models.AlertPinBar, Direction: 1, Severity: models.SeverityWarning,
			Message: "📍 Bullish pin bar",
			Details: map[string]string{
				"lower_wick": fmt.Sprintf("%.1fx body", lowerRatio),
				"range":      fmt.Sprintf("%.2f%%", rangePct),
				"low":        fmt.Sprintf("%g", last.Low),
			},
			Timeframe: tf, Timestamp: last.Bucket,
		}
	}
	if upperRatio > d.cfg.PinWickRatio && lowerRatio < d.cfg.PinOppositeMax && rangePct > d.cfg.PinMinRange {
		return &models.MarketAlert{
			Type: models.AlertPinBar, Direction: -1, Severity: models.SeverityWarning,
			Message: "📍 Bearish pin bar",
			Details: map[string]string{
				"upper_wick": fmt.Sprintf("%.1fx body", upperRatio),
				"range":      fmt.Sprintf("%.2f%%", rangePct),
				"high":       fmt.Sprintf("%g", last.High),
			},
			Timeframe: tf, Timestamp: last.Bucket,
		}
	}
	return nil
}
