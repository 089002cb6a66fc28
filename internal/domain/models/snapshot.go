package models

import (
	"fmt"
	"math"
	"time"
)

// TrendIndicators holds the trend-following readings for one bar window.
type TrendIndicators struct {
	MA20  float64
	MA50  float64
	MA200 float64
	EMA9  float64
	EMA21 float64

	MACD         float64
	MACDSignal   float64
	MACDHist     float64
	MACDHistPrev float64

	ADX     float64
	DIPlus  float64
	DIMinus float64
}

// MomentumIndicators holds the oscillator readings.
type MomentumIndicators struct {
	RSI       float64
	RSIPrev   float64
	StochK    float64
	StochD    float64
	CCI       float64
	WilliamsR float64 // in [-100, 0]
}

// VolatilityIndicators holds band and range readings.
type VolatilityIndicators struct {
	BBUpper   float64
	BBMiddle  float64
	BBLower   float64
	BBWidth   float64 // band width relative to middle band
	BBPercent float64 // price position within bands, <0 below lower, >1 above upper
	ATR       float64
	KCUpper   float64
	KCMiddle  float64
	KCLower   float64
}

// VolumeIndicators holds volume confirmation readings.
type VolumeIndicators struct {
	OBV         float64
	OBVChange   float64
	Volume      float64
	VolumeMA    float64
	VolumeRatio float64
	VWAP        float64
}

// LevelIndicators holds support/resistance structure around the last bar.
type LevelIndicators struct {
	Pivot float64
	R1    float64
	R2    float64
	R3    float64
	S1    float64
	S2    float64
	S3    float64

	Fib236 float64
	Fib382 float64
	Fib500 float64
	Fib618 float64
	Fib786 float64
}

// IndicatorSnapshot is an immutable bundle of computed indicator values
// for one evaluation cycle. It is either fully populated or not built at
// all: construction fails when upstream indicators cannot be computed.
type IndicatorSnapshot struct {
	Timestamp  time.Time
	Price      float64
	Trend      TrendIndicators
	Momentum   MomentumIndicators
	Volatility VolatilityIndicators
	Volume     VolumeIndicators
	Levels     LevelIndicators
}

// Validate checks the snapshot invariant: price is positive and every
// numeric field is finite. A zero sub-score must never stand in for a
// missing reading, so the whole snapshot is rejected instead.
func (s *IndicatorSnapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if !finite(s.Price) || s.Price <= 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidSnapshot, s.Price)
	}
	fields := []struct {
		name string
		v    float64
	}{
		{"trend.ma20", s.Trend.MA20},
		{"trend.ma50", s.Trend.MA50},
		{"trend.ma200", s.Trend.MA200},
		{"trend.ema9", s.Trend.EMA9},
		{"trend.ema21", s.Trend.EMA21},
		{"trend.macd", s.Trend.MACD},
		{"trend.macd_signal", s.Trend.MACDSignal},
		{"trend.macd_hist", s.Trend.MACDHist},
		{"trend.macd_hist_prev", s.Trend.MACDHistPrev},
		{"trend.adx", s.Trend.ADX},
		{"trend.di_plus", s.Trend.DIPlus},
		{"trend.di_minus", s.Trend.DIMinus},
		{"momentum.rsi", s.Momentum.RSI},
		{"momentum.rsi_prev", s.Momentum.RSIPrev},
		{"momentum.stoch_k", s.Momentum.StochK},
		{"momentum.stoch_d", s.Momentum.StochD},
		{"momentum.cci", s.Momentum.CCI},
		{"momentum.williams_r", s.Momentum.WilliamsR},
		{"volatility.bb_upper", s.Volatility.BBUpper},
		{"volatility.bb_middle", s.Volatility.BBMiddle},
		{"volatility.bb_lower", s.Volatility.BBLower},
		{"volatility.bb_width", s.Volatility.BBWidth},
		{"volatility.bb_percent", s.Volatility.BBPercent},
		{"volatility.atr", s.Volatility.ATR},
		{"volatility.kc_upper", s.Volatility.KCUpper},
		{"volatility.kc_middle", s.Volatility.KCMiddle},
		{"volatility.kc_lower", s.Volatility.KCLower},
		{"volume.obv", s.Volume.OBV},
		{"volume.obv_change", s.Volume.OBVChange},
		{"volume.volume", s.Volume.Volume},
		{"volume.volume_ma", s.Volume.VolumeMA},
		{"volume.volume_ratio", s.Volume.VolumeRatio},
		{"volume.vwap", s.Volume.VWAP},
		{"levels.pivot", s.Levels.Pivot},
		{"levels.r1", s.Levels.R1},
		{"levels.r2", s.Levels.R2},
		{"levels.r3", s.Levels.R3},
		{"levels.s1", s.Levels.S1},
		{"levels.s2", s.Levels.S2},
		{"levels.s3", s.Levels.S3},
		{"levels.fib_236", s.Levels.Fib236},
		{"levels.fib_382", s.Levels.Fib382},
		{"levels.fib_500", s.Levels.Fib500},
		{"levels.fib_618", s.Levels.Fib618},
		{"levels.fib_786", s.Levels.Fib786},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidSnapshot, f.name)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
