package indicators

import (
	"fmt"

	"SigPulse/internal/domain/models"
)

// Config fixes the lookback periods used to assemble a snapshot.
type Config struct {
	MAShort, MAMedium, MALong int // 20 / 50 / 200
	EMAFast, EMASlow          int // 9 / 21
	MACDFast, MACDSlow        int // 12 / 26
	MACDSignal                int // 9
	RSIPeriod                 int // 14
	StochPeriod               int // 14
	StochSmoothK, StochSmoothD int // 3 / 3
	CCIPeriod                 int // 20
	WilliamsPeriod            int // 14
	BBPeriod                  int // 20
	BBMult                    float64
	ATRPeriod                 int // 14
	KCEMAPeriod, KCATRPeriod  int // 20 / 10
	KCMult                    float64
	VolumeMAPeriod            int // 20
	FibLookback               int // 50
	ADXPeriod                 int // 14
}

// DefaultConfig returns the conventional period set.
func DefaultConfig() Config {
	return Config{
		MAShort: 20, MAMedium: 50, MALong: 200,
		EMAFast: 9, EMASlow: 21,
		MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		RSIPeriod:   14,
		StochPeriod: 14, StochSmoothK: 3, StochSmoothD: 3,
		CCIPeriod:      20,
		WilliamsPeriod: 14,
		BBPeriod:       20, BBMult: 2.0,
		ATRPeriod:   14,
		KCEMAPeriod: 20, KCATRPeriod: 10, KCMult: 2.0,
		VolumeMAPeriod: 20,
		FibLookback:    50,
		ADXPeriod:      14,
	}
}

// MinBars is the history needed for every indicator in the snapshot.
// The long moving average dominates.
func (c Config) MinBars() int {
	min := c.MALong
	if n := c.MACDSlow + c.MACDSignal + 1; n > min {
		min = n
	}
	if n := 2*c.ADXPeriod + 1; n > min {
		min = n
	}
	return min
}

// Builder assembles indicator snapshots from candle history.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder with the given period configuration.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg}
}

// BuildSnapshot computes every dimension from the candle window. The
// last candle is treated as the current bar; pivots come from the bar
// before it.
func (b *Builder) BuildSnapshot(candles []models.Candle) (*models.IndicatorSnapshot, error) {
	need := b.cfg.MinBars()
	if len(candles) < need {
		return nil, fmt.Errorf("%w: have %d bars, need %d",
			models.ErrInsufficientHistory, len(candles), need)
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	last := candles[len(candles)-1]
	prevBar := candles[len(candles)-2]

	snap := &models.IndicatorSnapshot{
		Timestamp: last.Bucket.UTC(),
		Price:     last.Close,
	}

	macd, macdSig, hist, histPrev := MACD(closes, b.cfg.MACDFast, b.cfg.MACDSlow, b.cfg.MACDSignal)
	adx, diPlus, diMinus := ADX(highs, lows, closes, b.cfg.ADXPeriod)
	snap.Trend = models.TrendIndicators{
		MA20:         SMA(closes, b.cfg.MAShort),
		MA50:         SMA(closes, b.cfg.MAMedium),
		MA200:        SMA(closes, b.cfg.MALong),
		EMA9:         EMA(closes, b.cfg.EMAFast),
		EMA21:        EMA(closes, b.cfg.EMASlow),
		MACD:         macd,
		MACDSignal:   macdSig,
		MACDHist:     hist,
		MACDHistPrev: histPrev,
		ADX:          adx,
		DIPlus:       diPlus,
		DIMinus:      diMinus,
	}

	rsi, rsiPrev := RSI(closes, b.cfg.RSIPeriod)
	stochK, stochD := Stochastic(highs, lows, closes, b.cfg.StochPeriod, b.cfg.StochSmoothK, b.cfg.StochSmoothD)
	snap.Momentum = models.MomentumIndicators{
		RSI:       rsi,
		RSIPrev:   rsiPrev,
		StochK:    stochK,
		StochD:    stochD,
		CCI:       CCI(highs, lows, closes, b.cfg.CCIPeriod),
		WilliamsR: WilliamsR(highs, lows, closes, b.cfg.WilliamsPeriod),
	}

	bbUpper, bbMiddle, bbLower, bbWidth, bbPercent := Bollinger(closes, b.cfg.BBPeriod, b.cfg.BBMult)
	kcUpper, kcMiddle, kcLower := Keltner(highs, lows, closes, b.cfg.KCEMAPeriod, b.cfg.KCATRPeriod, b.cfg.KCMult)
	snap.Volatility = models.VolatilityIndicators{
		BBUpper:   bbUpper,
		BBMiddle:  bbMiddle,
		BBLower:   bbLower,
		BBWidth:   bbWidth,
		BBPercent: bbPercent,
		ATR:       ATR(highs, lows, closes, b.cfg.ATRPeriod),
		KCUpper:   kcUpper,
		KCMiddle:  kcMiddle,
		KCLower:   kcLower,
	}

	obv, obvChange := OBV(closes, volumes)
	volMA := SMA(volumes, b.cfg.VolumeMAPeriod)
	ratio := 0.0
	if volMA > 0 {
		ratio = last.Volume / volMA
	}
	snap.Volume = models.VolumeIndicators{
		OBV:         obv,
		OBVChange:   obvChange,
		Volume:      last.Volume,
		VolumeMA:    volMA,
		VolumeRatio: ratio,
		VWAP:        VWAP(highs, lows, closes, volumes),
	}

	piv := Pivots(prevBar.High, prevBar.Low, prevBar.Close)
	fib := Fibonacci(highs, lows, b.cfg.FibLookback)
	snap.Levels = models.LevelIndicators{
		Pivot:  piv.Pivot,
		R1:     piv.R1,
		R2:     piv.R2,
		R3:     piv.R3,
		S1:     piv.S1,
		S2:     piv.S2,
		S3:     piv.S3,
		Fib236: fib.Fib236,
		Fib382: fib.Fib382,
		Fib500: fib.Fib500,
		Fib618: fib.Fib618,
		Fib786: fib.Fib786,
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}
