package indicators

import "math"

// SMA returns the simple moving average of the last period values.
// Returns NaN when there is not enough data.
func SMA(values []float64, period int) float64 {
	if period <= 0 || len(values) < period {
		return math.NaN()
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period)
}

// EMA returns the exponential moving average seeded with an SMA over
// the first period values.
func EMA(values []float64, period int) float64 {
	series := EMASeries(values, period)
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// EMASeries returns the full EMA series aligned so that series[i]
// corresponds to values[i+period-1].
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, 0, len(values)-period+1)
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	ema := seed / float64(period)
	out = append(out, ema)
	k := 2.0 / float64(period+1)
	for _, v := range values[period:] {
		ema = (v-ema)*k + ema
		out = append(out, ema)
	}
	return out
}

// MACD returns the 12/26/9-shaped line, signal and the last two
// histogram values for the given periods.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist, histPrev float64) {
	fastSeries := EMASeries(closes, fast)
	slowSeries := EMASeries(closes, slow)
	if len(slowSeries) == 0 || len(fastSeries) < len(slowSeries) {
		return math.NaN(), math.NaN(), math.NaN(), math.NaN()
	}
	// Align the fast series to the slow one.
	diff := make([]float64, len(slowSeries))
	offset := len(fastSeries) - len(slowSeries)
	for i := range slowSeries {
		diff[i] = fastSeries[offset+i] - slowSeries[i]
	}
	sigSeries := EMASeries(diff, signal)
	if len(sigSeries) < 2 {
		return math.NaN(), math.NaN(), math.NaN(), math.NaN()
	}
	line = diff[len(diff)-1]
	sig = sigSeries[len(sigSeries)-1]
	hist = line - sig
	histPrev = diff[len(diff)-2] - sigSeries[len(sigSeries)-2]
	return line, sig, hist, histPrev
}

// RSI computes Wilder-smoothed relative strength for the last and the
// preceding bar.
func RSI(closes []float64, period int) (cur, prev float64) {
	if period <= 0 || len(closes) < period+2 {
		return math.NaN(), math.NaN()
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	value := func(gain, loss float64) float64 {
		if loss == 0 {
			return 100
		}
		return 100 - 100/(1+gain/loss)
	}

	cur = value(avgGain, avgLoss)
	for i := period + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		prev = cur
		cur = value(avgGain, avgLoss)
	}
	return cur, prev
}

// Stochastic returns %K smoothed over smoothK bars and %D as an SMA of
// %K over smoothD bars.
func Stochastic(highs, lows, closes []float64, period, smoothK, smoothD int) (k, d float64) {
	need := period + smoothK + smoothD - 2
	if len(closes) < need || len(highs) != len(closes) || len(lows) != len(closes) {
		return math.NaN(), math.NaN()
	}
	rawCount := smoothK + smoothD - 1
	raw := make([]float64, 0, rawCount)
	for i := len(closes) - rawCount; i < len(closes); i++ {
		hh, ll := highs[i], lows[i]
		for j := i - period + 1; j <= i; j++ {
			hh = math.Max(hh, highs[j])
			ll = math.Min(ll, lows[j])
		}
		if hh == ll {
			raw = append(raw, 50)
			continue
		}
		raw = append(raw, (closes[i]-ll)/(hh-ll)*100)
	}
	kSeries := make([]float64, 0, smoothD)
	for i := smoothK - 1; i < len(raw); i++ {
		var sum float64
		for _, v := range raw[i-smoothK+1 : i+1] {
			sum += v
		}
		kSeries = append(kSeries, sum/float64(smoothK))
	}
	k = kSeries[len(kSeries)-1]
	var sum float64
	for _, v := range kSeries {
		sum += v
	}
	d = sum / float64(len(kSeries))
	return k, d
}

// CCI computes the commodity channel index over period bars using mean
// absolute deviation of the typical price.
func CCI(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period || len(highs) != len(closes) || len(lows) != len(closes) {
		return math.NaN()
	}
	tp := make([]float64, period)
	var mean float64
	for i := 0; i < period; i++ {
		j := len(closes) - period + i
		tp[i] = (highs[j] + lows[j] + closes[j]) / 3
		mean += tp[i]
	}
	mean /= float64(period)
	var dev float64
	for _, v := range tp {
		dev += math.Abs(v - mean)
	}
	dev /= float64(period)
	if dev == 0 {
		return 0
	}
	return (tp[period-1] - mean) / (0.015 * dev)
}

// WilliamsR returns %R over the lookback period, in [-100, 0].
func WilliamsR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period || len(highs) != len(closes) || len(lows) != len(closes) {
		return math.NaN()
	}
	hh, ll := highs[len(highs)-period], lows[len(lows)-period]
	for i := len(closes) - period; i < len(closes); i++ {
		hh = math.Max(hh, highs[i])
		ll = math.Min(ll, lows[i])
	}
	if hh == ll {
		return -50
	}
	return (hh - closes[len(closes)-1]) / (hh - ll) * -100
}

// Bollinger returns the upper, middle and lower band together with the
// relative width and the band position of the last close.
func Bollinger(closes []float64, period int, mult float64) (upper, middle, lower, width, pband float64) {
	if len(closes) < period {
		nan := math.NaN()
		return nan, nan, nan, nan, nan
	}
	middle = SMA(closes, period)
	var variance float64
	for _, v := range closes[len(closes)-period:] {
		d := v - middle
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))
	upper = middle + mult*std
	lower = middle - mult*std
	if middle != 0 {
		width = (upper - lower) / middle
	}
	last := closes[len(closes)-1]
	if upper != lower {
		pband = (last - lower) / (upper - lower)
	} else {
		pband = 0.5
	}
	return upper, middle, lower, width, pband
}

// ATR computes the Wilder-smoothed average true range.
func ATR(highs, lows, closes []float64, period int) float64 {
	if len(closes) < period+1 || len(highs) != len(closes) || len(lows) != len(closes) {
		return math.NaN()
	}
	trs := trueRanges(highs, lows, closes)
	var atr float64
	for _, v := range trs[:period] {
		atr += v
	}
	atr /= float64(period)
	for _, v := range trs[period:] {
		atr = (atr*float64(period-1) + v) / float64(period)
	}
	return atr
}

func trueRanges(highs, lows, closes []float64) []float64 {
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		tr := math.Max(highs[i]-lows[i],
			math.Max(math.Abs(highs[i]-closes[i-1]), math.Abs(lows[i]-closes[i-1])))
		out = append(out, tr)
	}
	return out
}

// ADX computes Wilder's average directional index together with the
// smoothed +DI and -DI components.
func ADX(highs, lows, closes []float64, period int) (adx, diPlus, diMinus float64) {
	if len(closes) < 2*period+1 || len(highs) != len(closes) || len(lows) != len(closes) {
		nan := math.NaN()
		return nan, nan, nan
	}
	n := len(closes) - 1
	trs := trueRanges(highs, lows, closes)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < len(closes); i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	var trS, plusS, minusS float64
	for i := 0; i < period; i++ {
		trS += trs[i]
		plusS += plusDM[i]
		minusS += minusDM[i]
	}

	dx := func() float64 {
		if trS == 0 {
			return 0
		}
		diPlus = plusS / trS * 100
		diMinus = minusS / trS * 100
		sum := diPlus + diMinus
		if sum == 0 {
			return 0
		}
		return math.Abs(diPlus-diMinus) / sum * 100
	}

	dxs := make([]float64, 0, n-period+1)
	dxs = append(dxs, dx())
	for i := period; i < n; i++ {
		trS = trS - trS/float64(period) + trs[i]
		plusS = plusS - plusS/float64(period) + plusDM[i]
		minusS = minusS - minusS/float64(period) + minusDM[i]
		dxs = append(dxs, dx())
	}

	adx = 0
	for _, v := range dxs[:period] {
		adx += v
	}
	adx /= float64(period)
	for _, v := range dxs[period:] {
		adx = (adx*float64(period-1) + v) / float64(period)
	}
	return adx, diPlus, diMinus
}

// Keltner returns the EMA-centered channel with ATR-scaled envelopes.
func Keltner(highs, lows, closes []float64, emaPeriod, atrPeriod int, mult float64) (upper, middle, lower float64) {
	middle = EMA(closes, emaPeriod)
	atr := ATR(highs, lows, closes, atrPeriod)
	if math.IsNaN(middle) || math.IsNaN(atr) {
		nan := math.NaN()
		return nan, nan, nan
	}
	return middle + mult*atr, middle, middle - mult*atr
}

// OBV returns the cumulative on-balance volume and its change over the
// last bar.
func OBV(closes, volumes []float64) (obv, change float64) {
	if len(closes) < 2 || len(closes) != len(volumes) {
		return math.NaN(), math.NaN()
	}
	for i := 1; i < len(closes); i++ {
		change = 0
		switch {
		case closes[i] > closes[i-1]:
			change = volumes[i]
		case closes[i] < closes[i-1]:
			change = -volumes[i]
		}
		obv += change
	}
	return obv, change
}

// VWAP returns the volume-weighted average price over the whole window.
func VWAP(highs, lows, closes, volumes []float64) float64 {
	if len(closes) == 0 || len(highs) != len(closes) || len(lows) != len(closes) || len(volumes) != len(closes) {
		return math.NaN()
	}
	var pv, vol float64
	for i := range closes {
		tp := (highs[i] + lows[i] + closes[i]) / 3
		pv += tp * volumes[i]
		vol += volumes[i]
	}
	if vol == 0 {
		return math.NaN()
	}
	return pv / vol
}

// PivotLevels holds classic floor-trader pivots from the previous bar.
type PivotLevels struct {
	Pivot, R1, R2, R3, S1, S2, S3 float64
}

// Pivots computes classic pivots from a single completed bar.
func Pivots(high, low, close float64) PivotLevels {
	p := (high + low + close) / 3
	return PivotLevels{
		Pivot: p,
		R1:    2*p - low,
		R2:    p + (high - low),
		R3:    high + 2*(p-low),
		S1:    2*p - high,
		S2:    p - (high - low),
		S3:    low - 2*(high-p),
	}
}

// FibLevels holds retracement levels of the recent swing range.
type FibLevels struct {
	Fib236, Fib382, Fib500, Fib618, Fib786 float64
}

// Fibonacci computes retracements from the high-low range of the last
// lookback bars, measured down from the swing high.
func Fibonacci(highs, lows []float64, lookback int) FibLevels {
	if len(highs) < lookback || len(lows) < lookback {
		return FibLevels{}
	}
	hh, ll := highs[len(highs)-lookback], lows[len(lows)-lookback]
	for i := len(highs) - lookback; i < len(highs); i++ {
		hh = math.Max(hh, highs[i])
		ll = math.Min(ll, lows[i])
	}
	r := hh - ll
	return FibLevels{
		Fib236: hh - 0.236*r,
		Fib382: hh - 0.382*r,
		Fib500: hh - 0.500*r,
		Fib618: hh - 0.618*r,
		Fib786: hh - 0.786*r,
	}
}
