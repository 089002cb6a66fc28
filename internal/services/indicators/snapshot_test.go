package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"SigPulse/internal/domain/models"
)

// candleRamp builds a steadily rising series with a fixed intrabar
// range and mildly oscillating volume.
func candleRamp(n int) []models.Candle {
	out := make([]models.Candle, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		base := 100 + float64(i)*0.5
		out[i] = models.Candle{
			Bucket: start.Add(time.Duration(i) * time.Hour),
			Open:   base,
			High:   base + 1.5,
			Low:    base - 1.5,
			Close:  base + 0.5,
			Volume: 500 + float64(i%7)*40,
		}
	}
	return out
}

func TestBuildSnapshotNeedsHistory(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	_, err := b.BuildSnapshot(candleRamp(120))
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("got %v, want ErrInsufficientHistory", err)
	}
}

func TestBuildSnapshotProducesValidSnapshot(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	candles := candleRamp(250)
	snap, err := b.BuildSnapshot(candles)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if err := snap.Validate(); err != nil {
		t.Fatalf("snapshot did not validate: %v", err)
	}

	last := candles[len(candles)-1]
	if snap.Price != last.Close {
		t.Fatalf("price = %v, want last close %v", snap.Price, last.Close)
	}
	if !snap.Timestamp.Equal(last.Bucket) {
		t.Fatalf("timestamp = %v, want %v", snap.Timestamp, last.Bucket)
	}
}

func TestBuildSnapshotUptrendReads(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	snap, err := b.BuildSnapshot(candleRamp(250))
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}

	tr := snap.Trend
	if !(tr.MA20 > tr.MA50 && tr.MA50 > tr.MA200) {
		t.Fatalf("uptrend MA stack out of order: 20=%v 50=%v 200=%v", tr.MA20, tr.MA50, tr.MA200)
	}
	if tr.EMA9 <= tr.EMA21 {
		t.Fatalf("uptrend EMAs out of order: 9=%v 21=%v", tr.EMA9, tr.EMA21)
	}
	if tr.MACD <= 0 {
		t.Fatalf("uptrend MACD = %v, want positive", tr.MACD)
	}
	if tr.DIPlus <= tr.DIMinus {
		t.Fatalf("uptrend DI+ %v <= DI- %v", tr.DIPlus, tr.DIMinus)
	}
	if snap.Momentum.RSI <= 50 {
		t.Fatalf("uptrend RSI = %v, want above 50", snap.Momentum.RSI)
	}
	if snap.Volatility.ATR <= 0 {
		t.Fatalf("ATR = %v, want positive", snap.Volatility.ATR)
	}
	if snap.Volume.OBVChange <= 0 {
		t.Fatalf("uptrend OBV change = %v, want positive", snap.Volume.OBVChange)
	}
}

func TestBuildSnapshotLevelOrdering(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	snap, err := b.BuildSnapshot(candleRamp(250))
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	l := snap.Levels
	if !(l.S3 < l.S2 && l.S2 < l.S1 && l.S1 < l.Pivot &&
		l.Pivot < l.R1 && l.R1 < l.R2 && l.R2 < l.R3) {
		t.Fatalf("pivot ladder out of order: %+v", l)
	}
	if !(l.Fib786 < l.Fib618 && l.Fib618 < l.Fib500 &&
		l.Fib500 < l.Fib382 && l.Fib382 < l.Fib236) {
		t.Fatalf("fib ladder out of order: %+v", l)
	}
}

func TestBuildSnapshotVolumeRatio(t *testing.T) {
	b := NewBuilder(DefaultConfig())
	candles := candleRamp(250)
	candles[len(candles)-1].Volume = 2000
	snap, err := b.BuildSnapshot(candles)
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	if snap.Volume.VolumeRatio <= 1.5 {
		t.Fatalf("volume ratio = %v, want a clear spike", snap.Volume.VolumeRatio)
	}
	if math.IsNaN(snap.Volume.VWAP) || snap.Volume.VWAP <= 0 {
		t.Fatalf("VWAP = %v, want positive", snap.Volume.VWAP)
	}
}
