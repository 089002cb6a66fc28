package models

import "time"

// Candle represents one closed OHLCV bar.
type Candle struct {
	Bucket time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Ticker is a rolling 24h market summary for the traded pair.
type Ticker struct {
	Pair      string
	Price     float64
	Bid       float64
	Ask       float64
	High24h   float64
	Low24h    float64
	Volume24h float64
	Change24h float64 // percent
	Timestamp time.Time
}
