package repository

import (
	"context"

	"SigPulse/internal/domain/models"
)

// MarketData provides bar history and ticker snapshots for the traded pair.
type MarketData interface {
	Ticker(ctx context.Context, pair string) (*models.Ticker, error)
	Candles(ctx context.Context, pair string, tf Timeframe, limit int) ([]models.Candle, error)
}

// TickerStream is a live price feed over WebSocket.
type TickerStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Ticker, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Notifier delivers emitted decisions and market alerts across the
// configured channels. The core never formats message text; that
// belongs behind this interface.
type Notifier interface {
	Dispatch(ctx context.Context, d *models.Decision, tk *models.Ticker) error
	DispatchAlert(ctx context.Context, a *models.MarketAlert, tk *models.Ticker) error
}

// Metrics records operational counters for the evaluation loop.
type Metrics interface {
	RecordDecision(pair, tf string, tier models.SignalTier, emitted bool)
	RecordError(kind string)
	RecordLastPrice(pair string, price float64)
	RecordScore(pair, tf string, score float64)
	RecordLatency(op string, seconds float64)
}
