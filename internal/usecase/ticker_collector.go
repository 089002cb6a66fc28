package usecase

import (
	"context"
	"sync"

	"SigPulse/internal/domain/models"
	drepo "SigPulse/internal/domain/repository"
)

// TickerCollector consumes the live ticker stream and keeps the most
// recent quote available for the evaluation loop and the API.
type TickerCollector struct {
	stream  drepo.TickerStream
	metrics drepo.Metrics

	mu   sync.RWMutex
	last *models.Ticker
}

// NewTickerCollector creates a new TickerCollector instance.
func NewTickerCollector(stream drepo.TickerStream, metrics drepo.Metrics) *TickerCollector {
	return &TickerCollector{stream: stream, metrics: metrics}
}

// IsConnected returns true if the ticker stream is connected.
func (c *TickerCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickerCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	tkCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tkCh, errCh)
	return nil
}

func (c *TickerCollector) consume(ctx context.Context, tkCh <-chan *models.Ticker, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case tk := <-tkCh:
			if tk == nil {
				continue
			}
			c.mu.Lock()
			c.last = tk
			c.mu.Unlock()
			c.metrics.RecordLastPrice(tk.Pair, tk.Price)
		}
	}
}

// Latest returns the most recent ticker, or nil before the first read.
func (c *TickerCollector) Latest() *models.Ticker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *TickerCollector) Stop() error { return c.stream.Close() }
