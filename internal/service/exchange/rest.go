package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"SigPulse/internal/domain/models"
	drepo "SigPulse/internal/domain/repository"
	"SigPulse/internal/service/ratelimit"
	"SigPulse/pkg/cache"
	apphttp "SigPulse/pkg/http"
)

// RESTClient implements MarketData against the Gate.io v4 spot API.
// Responses are cached so repeated timeframe evaluations inside one
// poll window do not hit the exchange twice.
type RESTClient struct {
	baseURL string
	http    *apphttp.Client
	cache   cache.Service
	limiter *ratelimit.Limiter

	candleTTL time.Duration
	tickerTTL time.Duration
}

// RESTOption configures RESTClient.
type RESTOption func(*RESTClient)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) RESTOption {
	return func(c *RESTClient) { c.baseURL = u }
}

// WithCache attaches a cache layer for candle and ticker responses.
func WithCache(svc cache.Service) RESTOption {
	return func(c *RESTClient) { c.cache = svc }
}

// WithRateLimiter bounds the request rate against the exchange.
func WithRateLimiter(l *ratelimit.Limiter) RESTOption {
	return func(c *RESTClient) { c.limiter = l }
}

// WithCacheTTLs sets response cache lifetimes.
func WithCacheTTLs(candle, ticker time.Duration) RESTOption {
	return func(c *RESTClient) {
		c.candleTTL = candle
		c.tickerTTL = ticker
	}
}

// NewRESTClient creates a Gate.io spot market data client.
func NewRESTClient(httpClient *apphttp.Client, opts ...RESTOption) *RESTClient {
	c := &RESTClient{
		baseURL:   "https://api.gateio.ws/api/v4",
		http:      httpClient,
		candleTTL: 30 * time.Second,
		tickerTTL: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Requests per second the public spot endpoints tolerate comfortably.
const (
	rlKey      = "gateio"
	rlCapacity = 10
	rlRefill   = 5
)

var _ drepo.MarketData = (*RESTClient)(nil)

// gateTicker is the /spot/tickers response element.
type gateTicker struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	LowestAsk        string `json:"lowest_ask"`
	HighestBid       string `json:"highest_bid"`
	ChangePercentage string `json:"change_percentage"`
	High24h          string `json:"high_24h"`
	Low24h           string `json:"low_24h"`
	BaseVolume       string `json:"base_volume"`
}

// Ticker fetches the rolling 24h summary for the pair.
func (c *RESTClient) Ticker(ctx context.Context, pair string) (*models.Ticker, error) {
	cacheKey := "ticker:" + pair
	if c.cache != nil {
		var cached models.Ticker
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	if err := c.throttleRequest(); err != nil {
		return nil, err
	}

	var raw []gateTicker
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method:      apphttp.MethodGet,
		URL:         c.baseURL + "/spot/tickers",
		QueryParams: map[string][]string{"currency_pair": {pair}},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("gateio tickers: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("gateio tickers: empty response for %s", pair)
	}

	tk, err := raw[0].toModel()
	if err != nil {
		return nil, fmt.Errorf("gateio tickers: %w", err)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey, tk, c.tickerTTL)
	}
	return tk, nil
}

func (g gateTicker) toModel() (*models.Ticker, error) {
	tk := &models.Ticker{Pair: g.CurrencyPair, Timestamp: time.Now().UTC()}
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"last", g.Last, &tk.Price},
		{"lowest_ask", g.LowestAsk, &tk.Ask},
		{"highest_bid", g.HighestBid, &tk.Bid},
		{"change_percentage", g.ChangePercentage, &tk.Change24h},
		{"high_24h", g.High24h, &tk.High24h},
		{"low_24h", g.Low24h, &tk.Low24h},
		{"base_volume", g.BaseVolume, &tk.Volume24h},
	} {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	return tk, nil
}

// Candles fetches up to limit closed bars, oldest first. Gate.io
// returns candlesticks as positional string arrays.
func (c *RESTClient) Candles(ctx context.Context, pair string, tf drepo.Timeframe, limit int) ([]models.Candle, error) {
	cacheKey := fmt.Sprintf("candles:%s:%s:%d", pair, tf, limit)
	if c.cache != nil {
		var cached []models.Candle
		if err := c.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	if err := c.throttleRequest(); err != nil {
		return nil, err
	}

	var raw [][]string
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    c.baseURL + "/spot/candlesticks",
		QueryParams: map[string][]string{
			"currency_pair": {pair},
			"interval":      {string(tf)},
			"limit":         {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("gateio candlesticks: %w", err)
	}

	candles := make([]models.Candle, 0, len(raw))
	for _, row := range raw {
		candle, err := parseCandleRow(row)
		if err != nil {
			return nil, fmt.Errorf("gateio candlesticks: %w", err)
		}
		candles = append(candles, candle)
	}

	if c.cache != nil && len(candles) > 0 {
		_ = c.cache.Set(ctx, cacheKey, candles, c.candleTTL)
	}
	return candles, nil
}

// parseCandleRow decodes one positional row:
// [timestamp, quote_volume, close, high, low, open, base_volume, ...].
func parseCandleRow(row []string) (models.Candle, error) {
	if len(row) < 7 {
		return models.Candle{}, fmt.Errorf("short row: %d fields", len(row))
	}
	ts, err := strconv.ParseInt(row[0], 10, 64)
	if err != nil {
		return models.Candle{}, fmt.Errorf("parse timestamp %q: %w", row[0], err)
	}
	var c models.Candle
	c.Bucket = time.Unix(ts, 0).UTC()
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"close", row[2], &c.Close},
		{"high", row[3], &c.High},
		{"low", row[4], &c.Low},
		{"open", row[5], &c.Open},
		{"volume", row[6], &c.Volume},
	} {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("parse %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = v
	}
	return c, nil
}

func (c *RESTClient) throttleRequest() error {
	if c.limiter == nil {
		return nil
	}
	if !c.limiter.Allow(rlKey, rlCapacity, rlRefill) {
		return fmt.Errorf("gateio: request rate limit exceeded")
	}
	return nil
}
