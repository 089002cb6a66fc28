package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"SigPulse/internal/domain/models"
	drepo "SigPulse/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Stream implements a TickerStream backed by the Gate.io v4 WebSocket.
type Stream struct {
	websocketURL   string
	pair           string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a Gate.io spot ticker stream for one pair.
func NewStream(websocketURL, pair string, reconnectDelay, pingInterval time.Duration) drepo.TickerStream {
	return &Stream{
		websocketURL:   websocketURL,
		pair:           pair,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("gateio connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	return nil
}

// Subscribe subscribes to the spot.tickers channel for the pair.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("gateio not connected")
	}
	msg := map[string]interface{}{
		"time":    time.Now().Unix(),
		"channel": "spot.tickers",
		"event":   "subscribe",
		"payload": []string{s.pair},
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe %s: %w", s.pair, err)
	}
	return nil
}

type gateWSTicker struct {
	CurrencyPair     string `json:"currency_pair"`
	Last             string `json:"last"`
	LowestAsk        string `json:"lowest_ask"`
	HighestBid       string `json:"highest_bid"`
	ChangePercentage string `json:"change_percentage"`
	High24h          string `json:"high_24h"`
	Low24h           string `json:"low_24h"`
	BaseVolume       string `json:"base_volume"`
}

type gateWSMessage struct {
	Time    int64           `json:"time"`
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Result  json.RawMessage `json:"result"`
}

// Read streams Ticker events and errors.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Ticker, <-chan error) {
	tickers := make(chan *models.Ticker, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(tickers)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("gateio conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("gateio read: %w", err)
					return
				}
				var m gateWSMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-json frames
					continue
				}
				if m.Channel != "spot.tickers" || m.Event != "update" {
					continue
				}
				var raw gateWSTicker
				if err := json.Unmarshal(m.Result, &raw); err != nil {
					continue
				}
				tk, err := raw.toModel(m.Time)
				if err != nil {
					continue
				}
				select {
				case tickers <- tk:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return tickers, errs
}

func (g gateWSTicker) toModel(ts int64) (*models.Ticker, error) {
	tk := &models.Ticker{Pair: g.CurrencyPair, Timestamp: time.Unix(ts, 0).UTC()}
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{g.Last, &tk.Price},
		{g.LowestAsk, &tk.Ask},
		{g.HighestBid, &tk.Bid},
		{g.ChangePercentage, &tk.Change24h},
		{g.High24h, &tk.High24h},
		{g.Low24h, &tk.Low24h},
		{g.BaseVolume, &tk.Volume24h},
	} {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	if tk.Price <= 0 {
		return nil, fmt.Errorf("gateio ticker without price")
	}
	return tk, nil
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
