package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	drepo "SigPulse/internal/domain/repository"
	"SigPulse/internal/service/ratelimit"
	apphttp "SigPulse/pkg/http"
)

func TestParseCandleRow(t *testing.T) {
	row := []string{"1700000000", "123456.7", "42000.5", "42100", "41900", "41950.25", "29.5", "true"}
	c, err := parseCandleRow(row)
	if err != nil {
		t.Fatalf("parseCandleRow: %v", err)
	}
	if c.Bucket.Unix() != 1700000000 {
		t.Fatalf("bucket = %v", c.Bucket)
	}
	if c.Open != 41950.25 || c.High != 42100 || c.Low != 41900 || c.Close != 42000.5 || c.Volume != 29.5 {
		t.Fatalf("candle = %+v", c)
	}
}

func TestParseCandleRowRejectsGarbage(t *testing.T) {
	if _, err := parseCandleRow([]string{"1700000000", "1", "2"}); err == nil {
		t.Fatal("short row accepted")
	}
	if _, err := parseCandleRow([]string{"nope", "1", "2", "3", "4", "5", "6"}); err == nil {
		t.Fatal("bad timestamp accepted")
	}
	if _, err := parseCandleRow([]string{"1700000000", "1", "x", "3", "4", "5", "6"}); err == nil {
		t.Fatal("bad close accepted")
	}
}

func TestTickerToModel(t *testing.T) {
	g := gateTicker{
		CurrencyPair:     "BTC_USDT",
		Last:             "42000.5",
		LowestAsk:        "42001",
		HighestBid:       "42000",
		ChangePercentage: "-1.25",
		High24h:          "43000",
		Low24h:           "41000",
		BaseVolume:       "512.75",
	}
	tk, err := g.toModel()
	if err != nil {
		t.Fatalf("toModel: %v", err)
	}
	if tk.Pair != "BTC_USDT" || tk.Price != 42000.5 || tk.Change24h != -1.25 || tk.Volume24h != 512.75 {
		t.Fatalf("ticker = %+v", tk)
	}
}

func TestCandlesAgainstFakeExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/spot/candlesticks":
			if got := r.URL.Query().Get("currency_pair"); got != "BTC_USDT" {
				t.Errorf("currency_pair = %q", got)
			}
			if got := r.URL.Query().Get("interval"); got != "1h" {
				t.Errorf("interval = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				["1700000000","1000","100.5","101","99.5","100","10","true"],
				["1700003600","1100","101.5","102","100.5","100.5","12","true"]
			]`))
		case "/spot/tickers":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"currency_pair":"BTC_USDT","last":"101.5","lowest_ask":"101.6","highest_bid":"101.4","change_percentage":"2.1","high_24h":"102","low_24h":"99","base_volume":"22"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewRESTClient(apphttp.NewClient(), WithBaseURL(srv.URL))

	candles, err := client.Candles(context.Background(), "BTC_USDT", drepo.TF1h, 2)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[0].Close != 100.5 || candles[1].Close != 101.5 {
		t.Fatalf("candles = %+v", candles)
	}
	if !candles[0].Bucket.Before(candles[1].Bucket) {
		t.Fatal("candles not oldest first")
	}

	tk, err := client.Ticker(context.Background(), "BTC_USDT")
	if err != nil {
		t.Fatalf("Ticker: %v", err)
	}
	if tk.Price != 101.5 || tk.Bid != 101.4 || tk.Ask != 101.6 {
		t.Fatalf("ticker = %+v", tk)
	}
}

func TestRateLimiterBlocksWhenExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	limiter := ratelimit.New()
	for i := 0; i < rlCapacity; i++ {
		limiter.Allow(rlKey, rlCapacity, rlRefill)
	}
	client := NewRESTClient(apphttp.NewClient(), WithBaseURL(srv.URL), WithRateLimiter(limiter))

	if _, err := client.Candles(context.Background(), "BTC_USDT", drepo.TF1h, 10); err == nil {
		t.Fatal("exhausted limiter let a request through")
	}
}
