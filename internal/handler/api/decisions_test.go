package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"SigPulse/internal/domain/models"
	"SigPulse/internal/usecase"
	applogger "SigPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

func newHandler(t *testing.T) (*DecisionsHandler, *usecase.LatestStore, *echo.Echo) {
	t.Helper()
	log, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	store := usecase.NewLatestStore()
	h := NewDecisionsHandler(log, store, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, store, e
}

func seedDecision(store *usecase.LatestStore) *models.Decision {
	d := &models.Decision{
		Pair:      "BTC_USDT",
		Timeframe: "1h",
		Tier:      models.TierBuy,
		Score:     41.2,
		Risk:      &models.RiskLevels{Entry: 42000, StopLoss: 41000, TakeProfit: 43500},
		Emitted:   true,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	store.Put(d)
	return d
}

func TestDecisionEndpoint(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)

	req := httptest.NewRequest(http.MethodGet, "/api/decision?pair=BTC_USDT&tf=1h", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"BTC_USDT", "buy", "41.2"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %s", want, body)
		}
	}
}

func TestDecisionDefaultsTimeframe(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)

	req := httptest.NewRequest(http.MethodGet, "/api/decision?pair=BTC_USDT", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestDecisionRequiresPair(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)

	req := httptest.NewRequest(http.MethodGet, "/api/decision", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// Validation failures are wrapped in a 200 envelope with a 400 status field.
	if !strings.Contains(rec.Body.String(), "ERR_REQUIRED") {
		t.Fatalf("expected validation error, body = %s", rec.Body.String())
	}
}

func TestDecisionRejectsUnknownTimeframe(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)

	req := httptest.NewRequest(http.MethodGet, "/api/decision?pair=BTC_USDT&tf=7m", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "ERR_ONEOF") {
		t.Fatalf("expected oneof validation error, body = %s", rec.Body.String())
	}
}

func TestDecisionNotFound(t *testing.T) {
	_, _, e := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/decision?pair=BTC_USDT&tf=1h", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "ERR_NOT_FOUND") {
		t.Fatalf("expected not found, body = %s", rec.Body.String())
	}
}

func TestDecisionsListsAll(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)
	store.Put(&models.Decision{Pair: "BTC_USDT", Timeframe: "4h", Tier: models.TierHold, Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/api/decisions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total":2`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	_, _, e := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestDecisionsFilterByTimeframe(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)
	store.Put(&models.Decision{Pair: "BTC_USDT", Timeframe: "4h", Tier: models.TierHold, Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/api/decisions?tf=4h", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, `"total":1`) {
		t.Fatalf("body = %s", body)
	}
	if !strings.Contains(body, `"4h"`) || strings.Contains(body, `"1h"`) {
		t.Fatalf("wrong timeframe in body = %s", body)
	}
}

func TestDecisionsSinceCutoff(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store) // timestamped 2024-05-01 12:00 UTC
	store.Put(&models.Decision{
		Pair: "BTC_USDT", Timeframe: "4h", Tier: models.TierHold,
		Timestamp: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/decisions?since=2024-05-02T00:00:00Z", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestDecisionsSinceAlignsToBar(t *testing.T) {
	_, store, e := newHandler(t)
	store.Put(&models.Decision{
		Pair: "BTC_USDT", Timeframe: "4h", Tier: models.TierHold,
		Timestamp: time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
	})

	// 09:30 truncates down to the 08:00 bar, so the decision survives.
	req := httptest.NewRequest(http.MethodGet, "/api/decisions?tf=4h&since=2024-05-02T09:30:00Z", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestDecisionsLimit(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)
	store.Put(&models.Decision{Pair: "BTC_USDT", Timeframe: "4h", Tier: models.TierHold, Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/api/decisions?limit=1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	// Total reflects everything that matched; items are capped.
	if !strings.Contains(body, `"total":2`) {
		t.Fatalf("body = %s", body)
	}
	if strings.Count(body, `"Pair"`) != 1 {
		t.Fatalf("expected one item, body = %s", body)
	}
}

func TestDecisionsIgnoresGarbageParams(t *testing.T) {
	_, store, e := newHandler(t)
	seedDecision(store)

	req := httptest.NewRequest(http.MethodGet, "/api/decisions?since=not-a-time&limit=abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
