package usecase

import (
	"testing"
	"time"

	"SigPulse/internal/domain/models"
)

func TestLatestStoreReplacesPerKey(t *testing.T) {
	s := NewLatestStore()
	if got := s.Get("BTC_USDT", "1h"); got != nil {
		t.Fatalf("empty store returned %+v", got)
	}

	first := &models.Decision{Pair: "BTC_USDT", Timeframe: "1h", Tier: models.TierBuy, Timestamp: time.Unix(1, 0)}
	second := &models.Decision{Pair: "BTC_USDT", Timeframe: "1h", Tier: models.TierHold, Timestamp: time.Unix(2, 0)}
	other := &models.Decision{Pair: "BTC_USDT", Timeframe: "4h", Tier: models.TierSell, Timestamp: time.Unix(3, 0)}

	s.Put(first)
	s.Put(other)
	s.Put(second)

	if got := s.Get("BTC_USDT", "1h"); got != second {
		t.Fatalf("Get(1h) = %+v, want latest", got)
	}
	if got := s.Get("BTC_USDT", "4h"); got != other {
		t.Fatalf("Get(4h) = %+v, want the 4h decision", got)
	}
	if got := len(s.All()); got != 2 {
		t.Fatalf("All() has %d entries, want 2", got)
	}
}

func TestLatestStoreIgnoresNil(t *testing.T) {
	s := NewLatestStore()
	s.Put(nil)
	if got := len(s.All()); got != 0 {
		t.Fatalf("nil Put stored something: %d entries", got)
	}
}
