package throttle

import (
	"sync"
	"time"

	"SigPulse/internal/domain/models"
)

// Throttle suppresses repeat signals per pair and timeframe until a
// minimum interval has elapsed. A reversal in direction always passes.
// Holds are never recorded and never throttled.
type Throttle struct {
	mu   sync.Mutex
	last map[key]record
}

type key struct {
	pair string
	tf   string
}

type record struct {
	at   time.Time
	tier models.SignalTier
}

// New returns an empty throttle.
func New() *Throttle {
	return &Throttle{last: make(map[key]record)}
}

// ShouldEmit reports whether a signal would pass right now without
// recording anything. Safe to call any number of times.
func (t *Throttle) ShouldEmit(pair, tf string, tier models.SignalTier, now time.Time, min time.Duration) bool {
	if !tier.Actionable() {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.passes(key{pair: pair, tf: tf}, tier, now, min)
}

// Record marks a signal as emitted. Non-actionable tiers are ignored
// so a stream of holds never resets the cooldown.
func (t *Throttle) Record(pair, tf string, tier models.SignalTier, now time.Time) {
	if !tier.Actionable() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last[key{pair: pair, tf: tf}] = record{at: now, tier: tier}
}

// TryAcquire combines the check and the record under one lock, so two
// concurrent evaluations of the same pair cannot both emit inside a
// single cooldown window.
func (t *Throttle) TryAcquire(pair, tf string, tier models.SignalTier, now time.Time, min time.Duration) bool {
	if !tier.Actionable() {
		return true
	}
	k := key{pair: pair, tf: tf}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.passes(k, tier, now, min) {
		return false
	}
	t.last[k] = record{at: now, tier: tier}
	return true
}

// passes must be called with the lock held. The interval boundary is
// inclusive: elapsed exactly equal to min emits.
func (t *Throttle) passes(k key, tier models.SignalTier, now time.Time, min time.Duration) bool {
	prev, ok := t.last[k]
	if !ok {
		return true
	}
	if prev.tier.Direction() != tier.Direction() {
		return true
	}
	return !now.Before(prev.at.Add(min))
}

// Reset drops all recorded state.
func (t *Throttle) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = make(map[key]record)
}
