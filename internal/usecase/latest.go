package usecase

import (
	"sync"

	"SigPulse/internal/domain/models"
)

// LatestStore keeps the most recent decision per pair and timeframe.
// Only the latest state is retained; there is no history.
type LatestStore struct {
	mu   sync.RWMutex
	byTF map[string]*models.Decision
}

// NewLatestStore returns an empty store.
func NewLatestStore() *LatestStore {
	return &LatestStore{byTF: make(map[string]*models.Decision)}
}

// Put replaces the stored decision for its pair and timeframe.
func (s *LatestStore) Put(d *models.Decision) {
	if d == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byTF[d.Pair+"|"+d.Timeframe] = d
}

// Get returns the latest decision for the pair and timeframe, or nil.
func (s *LatestStore) Get(pair, tf string) *models.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byTF[pair+"|"+tf]
}

// All returns a copy of every stored decision.
func (s *LatestStore) All() []*models.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Decision, 0, len(s.byTF))
	for _, d := range s.byTF {
		out = append(out, d)
	}
	return out
}
