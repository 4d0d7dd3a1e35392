package ratelimit

import (
	"context"
	"sync"
	"time"

	"dorebell/internal/infrastructure/metrics"
)

// MemoryStore keeps counters in a process-local map. Expired entries are
// removed by Sweep, usually from RunJanitor.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func storeKey(scope, key string) string {
	return scope + "|" + key
}

func (s *MemoryStore) Hit(_ context.Context, scope, key string, now time.Time, policy Policy) (Entry, bool, error) {
	k := storeKey(scope, key)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, found := s.entries[k]
	next, allowed := decide(current, found, now, policy)
	s.entries[k] = next
	if !found {
		metrics.RateLimitEntries.Set(float64(len(s.entries)))
	}
	return next, allowed, nil
}

// Sweep deletes entries whose window closed before now.
func (s *MemoryStore) Sweep(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, e := range s.entries {
		if now.After(e.ResetAt) {
			delete(s.entries, k)
			removed++
		}
	}
	metrics.RateLimitEntries.Set(float64(len(s.entries)))
	return removed, nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
