package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps revoked ids in a map. Expired entries are ignored by
// IsRevoked and removed by Sweep.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore creates an empty store. now defaults to time.Now.
func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{entries: make(map[string]time.Time), now: now}
}

func (s *MemoryStore) Revoke(_ context.Context, jti string, until time.Time) error {
	if jti == "" {
		return ErrEmptyID
	}
	if !until.After(s.now()) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[jti]; !ok || until.After(prev) {
		s.entries[jti] = until
	}
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.RLock()
	until, ok := s.entries[jti]
	s.mu.RUnlock()
	return ok && s.now().Before(until), nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for jti, until := range s.entries {
		if !now.Before(until) {
			delete(s.entries, jti)
			n++
		}
	}
	return n
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
