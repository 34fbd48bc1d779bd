package credential

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore is a Manager backed by a map.
type MemoryStore struct {
	mu         sync.RWMutex
	principals map[string]Principal
}

var _ Manager = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding the given principals. It fails on
// an invalid principal or a repeated username.
func NewMemoryStore(principals ...Principal) (*MemoryStore, error) {
	s := &MemoryStore{principals: make(map[string]Principal, len(principals))}
	for _, p := range principals {
		if err := s.Create(context.Background(), p); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *MemoryStore) Lookup(_ context.Context, username string) (Principal, bool, error) {
	s.mu.RLock()
	p, ok := s.principals[username]
	s.mu.RUnlock()
	if !ok {
		return Principal{}, false, nil
	}
	return p.Clone(), true, nil
}

func (s *MemoryStore) Create(_ context.Context, p Principal) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[p.Username]; ok {
		return ErrAlreadyExists
	}
	s.principals[p.Username] = p.Clone()
	return nil
}

func (s *MemoryStore) UpdateRoles(_ context.Context, username string, roles []string) error {
	candidate := Principal{Username: username, PasswordHash: "-", Roles: roles}
	if err := candidate.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.principals[username]
	if !ok {
		return ErrNotFound
	}
	p.Roles = slices.Clone(roles)
	s.principals[username] = p
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.principals[username]; !ok {
		return ErrNotFound
	}
	delete(s.principals, username)
	return nil
}

// Len returns the number of stored principals.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.principals)
}
