package kvstore

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps sets in a map. Contents are lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	sets   map[string][]string
	closed bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string][]string)}
}

// GetSet returns a copy of the set stored under key.
func (s *MemoryStore) GetSet(_ context.Context, key string) ([]string, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return slices.Clone(s.sets[key]), nil
}

// PutSet replaces the set stored under key.
func (s *MemoryStore) PutSet(_ context.Context, key string, members []string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if len(members) == 0 {
		delete(s.sets, key)
		return nil
	}
	s.sets[key] = dedupe(members)
	return nil
}

// Len returns the number of keys held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets)
}

// Close drops every set.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.sets = nil
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
