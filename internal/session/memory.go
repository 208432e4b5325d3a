package session

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps session state in memory. It is the default when no
// database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]State),
	}
}

// Save stores a copy of st.
func (s *MemoryStore) Save(_ context.Context, st State) error {
	st = st.clone()
	st.UpdatedAt = time.Now()

	s.mu.Lock()
	s.states[st.ID] = st
	s.mu.Unlock()
	return nil
}

// Load returns the state saved under id.
func (s *MemoryStore) Load(_ context.Context, id string) (State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[id]
	if !ok {
		return State{}, ErrNotFound
	}
	return st.clone(), nil
}

// List returns every saved state, most recently updated first.
func (s *MemoryStore) List(_ context.Context) ([]State, error) {
	s.mu.RLock()
	out := make([]State, 0, len(s.states))
	for _, st := range s.states {
		out = append(out, st.clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b State) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Delete removes the state saved under id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; !ok {
		return ErrNotFound
	}
	delete(s.states, id)
	return nil
}
