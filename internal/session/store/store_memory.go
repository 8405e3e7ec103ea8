package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"webshop/pkg/domain"
)

// InMemoryStore keeps local state in process memory for tests/dev.
// Entries older than the TTL are removed by DeleteExpired.
type InMemoryStore struct {
	mu     sync.RWMutex
	states map[domain.InstallID]LocalState
	opts   options
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory(opts ...Option) *InMemoryStore {
	return &InMemoryStore{
		states: make(map[domain.InstallID]LocalState),
		opts:   newOptions(opts),
	}
}

func (s *InMemoryStore) LoggedIn(_ context.Context, installID domain.InstallID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[installID].LoggedIn, nil
}

func (s *InMemoryStore) SetLoggedIn(_ context.Context, installID domain.InstallID, loggedIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[installID]
	st.LoggedIn = loggedIn
	st.UpdatedAt = s.opts.now()
	s.states[installID] = st
	return nil
}

func (s *InMemoryStore) RefreshToken(_ context.Context, installID domain.InstallID) (string, error) {
	s.mu.RLock()
	sealed := s.states[installID].RefreshToken
	s.mu.RUnlock()
	token, err := s.opts.open(sealed)
	if err != nil {
		return "", fmt.Errorf("open refresh token: %w", err)
	}
	return token, nil
}

func (s *InMemoryStore) SaveRefreshToken(_ context.Context, installID domain.InstallID, token string) error {
	sealed, err := s.opts.seal(token)
	if err != nil {
		return fmt.Errorf("seal refresh token: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[installID]
	st.RefreshToken = sealed
	st.UpdatedAt = s.opts.now()
	s.states[installID] = st
	return nil
}

func (s *InMemoryStore) ClearRefreshToken(_ context.Context, installID domain.InstallID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[installID]
	if !ok {
		return nil
	}
	st.RefreshToken = ""
	st.UpdatedAt = s.opts.now()
	s.states[installID] = st
	return nil
}

// DeleteExpired removes state untouched for longer than the TTL.
func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.opts.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, st := range s.states {
		if st.UpdatedAt.Before(cutoff) {
			delete(s.states, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of tracked installations.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}
