package edge

import (
	"context"
	"sort"
	"sync"

	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// InMemory keeps the directed trust relation as an adjacency set behind a
// RWMutex.
type InMemory struct {
	mu    sync.RWMutex
	edges map[id.UserID]map[id.UserID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{edges: make(map[id.UserID]map[id.UserID]struct{})}
}

func (s *InMemory) Add(_ context.Context, userID, trustedID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.edges[userID]
	if !ok {
		out = make(map[id.UserID]struct{})
		s.edges[userID] = out
	}
	if _, exists := out[trustedID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	out[trustedID] = struct{}{}
	return nil
}

func (s *InMemory) Remove(_ context.Context, userID, trustedID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.edges[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := out[trustedID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(out, trustedID)
	return nil
}

// ListTrusted returns the outgoing edges in a stable order so feeds and
// profile pages render deterministically.
func (s *InMemory) ListTrusted(_ context.Context, userID id.UserID) ([]id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.edges[userID]
	trusted := make([]id.UserID, 0, len(out))
	for trustedID := range out {
		trusted = append(trusted, trustedID)
	}
	sort.Slice(trusted, func(i, j int) bool {
		return trusted[i].String() < trusted[j].String()
	})
	return trusted, nil
}
