package memory

import (
	"context"
	"sync"

	id "rently/pkg/domain"
	audit "rently/pkg/platform/audit"
)

// Store keeps audit events in memory, grouped by user.
type Store struct {
	mu     sync.RWMutex
	events map[id.UserID][]audit.Event
}

func New() *Store {
	return &Store{events: make(map[id.UserID][]audit.Event)}
}

func (s *Store) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return nil
}

func (s *Store) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[userID]...), nil
}
