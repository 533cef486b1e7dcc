package renthistory

import (
	"context"
	"sync"

	"rently/internal/listing/models"
	id "rently/pkg/domain"
)

// InMemory is an append-only rent history keyed by renter. Nothing in the
// API mutates or removes entries once appended.
type InMemory struct {
	mu      sync.RWMutex
	history map[id.UserID][]models.RentRecord
}

func NewInMemory() *InMemory {
	return &InMemory{history: make(map[id.UserID][]models.RentRecord)}
}

func (s *InMemory) Append(_ context.Context, userID id.UserID, record models.RentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[userID] = append(s.history[userID], record)
	return nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]models.RentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.history[userID]
	out := make([]models.RentRecord, len(records))
	copy(out, records)
	return out, nil
}
