package user

import (
	"context"
	"sync"

	"rently/internal/user/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// InMemory keeps user records behind a RWMutex. Mutations happen under the
// write lock so the verified flip is atomic with respect to readers.
type InMemory struct {
	mu      sync.RWMutex
	users   map[id.UserID]models.User
	byEmail map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:   make(map[id.UserID]models.User),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		u := user
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) SetVerified(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.Verified = true
	s.users[userID] = user
	return nil
}
