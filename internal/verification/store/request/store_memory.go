package request

import (
	"context"
	"sort"
	"sync"
	"time"

	"rently/internal/verification/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// InMemory keeps verification requests behind a RWMutex. The one-pending-per-
// user rule and the pending-only status move both happen under the write
// lock.
type InMemory struct {
	mu       sync.RWMutex
	requests map[id.RequestID]models.VerificationRequest
}

func NewInMemory() *InMemory {
	return &InMemory{requests: make(map[id.RequestID]models.VerificationRequest)}
}

func (s *InMemory) CreateIfNonePending(_ context.Context, request *models.VerificationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.requests {
		if existing.UserID == request.UserID && existing.Status == models.StatusPending {
			return sentinel.ErrConflict
		}
	}
	s.requests[request.ID] = *request
	return nil
}

func (s *InMemory) FindByID(_ context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if request, ok := s.requests[requestID]; ok {
		r := request
		return &r, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) UpdateStatusIfPending(_ context.Context, requestID id.RequestID, status models.Status, reviewedAt time.Time) (*models.VerificationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[requestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if request.Status != models.StatusPending {
		return nil, sentinel.ErrInvalidState
	}
	request.Status = status
	request.ReviewedAt = &reviewedAt
	s.requests[requestID] = request
	r := request
	return &r, nil
}

func (s *InMemory) Delete(_ context.Context, requestID id.RequestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[requestID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.requests, requestID)
	return nil
}

func (s *InMemory) LatestByUser(_ context.Context, userID id.UserID) (*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *models.VerificationRequest
	for _, request := range s.requests {
		if request.UserID != userID {
			continue
		}
		if latest == nil || request.SubmittedAt.After(latest.SubmittedAt) {
			r := request
			latest = &r
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}

func (s *InMemory) ListPending(_ context.Context) ([]*models.VerificationRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var pending []*models.VerificationRequest
	for _, request := range s.requests {
		if request.Status == models.StatusPending {
			r := request
			pending = append(pending, &r)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.After(pending[j].SubmittedAt)
	})
	return pending, nil
}
