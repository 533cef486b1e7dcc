package community

import (
	"context"
	"sort"
	"sync"

	"rently/internal/community/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// InMemory keeps communities behind a RWMutex. Name uniqueness is enforced
// under the write lock with an exact-match index.
type InMemory struct {
	mu          sync.RWMutex
	communities map[id.CommunityID]models.Community
	byName      map[string]id.CommunityID
}

func NewInMemory() *InMemory {
	return &InMemory{
		communities: make(map[id.CommunityID]models.Community),
		byName:      make(map[string]id.CommunityID),
	}
}

func (s *InMemory) Create(_ context.Context, community *models.Community) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[community.Name]; exists {
		return sentinel.ErrAlreadyUsed
	}
	stored := *community
	stored.Members = append([]id.UserID(nil), community.Members...)
	s.communities[community.ID] = stored
	s.byName[community.Name] = community.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, communityID id.CommunityID) (*models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	community, ok := s.communities[communityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyCommunity(community), nil
}

// AddMember appends the user and returns the updated member count.
func (s *InMemory) AddMember(_ context.Context, communityID id.CommunityID, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	community, ok := s.communities[communityID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if community.IsMember(userID) {
		return 0, sentinel.ErrAlreadyUsed
	}
	community.Members = append(community.Members, userID)
	s.communities[communityID] = community
	return len(community.Members), nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*models.Community, 0, len(s.communities))
	for _, community := range s.communities {
		result = append(result, copyCommunity(community))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func copyCommunity(community models.Community) *models.Community {
	c := community
	c.Members = append([]id.UserID(nil), community.Members...)
	return &c
}
