package listing

import (
	"context"
	"sort"
	"strings"
	"sync"

	"rently/internal/listing/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// InMemory keeps listing records behind a RWMutex. MarkRented performs the
// availability compare-and-swap under the write lock, which gives the same
// linearizability the Postgres store gets from its conditional UPDATE.
type InMemory struct {
	mu       sync.RWMutex
	listings map[id.ListingID]models.Listing
}

func NewInMemory() *InMemory {
	return &InMemory{listings: make(map[id.ListingID]models.Listing)}
}

func (s *InMemory) Create(_ context.Context, listing *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = *listing
	return nil
}

func (s *InMemory) FindByID(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if listing, ok := s.listings[listingID]; ok {
		l := listing
		return &l, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListAvailable(_ context.Context) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(l models.Listing) bool { return l.Available }), nil
}

func (s *InMemory) SearchAvailable(_ context.Context, title string) ([]*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(title)
	return s.collect(func(l models.Listing) bool {
		return l.Available && strings.Contains(strings.ToLower(l.Title), needle)
	}), nil
}

func (s *InMemory) ListAvailableByOwners(_ context.Context, owners []id.UserID) ([]*models.Listing, error) {
	ownerSet := make(map[id.UserID]struct{}, len(owners))
	for _, owner := range owners {
		ownerSet[owner] = struct{}{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(l models.Listing) bool {
		_, ok := ownerSet[l.OwnerID]
		return l.Available && ok
	}), nil
}

// MarkRented flips available to false only if it is currently true. The
// returned listing is the committed row the caller uses to build the rent
// record.
func (s *InMemory) MarkRented(_ context.Context, listingID id.ListingID) (*models.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	listing, ok := s.listings[listingID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !listing.Available {
		return nil, sentinel.ErrAlreadyUsed
	}
	listing.Available = false
	s.listings[listingID] = listing
	return &listing, nil
}

func (s *InMemory) Delete(_ context.Context, listingID id.ListingID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[listingID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.listings, listingID)
	return nil
}

// collect filters under a held read lock and sorts newest first.
func (s *InMemory) collect(keep func(models.Listing) bool) []*models.Listing {
	var result []*models.Listing
	for _, listing := range s.listings {
		if keep(listing) {
			l := listing
			result = append(result, &l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
