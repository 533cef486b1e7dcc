//go:build integration

package listing_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	listingmodels "rently/internal/listing/models"
	"rently/internal/listing/store/listing"
	usermodels "rently/internal/user/models"
	userstore "rently/internal/user/store/user"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
	"rently/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *listing.Postgres
	users    *userstore.Postgres

	owner *usermodels.User
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = listing.NewPostgres(s.postgres.DB)
	s.users = userstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	// Truncate in dependency order
	err := s.postgres.TruncateTables(ctx, "rent_history", "listings", "users")
	s.Require().NoError(err)

	owner, err := usermodels.NewUser(id.NewUserID(), "Olive", "olive@example.com", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(ctx, owner))
	s.owner = owner
}

func (s *PostgresStoreSuite) newListing(title string) *listingmodels.Listing {
	l, err := listingmodels.NewListing(
		id.NewListingID(), s.owner.ID, s.owner.Name,
		title, "Springfield", "555-0101", 2, 1, 100000, time.Now(),
	)
	s.Require().NoError(err)
	return l
}

// TestMarkRentedSingleWinner verifies that concurrent rent attempts against the
// same listing produce exactly one committed flip.
func (s *PostgresStoreSuite) TestMarkRentedSingleWinner() {
	ctx := context.Background()
	l := s.newListing("Contested flat")
	s.Require().NoError(s.store.Create(ctx, l))

	const goroutines = 50
	var wg sync.WaitGroup
	var winners, losers atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.MarkRented(ctx, l.ID)
			if err == nil {
				winners.Add(1)
			} else if errors.Is(err, sentinel.ErrAlreadyUsed) {
				losers.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), winners.Load(), "exactly one flip should commit")
	s.Equal(int32(goroutines-1), losers.Load(), "all others should see the listing as taken")

	found, err := s.store.FindByID(ctx, l.ID)
	s.Require().NoError(err)
	s.False(found.Available)
}

func (s *PostgresStoreSuite) TestMarkRentedMissingListing() {
	ctx := context.Background()
	_, err := s.store.MarkRented(ctx, id.NewListingID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListAvailableExcludesRented() {
	ctx := context.Background()

	open := s.newListing("Open")
	taken := s.newListing("Taken")
	s.Require().NoError(s.store.Create(ctx, open))
	s.Require().NoError(s.store.Create(ctx, taken))

	_, err := s.store.MarkRented(ctx, taken.ID)
	s.Require().NoError(err)

	available, err := s.store.ListAvailable(ctx)
	s.Require().NoError(err)
	s.Require().Len(available, 1)
	s.Equal(open.ID, available[0].ID)
}

func (s *PostgresStoreSuite) TestSearchAvailableIsCaseInsensitive() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newListing("Sunny Loft")))
	s.Require().NoError(s.store.Create(ctx, s.newListing("Dark basement")))

	matches, err := s.store.SearchAvailable(ctx, "sunny")
	s.Require().NoError(err)
	s.Require().Len(matches, 1)
	s.Equal("Sunny Loft", matches[0].Title)
}

func (s *PostgresStoreSuite) TestListAvailableByOwners() {
	ctx := context.Background()

	other, err := usermodels.NewUser(id.NewUserID(), "Pavel", "pavel@example.com", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(ctx, other))

	mine := s.newListing("Mine")
	s.Require().NoError(s.store.Create(ctx, mine))

	theirs, err := listingmodels.NewListing(
		id.NewListingID(), other.ID, other.Name,
		"Theirs", "Springfield", "555-0102", 1, 1, 90000, time.Now(),
	)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, theirs))

	listings, err := s.store.ListAvailableByOwners(ctx, []id.UserID{other.ID})
	s.Require().NoError(err)
	s.Require().Len(listings, 1)
	s.Equal(theirs.ID, listings[0].ID)

	listings, err = s.store.ListAvailableByOwners(ctx, nil)
	s.Require().NoError(err)
	s.Empty(listings)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	l := s.newListing("Doomed")
	s.Require().NoError(s.store.Create(ctx, l))

	s.Require().NoError(s.store.Delete(ctx, l.ID))
	_, err := s.store.FindByID(ctx, l.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, l.ID), sentinel.ErrNotFound)
}
