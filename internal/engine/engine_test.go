package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"

	communityservice "rently/internal/community/service"
	communitystore "rently/internal/community/store/community"
	edgestore "rently/internal/community/store/edge"
	listingservice "rently/internal/listing/service"
	liststore "rently/internal/listing/store/listing"
	historystore "rently/internal/listing/store/renthistory"
	usermodels "rently/internal/user/models"
	userstore "rently/internal/user/store/user"
	verificationmodels "rently/internal/verification/models"
	verifyservice "rently/internal/verification/service"
	requeststore "rently/internal/verification/store/request"
	id "rently/pkg/domain"
)

// =============================================================================
// Engine Scenario Test Suite
// =============================================================================
// These tests exercise full flows across the three managers the way the HTTP
// layer would, with everything backed by in-memory ledger stores.

type EngineSuite struct {
	suite.Suite
	users  *userstore.InMemory
	engine *Engine

	owner  *usermodels.User
	renter *usermodels.User
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.users = userstore.NewInMemory()
	edges := edgestore.NewInMemory()

	listingSvc := listingservice.New(
		liststore.NewInMemory(), historystore.NewInMemory(), s.users,
		listingservice.WithTrustedUsers(edges),
	)
	communitySvc := communityservice.New(edges, communitystore.NewInMemory(), s.users)
	verifySvc := verifyservice.New(requeststore.NewInMemory(), s.users)

	s.engine = New(listingSvc, communitySvc, verifySvc)

	s.owner = s.seedUser("Olive", "olive@example.com")
	s.renter = s.seedUser("Rami", "rami@example.com")
}

func (s *EngineSuite) seedUser(name, email string) *usermodels.User {
	user, err := usermodels.NewUser(id.NewUserID(), name, email, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user
}

func (s *EngineSuite) createListing(title string) id.ListingID {
	listing, err := s.engine.CreateListing(context.Background(), listingservice.CreateListingRequest{
		OwnerID:       s.owner.ID,
		Title:         title,
		Location:      "Springfield",
		ContactNumber: "555-0101",
		Bedrooms:      2,
		Bathrooms:     1,
		PriceCents:    100000,
	})
	s.Require().NoError(err)
	return listing.ID
}

// =============================================================================
// Rent Confirmation Scenarios
// =============================================================================

func (s *EngineSuite) TestRentConfirmationRace() {
	ctx := context.Background()
	listingID := s.createListing("Contested flat")

	renters := make([]id.UserID, 8)
	for i := range renters {
		user := s.seedUser("Renter", "race"+string(rune('a'+i))+"@example.com")
		renters[i] = user.ID
	}

	var (
		mu      sync.Mutex
		winners int
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, renterID := range renters {
		g.Go(func() error {
			_, err := s.engine.ConfirmRent(gctx, listingID, renterID)
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
				return nil
			}
			if errors.Is(err, listingservice.ErrAlreadyRented) {
				return nil
			}
			return err
		})
	}
	s.Require().NoError(g.Wait())
	s.Equal(1, winners)

	listing, err := s.engine.GetListing(ctx, listingID)
	s.Require().NoError(err)
	s.False(listing.Available)
}

func (s *EngineSuite) TestRentThenBrowse() {
	ctx := context.Background()
	rented := s.createListing("Taken")
	open := s.createListing("Open")

	_, err := s.engine.ConfirmRent(ctx, rented, s.renter.ID)
	s.Require().NoError(err)

	listings, err := s.engine.BrowseListings(ctx)
	s.Require().NoError(err)
	s.Require().Len(listings, 1)
	s.Equal(open, listings[0].ID)

	records, err := s.engine.RentHistory(ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("Taken", records[0].Title)
}

// =============================================================================
// Trust Graph Scenarios
// =============================================================================

func (s *EngineSuite) TestTrustDrivesCommunityFeed() {
	ctx := context.Background()
	listingID := s.createListing("Trusted terrace")

	// Before trusting the owner the feed is empty.
	feed, err := s.engine.CommunityFeed(ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Empty(feed)

	s.Require().NoError(s.engine.AddToCommunity(ctx, s.renter.ID, s.owner.ID))

	feed, err = s.engine.CommunityFeed(ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Require().Len(feed, 1)
	s.Equal(listingID, feed[0].ID)

	// Renting the listing removes it from the feed.
	_, err = s.engine.ConfirmRent(ctx, listingID, s.renter.ID)
	s.Require().NoError(err)

	feed, err = s.engine.CommunityFeed(ctx, s.renter.ID)
	s.Require().NoError(err)
	s.Empty(feed)
}

func (s *EngineSuite) TestCommunityLifecycle() {
	ctx := context.Background()

	community, err := s.engine.CreateCommunity(ctx, s.owner.ID, "Springfield", "neighborhood rentals")
	s.Require().NoError(err)

	count, err := s.engine.JoinCommunity(ctx, community.ID, s.renter.ID)
	s.Require().NoError(err)
	s.Equal(2, count)

	_, err = s.engine.JoinCommunity(ctx, community.ID, s.renter.ID)
	s.ErrorIs(err, communityservice.ErrAlreadyMember)

	communities, err := s.engine.ListCommunities(ctx)
	s.Require().NoError(err)
	s.Len(communities, 1)
}

// =============================================================================
// Verification Scenarios
// =============================================================================

func (s *EngineSuite) TestVerificationLifecycle() {
	ctx := context.Background()

	request, err := s.engine.SubmitVerification(ctx, s.renter.ID, "passport-scan")
	s.Require().NoError(err)

	_, err = s.engine.SubmitVerification(ctx, s.renter.ID, "another-scan")
	s.ErrorIs(err, verifyservice.ErrDuplicatePending)

	approved, err := s.engine.ApproveVerification(ctx, request.ID)
	s.Require().NoError(err)
	s.Equal(verificationmodels.StatusApproved, approved.Status)

	status, err := s.engine.VerificationStatus(ctx, s.renter.ID)
	s.Require().NoError(err)
	s.True(status.Verified)
	s.Equal(verificationmodels.StatusApproved, status.LatestStatus)

	// Deleting the reviewed request keeps the user verified.
	s.Require().NoError(s.engine.DeleteVerification(ctx, request.ID))
	status, err = s.engine.VerificationStatus(ctx, s.renter.ID)
	s.Require().NoError(err)
	s.True(status.Verified)
	s.False(status.HasRequest)
}
