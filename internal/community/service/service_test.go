package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	communitystore "rently/internal/community/store/community"
	edgestore "rently/internal/community/store/edge"
	usermodels "rently/internal/user/models"
	userstore "rently/internal/user/store/user"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
)

// =============================================================================
// Community Service Test Suite
// =============================================================================

type CommunityServiceSuite struct {
	suite.Suite
	edges       *edgestore.InMemory
	communities *communitystore.InMemory
	users       *userstore.InMemory
	service     *Service

	alice *usermodels.User
	bob   *usermodels.User
}

func TestCommunityServiceSuite(t *testing.T) {
	suite.Run(t, new(CommunityServiceSuite))
}

func (s *CommunityServiceSuite) SetupTest() {
	s.edges = edgestore.NewInMemory()
	s.communities = communitystore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.service = New(s.edges, s.communities, s.users)

	s.alice = s.seedUser("Alice", "alice@example.com")
	s.bob = s.seedUser("Bob", "bob@example.com")
}

func (s *CommunityServiceSuite) seedUser(name, email string) *usermodels.User {
	user, err := usermodels.NewUser(id.NewUserID(), name, email, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user
}

// =============================================================================
// Trust Edge Tests
// =============================================================================

func (s *CommunityServiceSuite) TestAddToCommunity() {
	ctx := context.Background()

	s.Run("adds a directed edge", func() {
		s.Require().NoError(s.service.AddToCommunity(ctx, s.alice.ID, s.bob.ID))

		trusted, err := s.edges.ListTrusted(ctx, s.alice.ID)
		s.Require().NoError(err)
		s.Equal([]id.UserID{s.bob.ID}, trusted)

		// The relation is directed: Bob does not trust Alice back.
		back, err := s.edges.ListTrusted(ctx, s.bob.ID)
		s.Require().NoError(err)
		s.Empty(back)
	})

	s.Run("duplicate edge is a conflict", func() {
		err := s.service.AddToCommunity(ctx, s.alice.ID, s.bob.ID)
		s.ErrorIs(err, ErrAlreadyMember)
	})

	s.Run("self-loop is rejected before the store", func() {
		err := s.service.AddToCommunity(ctx, s.alice.ID, s.alice.ID)
		s.ErrorIs(err, ErrInvalidTarget)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("unknown target", func() {
		err := s.service.AddToCommunity(ctx, s.alice.ID, id.NewUserID())
		s.ErrorIs(err, ErrUserNotFound)
	})
}

func (s *CommunityServiceSuite) TestRemoveFromCommunity() {
	ctx := context.Background()
	s.Require().NoError(s.service.AddToCommunity(ctx, s.alice.ID, s.bob.ID))

	s.Run("removes an existing edge", func() {
		s.Require().NoError(s.service.RemoveFromCommunity(ctx, s.alice.ID, s.bob.ID))
		trusted, err := s.edges.ListTrusted(ctx, s.alice.ID)
		s.Require().NoError(err)
		s.Empty(trusted)
	})

	s.Run("removing an absent edge is a no-op", func() {
		s.NoError(s.service.RemoveFromCommunity(ctx, s.alice.ID, s.bob.ID))
		s.NoError(s.service.RemoveFromCommunity(ctx, s.bob.ID, id.NewUserID()))
	})
}

func (s *CommunityServiceSuite) TestListCommunity() {
	ctx := context.Background()
	s.Require().NoError(s.service.AddToCommunity(ctx, s.alice.ID, s.bob.ID))

	users, err := s.service.ListCommunity(ctx, s.alice.ID)
	s.Require().NoError(err)
	s.Require().Len(users, 1)
	s.Equal(s.bob.ID, users[0].ID)
	s.Equal("Bob", users[0].Name)
}

// =============================================================================
// Community Entity Tests
// =============================================================================

func (s *CommunityServiceSuite) TestCreateCommunity() {
	ctx := context.Background()

	s.Run("creator becomes the first member", func() {
		community, err := s.service.CreateCommunity(ctx, s.alice.ID, "Springfield Renters", "rentals around Springfield")
		s.Require().NoError(err)
		s.Equal([]id.UserID{s.alice.ID}, community.Members)
		s.Equal("rentals around Springfield", community.Description)
	})

	s.Run("exact duplicate name is a conflict", func() {
		_, err := s.service.CreateCommunity(ctx, s.bob.ID, "Springfield Renters", "")
		s.ErrorIs(err, ErrDuplicateName)
	})

	s.Run("name comparison is case-sensitive", func() {
		_, err := s.service.CreateCommunity(ctx, s.bob.ID, "springfield renters", "")
		s.NoError(err)
	})

	s.Run("blank name fails validation", func() {
		_, err := s.service.CreateCommunity(ctx, s.alice.ID, "   ", "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *CommunityServiceSuite) TestJoinCommunity() {
	ctx := context.Background()
	community, err := s.service.CreateCommunity(ctx, s.alice.ID, "Joiners", "")
	s.Require().NoError(err)

	s.Run("join returns the updated member count", func() {
		count, err := s.service.JoinCommunity(ctx, community.ID, s.bob.ID)
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("joining twice is a conflict", func() {
		_, err := s.service.JoinCommunity(ctx, community.ID, s.bob.ID)
		s.ErrorIs(err, ErrAlreadyMember)
	})

	s.Run("creator is already a member", func() {
		_, err := s.service.JoinCommunity(ctx, community.ID, s.alice.ID)
		s.ErrorIs(err, ErrAlreadyMember)
	})

	s.Run("unknown community", func() {
		_, err := s.service.JoinCommunity(ctx, id.NewCommunityID(), s.bob.ID)
		s.ErrorIs(err, ErrCommunityNotFound)
	})

	s.Run("membership never shrinks", func() {
		loaded, err := s.service.GetCommunity(ctx, community.ID)
		s.Require().NoError(err)
		s.Len(loaded.Members, 2)
	})
}

func (s *CommunityServiceSuite) TestListCommunities() {
	ctx := context.Background()

	_, err := s.service.CreateCommunity(ctx, s.alice.ID, "First", "")
	s.Require().NoError(err)
	_, err = s.service.CreateCommunity(ctx, s.bob.ID, "Second", "")
	s.Require().NoError(err)

	communities, err := s.service.ListCommunities(ctx)
	s.Require().NoError(err)
	s.Len(communities, 2)
}
