package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	usermodels "rently/internal/user/models"
	userstore "rently/internal/user/store/user"
	"rently/internal/verification/models"
	requeststore "rently/internal/verification/store/request"
	id "rently/pkg/domain"
	"rently/pkg/requestcontext"
)

// =============================================================================
// Verification Service Test Suite
// =============================================================================

type VerificationServiceSuite struct {
	suite.Suite
	requests *requeststore.InMemory
	users    *userstore.InMemory
	service  *Service

	user *usermodels.User
}

func TestVerificationServiceSuite(t *testing.T) {
	suite.Run(t, new(VerificationServiceSuite))
}

func (s *VerificationServiceSuite) SetupTest() {
	s.requests = requeststore.NewInMemory()
	s.users = userstore.NewInMemory()
	s.service = New(s.requests, s.users)

	s.user = s.seedUser("Vera", "vera@example.com")
}

func (s *VerificationServiceSuite) seedUser(name, email string) *usermodels.User {
	user, err := usermodels.NewUser(id.NewUserID(), name, email, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), user))
	return user
}

// =============================================================================
// Submit Tests
// =============================================================================

func (s *VerificationServiceSuite) TestSubmit() {
	ctx := context.Background()

	s.Run("files a pending request", func() {
		request, err := s.service.Submit(ctx, s.user.ID, "passport-scan-01")
		s.Require().NoError(err)
		s.Equal(models.StatusPending, request.Status)
		s.Equal(s.user.ID, request.UserID)
	})

	s.Run("second pending submission is rejected", func() {
		_, err := s.service.Submit(ctx, s.user.ID, "passport-scan-02")
		s.ErrorIs(err, ErrDuplicatePending)
	})

	s.Run("resubmission is allowed once the first is reviewed", func() {
		latest, err := s.requests.LatestByUser(ctx, s.user.ID)
		s.Require().NoError(err)
		_, err = s.service.Reject(ctx, latest.ID)
		s.Require().NoError(err)

		_, err = s.service.Submit(ctx, s.user.ID, "passport-scan-03")
		s.NoError(err)
	})

	s.Run("unknown user", func() {
		_, err := s.service.Submit(ctx, id.NewUserID(), "doc")
		s.ErrorIs(err, ErrUserNotFound)
	})
}

// =============================================================================
// Approve / Reject Tests
// =============================================================================

func (s *VerificationServiceSuite) TestApprove() {
	ctx := context.Background()
	request, err := s.service.Submit(ctx, s.user.ID, "passport-scan")
	s.Require().NoError(err)

	s.Run("approval flips the status and the verified flag", func() {
		reviewedAt := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
		approved, err := s.service.Approve(requestcontext.WithTime(ctx, reviewedAt), request.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, approved.Status)
		s.Require().NotNil(approved.ReviewedAt)
		s.Equal(reviewedAt, *approved.ReviewedAt)

		user, err := s.users.FindByID(ctx, s.user.ID)
		s.Require().NoError(err)
		s.True(user.Verified)
	})

	s.Run("approving twice is a conflict, not idempotent", func() {
		_, err := s.service.Approve(ctx, request.ID)
		s.ErrorIs(err, ErrAlreadyProcessed)
	})

	s.Run("unknown request", func() {
		_, err := s.service.Approve(ctx, id.NewRequestID())
		s.ErrorIs(err, ErrRequestNotFound)
	})
}

func (s *VerificationServiceSuite) TestReject() {
	ctx := context.Background()
	request, err := s.service.Submit(ctx, s.user.ID, "blurry-scan")
	s.Require().NoError(err)

	s.Run("rejection leaves the user unverified", func() {
		rejected, err := s.service.Reject(ctx, request.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusRejected, rejected.Status)

		user, err := s.users.FindByID(ctx, s.user.ID)
		s.Require().NoError(err)
		s.False(user.Verified)
	})

	s.Run("rejected request cannot be approved later", func() {
		_, err := s.service.Approve(ctx, request.ID)
		s.ErrorIs(err, ErrAlreadyProcessed)
	})
}

// =============================================================================
// Delete Tests
// =============================================================================

func (s *VerificationServiceSuite) TestDelete() {
	ctx := context.Background()
	request, err := s.service.Submit(ctx, s.user.ID, "scan")
	s.Require().NoError(err)
	approved, err := s.service.Approve(ctx, request.ID)
	s.Require().NoError(err)

	s.Run("deletes a reviewed request", func() {
		s.Require().NoError(s.service.Delete(ctx, approved.ID))
		_, err := s.requests.FindByID(ctx, approved.ID)
		s.Error(err)
	})

	s.Run("verified flag survives request deletion", func() {
		user, err := s.users.FindByID(ctx, s.user.ID)
		s.Require().NoError(err)
		s.True(user.Verified)
	})

	s.Run("deleting twice reports not found", func() {
		s.ErrorIs(s.service.Delete(ctx, approved.ID), ErrRequestNotFound)
	})
}

// =============================================================================
// Status / ListPending Tests
// =============================================================================

func (s *VerificationServiceSuite) TestStatus() {
	ctx := context.Background()

	s.Run("no request yet", func() {
		status, err := s.service.Status(ctx, s.user.ID)
		s.Require().NoError(err)
		s.False(status.Verified)
		s.False(status.HasRequest)
	})

	s.Run("pending request", func() {
		_, err := s.service.Submit(ctx, s.user.ID, "scan")
		s.Require().NoError(err)

		status, err := s.service.Status(ctx, s.user.ID)
		s.Require().NoError(err)
		s.True(status.HasRequest)
		s.Equal(models.StatusPending, status.LatestStatus)
	})

	s.Run("status reflects the latest request", func() {
		latest, err := s.requests.LatestByUser(ctx, s.user.ID)
		s.Require().NoError(err)
		_, err = s.service.Approve(ctx, latest.ID)
		s.Require().NoError(err)

		status, err := s.service.Status(ctx, s.user.ID)
		s.Require().NoError(err)
		s.True(status.Verified)
		s.Equal(models.StatusApproved, status.LatestStatus)
	})

	s.Run("unknown user", func() {
		_, err := s.service.Status(ctx, id.NewUserID())
		s.ErrorIs(err, ErrUserNotFound)
	})
}

func (s *VerificationServiceSuite) TestListPending() {
	ctx := context.Background()

	first, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)), s.user.ID, "scan-1")
	s.Require().NoError(err)

	other := s.seedUser("Walt", "walt@example.com")
	second, err := s.service.Submit(requestcontext.WithTime(ctx, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)), other.ID, "scan-2")
	s.Require().NoError(err)

	pending, err := s.service.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)

	// Newest first.
	s.Equal(second.ID, pending[0].ID)
	s.Equal(first.ID, pending[1].ID)

	_, err = s.service.Approve(ctx, first.ID)
	s.Require().NoError(err)

	pending, err = s.service.ListPending(ctx)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(second.ID, pending[0].ID)
}
