package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	usermodels "rently/internal/user/models"
	verifymetrics "rently/internal/verification/metrics"
	"rently/internal/verification/models"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
	audit "rently/pkg/platform/audit"
	"rently/pkg/platform/sentinel"
	"rently/pkg/requestcontext"
)

// Failure kinds callers can test with errors.Is. AlreadyProcessed is
// deliberately not idempotent: approving an approved request is still a
// conflict, so double reviews surface instead of silently passing.
var (
	ErrUserNotFound     = dErrors.New(dErrors.CodeNotFound, "user not found")
	ErrRequestNotFound  = dErrors.New(dErrors.CodeNotFound, "verification request not found")
	ErrDuplicatePending = dErrors.New(dErrors.CodeConflict, "a pending verification request already exists")
	ErrAlreadyProcessed = dErrors.New(dErrors.CodeConflict, "verification request was already reviewed")
)

// RequestStore is the ledger contract for verification requests.
// CreateIfNonePending and UpdateStatusIfPending are the conditional writes
// that carry the workflow's invariants.
type RequestStore interface {
	CreateIfNonePending(ctx context.Context, request *models.VerificationRequest) error
	FindByID(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error)
	UpdateStatusIfPending(ctx context.Context, requestID id.RequestID, status models.Status, reviewedAt time.Time) (*models.VerificationRequest, error)
	Delete(ctx context.Context, requestID id.RequestID) error
	LatestByUser(ctx context.Context, userID id.UserID) (*models.VerificationRequest, error)
	ListPending(ctx context.Context) ([]*models.VerificationRequest, error)
}

// UserStore reads users and flips the verified flag on approval.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
	SetVerified(ctx context.Context, userID id.UserID) error
}

// UserStatus is the caller-facing verification summary.
type UserStatus struct {
	Verified     bool
	HasRequest   bool
	LatestStatus models.Status
}

// Service owns the verification workflow state machine.
type Service struct {
	requests RequestStore
	users    UserStore
	logger   *slog.Logger
	auditor  audit.Publisher
	metrics  *verifymetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *verifymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(requests RequestStore, users UserStore, opts ...Option) *Service {
	s := &Service{
		requests: requests,
		users:    users,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit files a new pending request for the user. The store rejects the
// insert if a pending request already exists, so concurrent submits cannot
// slip a second one in.
func (s *Service) Submit(ctx context.Context, userID id.UserID, documentRef string) (*models.VerificationRequest, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	request, err := models.NewVerificationRequest(id.NewRequestID(), userID, documentRef, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.requests.CreateIfNonePending(ctx, request); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, ErrDuplicatePending
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification request")
	}
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: request.ID.String(),
		Action:  audit.ActionVerificationSubmitted,
	})
	if s.metrics != nil {
		s.metrics.RequestsSubmitted.Inc()
	}
	return request, nil
}

// Approve moves the request from pending to approved and marks the user
// verified. The status move is the conditional write; the verified flag only
// flips after it commits.
func (s *Service) Approve(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	request, err := s.review(ctx, requestID, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetVerified(ctx, request.UserID); err != nil {
		s.logger.ErrorContext(ctx, "request approved but verified flag not set",
			"verification_id", requestID.String(),
			"user_id", request.UserID.String(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "request approved but user flag update failed")
	}

	s.emit(ctx, audit.Event{
		UserID:   request.UserID,
		Subject:  requestID.String(),
		Action:   audit.ActionVerificationApproved,
		Decision: "approved",
	})
	if s.metrics != nil {
		s.metrics.RequestsReviewed.WithLabelValues("approved").Inc()
	}
	return request, nil
}

// Reject moves the request from pending to rejected. The user's verified
// flag is untouched.
func (s *Service) Reject(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	request, err := s.review(ctx, requestID, models.StatusRejected)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, audit.Event{
		UserID:   request.UserID,
		Subject:  requestID.String(),
		Action:   audit.ActionVerificationRejected,
		Decision: "rejected",
	})
	if s.metrics != nil {
		s.metrics.RequestsReviewed.WithLabelValues("rejected").Inc()
	}
	return request, nil
}

func (s *Service) review(ctx context.Context, requestID id.RequestID, status models.Status) (*models.VerificationRequest, error) {
	request, err := s.requests.UpdateStatusIfPending(ctx, requestID, status, requestcontext.Now(ctx))
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, ErrRequestNotFound
		case errors.Is(err, sentinel.ErrInvalidState):
			return nil, ErrAlreadyProcessed
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update verification request")
		}
	}
	return request, nil
}

// Delete removes a request regardless of its status. Approved users keep
// their verified flag.
func (s *Service) Delete(ctx context.Context, requestID id.RequestID) error {
	if err := s.requests.Delete(ctx, requestID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrRequestNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete verification request")
	}
	s.emit(ctx, audit.Event{
		Subject: requestID.String(),
		Action:  audit.ActionVerificationDeleted,
	})
	return nil
}

// Status summarizes a user's verification state: the durable verified flag
// plus the status of their most recent request, if any.
func (s *Service) Status(ctx context.Context, userID id.UserID) (*UserStatus, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	status := &UserStatus{Verified: user.Verified}
	latest, err := s.requests.LatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return status, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load latest request")
	}
	status.HasRequest = true
	status.LatestStatus = latest.Status
	return status, nil
}

// ListPending returns the admin review queue, newest first.
func (s *Service) ListPending(ctx context.Context) ([]*models.VerificationRequest, error) {
	requests, err := s.requests.ListPending(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list pending requests")
	}
	return requests, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.DeviceFamily = requestcontext.DeviceFamily(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
}
