package service

import (
	"context"
	"errors"
	"log/slog"

	communitymetrics "rently/internal/community/metrics"
	"rently/internal/community/models"
	usermodels "rently/internal/user/models"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
	audit "rently/pkg/platform/audit"
	"rently/pkg/platform/sentinel"
	"rently/pkg/requestcontext"
)

// Failure kinds callers can test with errors.Is.
var (
	ErrUserNotFound      = dErrors.New(dErrors.CodeNotFound, "user not found")
	ErrCommunityNotFound = dErrors.New(dErrors.CodeNotFound, "community not found")
	ErrInvalidTarget     = dErrors.New(dErrors.CodeInvalidInput, "cannot add yourself to your community")
	ErrAlreadyMember     = dErrors.New(dErrors.CodeConflict, "already a member")
	ErrDuplicateName     = dErrors.New(dErrors.CodeConflict, "community name already taken")
)

// EdgeStore is the ledger contract for the directed trust relation. Add is a
// conditional write: it commits only when the edge does not exist yet.
type EdgeStore interface {
	Add(ctx context.Context, userID, trustedID id.UserID) error
	Remove(ctx context.Context, userID, trustedID id.UserID) error
	ListTrusted(ctx context.Context, userID id.UserID) ([]id.UserID, error)
}

// CommunityStore is the ledger contract for named communities. Membership is
// append-only.
type CommunityStore interface {
	Create(ctx context.Context, community *models.Community) error
	FindByID(ctx context.Context, communityID id.CommunityID) (*models.Community, error)
	AddMember(ctx context.Context, communityID id.CommunityID, userID id.UserID) (int, error)
	List(ctx context.Context) ([]*models.Community, error)
}

// UserReader resolves users without write access to user records.
type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// Service owns the trust graph: the directed per-user relation and the named
// community entities. The two relations are deliberately separate and never
// merged.
type Service struct {
	edges       EdgeStore
	communities CommunityStore
	users       UserReader
	logger      *slog.Logger
	auditor     audit.Publisher
	metrics     *communitymetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *communitymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(edges EdgeStore, communities CommunityStore, users UserReader, opts ...Option) *Service {
	s := &Service{
		edges:       edges,
		communities: communities,
		users:       users,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddToCommunity adds a directed trust edge from the caller to the target.
// Self-loops are rejected before any store access.
func (s *Service) AddToCommunity(ctx context.Context, userID, targetID id.UserID) error {
	if userID == targetID {
		return ErrInvalidTarget
	}
	if _, err := s.users.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrUserNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load target user")
	}
	if err := s.edges.Add(ctx, userID, targetID); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return ErrAlreadyMember
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add trust edge")
	}
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: targetID.String(),
		Action:  audit.ActionTrustAdded,
	})
	if s.metrics != nil {
		s.metrics.TrustEdgesAdded.Inc()
	}
	return nil
}

// RemoveFromCommunity removes the directed trust edge. Removing an absent
// edge is a no-op.
func (s *Service) RemoveFromCommunity(ctx context.Context, userID, targetID id.UserID) error {
	if err := s.edges.Remove(ctx, userID, targetID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove trust edge")
	}
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: targetID.String(),
		Action:  audit.ActionTrustRemoved,
	})
	if s.metrics != nil {
		s.metrics.TrustEdgesRemoved.Inc()
	}
	return nil
}

// ListCommunity resolves the caller's trusted users to full records. Users
// deleted since the edge was added are skipped rather than failing the list.
func (s *Service) ListCommunity(ctx context.Context, userID id.UserID) ([]*usermodels.User, error) {
	trusted, err := s.edges.ListTrusted(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list trusted users")
	}
	users := make([]*usermodels.User, 0, len(trusted))
	for _, trustedID := range trusted {
		user, err := s.users.FindByID(ctx, trustedID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve trusted user")
		}
		users = append(users, user)
	}
	return users, nil
}

// CreateCommunity creates a named community with the creator as its first
// member. Names are unique by exact match.
func (s *Service) CreateCommunity(ctx context.Context, creatorID id.UserID, name, description string) (*models.Community, error) {
	if _, err := s.users.FindByID(ctx, creatorID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load creator")
	}

	community, err := models.NewCommunity(id.NewCommunityID(), creatorID, name, description, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.communities.Create(ctx, community); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, ErrDuplicateName
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create community")
	}
	s.emit(ctx, audit.Event{
		UserID:  creatorID,
		Subject: community.ID.String(),
		Action:  audit.ActionCommunityCreated,
	})
	if s.metrics != nil {
		s.metrics.CommunitiesCreated.Inc()
	}
	return community, nil
}

// JoinCommunity appends the user to the community's member set and returns
// the updated member count. Membership never shrinks.
func (s *Service) JoinCommunity(ctx context.Context, communityID id.CommunityID, userID id.UserID) (int, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	count, err := s.communities.AddMember(ctx, communityID, userID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return 0, ErrCommunityNotFound
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return 0, ErrAlreadyMember
		default:
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to join community")
		}
	}
	s.emit(ctx, audit.Event{
		UserID:  userID,
		Subject: communityID.String(),
		Action:  audit.ActionCommunityJoined,
	})
	if s.metrics != nil {
		s.metrics.CommunityJoins.Inc()
	}
	return count, nil
}

// GetCommunity loads a community with its members.
func (s *Service) GetCommunity(ctx context.Context, communityID id.CommunityID) (*models.Community, error) {
	community, err := s.communities.FindByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrCommunityNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load community")
	}
	return community, nil
}

// ListCommunities returns all communities, newest first.
func (s *Service) ListCommunities(ctx context.Context) ([]*models.Community, error) {
	communities, err := s.communities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list communities")
	}
	return communities, nil
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
