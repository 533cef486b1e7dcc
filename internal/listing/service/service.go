package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	listingmetrics "rently/internal/listing/metrics"
	"rently/internal/listing/models"
	usermodels "rently/internal/user/models"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
	audit "rently/pkg/platform/audit"
	"rently/pkg/platform/sentinel"
	"rently/pkg/requestcontext"
)

// Failure kinds callers can test with errors.Is. AlreadyRented is the one
// race outcome that must stay distinguishable from generic conflicts: it
// tells the loser the listing was won by someone else, not that they sent a
// bad request.
var (
	ErrListingNotFound = dErrors.New(dErrors.CodeNotFound, "listing not found")
	ErrRenterNotFound  = dErrors.New(dErrors.CodeNotFound, "renter not found")
	ErrUserNotFound    = dErrors.New(dErrors.CodeNotFound, "user not found")
	ErrAlreadyRented   = dErrors.New(dErrors.CodeConflict, "listing was already rented")
)

// HistoryAppendError reports a confirmed availability flip whose history
// append did not commit. The flip is never rolled back; callers compensate by
// retrying the append with the embedded record.
type HistoryAppendError struct {
	ListingID id.ListingID
	Record    models.RentRecord
	Err       error
}

func (e *HistoryAppendError) Error() string {
	return fmt.Sprintf("rent confirmed for listing %s but history append failed: %v", e.ListingID, e.Err)
}

func (e *HistoryAppendError) Unwrap() error { return e.Err }

// ListingStore is the ledger contract for listing records. MarkRented is the
// conditional write: it commits only if the listing is still available.
type ListingStore interface {
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	ListAvailable(ctx context.Context) ([]*models.Listing, error)
	SearchAvailable(ctx context.Context, title string) ([]*models.Listing, error)
	ListAvailableByOwners(ctx context.Context, owners []id.UserID) ([]*models.Listing, error)
	MarkRented(ctx context.Context, listingID id.ListingID) (*models.Listing, error)
	Delete(ctx context.Context, listingID id.ListingID) error
}

// HistoryStore is the append-only rent ledger per renter.
type HistoryStore interface {
	Append(ctx context.Context, renterID id.UserID, record models.RentRecord) error
	ListByUser(ctx context.Context, renterID id.UserID) ([]models.RentRecord, error)
}

// UserReader resolves renters and owners without giving this manager write
// access to user records.
type UserReader interface {
	FindByID(ctx context.Context, userID id.UserID) (*usermodels.User, error)
}

// TrustedUsers lists the directed community relation of a user. Implemented
// by the trust graph's edge store; wired at composition so managers stay
// decoupled from each other.
type TrustedUsers interface {
	ListTrusted(ctx context.Context, userID id.UserID) ([]id.UserID, error)
}

// BrowseCache is the optional read-side cache for the available-listings
// feed. A nil cache disables caching.
type BrowseCache interface {
	GetAvailable(ctx context.Context) ([]*models.Listing, bool)
	SetAvailable(ctx context.Context, listings []*models.Listing)
	Invalidate(ctx context.Context)
}

// Service owns the listing availability state machine and the rent-history
// ledger.
type Service struct {
	listings ListingStore
	history  HistoryStore
	users    UserReader
	trusted  TrustedUsers
	cache    BrowseCache
	logger   *slog.Logger
	auditor  audit.Publisher
	metrics  *listingmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithMetrics(m *listingmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithBrowseCache(cache BrowseCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithTrustedUsers(trusted TrustedUsers) Option {
	return func(s *Service) { s.trusted = trusted }
}

func New(listings ListingStore, history HistoryStore, users UserReader, opts ...Option) *Service {
	s := &Service{
		listings: listings,
		history:  history,
		users:    users,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateListingRequest carries the validated inputs for a new listing.
type CreateListingRequest struct {
	OwnerID       id.UserID
	Title         string
	Location      string
	ContactNumber string
	Bedrooms      int
	Bathrooms     int
	PriceCents    int64
}

func (s *Service) Create(ctx context.Context, req CreateListingRequest) (*models.Listing, error) {
	owner, err := s.users.FindByID(ctx, req.OwnerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owner")
	}

	listing, err := models.NewListing(
		id.NewListingID(), owner.ID, owner.Name,
		req.Title, req.Location, req.ContactNumber,
		req.Bedrooms, req.Bathrooms, req.PriceCents,
		requestcontext.Now(ctx),
	)
	if err != nil {
		return nil, err
	}

	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create listing")
	}
	s.invalidateCache(ctx)
	s.emit(ctx, audit.Event{
		UserID:  owner.ID,
		Subject: listing.ID.String(),
		Action:  audit.ActionListingCreated,
	})
	if s.metrics != nil {
		s.metrics.ListingsCreated.Inc()
	}
	return listing, nil
}

func (s *Service) Get(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load listing")
	}
	return listing, nil
}

// Browse returns available listings, newest first, through the read cache.
func (s *Service) Browse(ctx context.Context) ([]*models.Listing, error) {
	if s.cache != nil {
		if listings, ok := s.cache.GetAvailable(ctx); ok {
			return listings, nil
		}
	}
	listings, err := s.listings.ListAvailable(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list available listings")
	}
	if s.cache != nil {
		s.cache.SetAvailable(ctx, listings)
	}
	return listings, nil
}

// Search returns available listings whose title contains the query,
// case-insensitively.
func (s *Service) Search(ctx context.Context, title string) ([]*models.Listing, error) {
	if title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "title query is required")
	}
	listings, err := s.listings.SearchAvailable(ctx, title)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search listings")
	}
	return listings, nil
}

// CommunityFeed returns available listings owned by users the caller trusts.
func (s *Service) CommunityFeed(ctx context.Context, userID id.UserID) ([]*models.Listing, error) {
	if s.trusted == nil {
		return nil, nil
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	owners, err := s.trusted.ListTrusted(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list trusted users")
	}
	if len(owners) == 0 {
		return nil, nil
	}
	listings, err := s.listings.ListAvailableByOwners(ctx, owners)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load community feed")
	}
	return listings, nil
}

// ConfirmRent flips the listing to rented and appends the snapshot to the
// renter's history.
//
// The availability flip is the linearization point: it is a conditional
// write that only one caller can win. The history append happens strictly
// after the flip; if it fails, the caller receives a partial failure carrying
// the committed listing id and the record to retry. The flip is never undone.
func (s *Service) ConfirmRent(ctx context.Context, listingID id.ListingID, renterID id.UserID) (*models.RentRecord, error) {
	if _, err := s.users.FindByID(ctx, renterID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrRenterNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load renter")
	}

	listing, err := s.listings.MarkRented(ctx, listingID)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, ErrListingNotFound
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			s.emit(ctx, audit.Event{
				UserID:   renterID,
				Subject:  listingID.String(),
				Action:   audit.ActionRentConflict,
				Decision: "lost_race",
			})
			if s.metrics != nil {
				s.metrics.RentConflicts.Inc()
			}
			return nil, ErrAlreadyRented
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark listing rented")
		}
	}

	record := listing.Snapshot(requestcontext.Now(ctx))
	if err := s.history.Append(ctx, renterID, record); err != nil {
		s.logger.ErrorContext(ctx, "history append failed after availability flip",
			"listing_id", listingID.String(),
			"renter_id", renterID.String(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(
			&HistoryAppendError{ListingID: listingID, Record: record, Err: err},
			dErrors.CodePartialFailure,
			"rent confirmed but history append failed",
		)
	}

	s.invalidateCache(ctx)
	s.emit(ctx, audit.Event{
		UserID:   renterID,
		Subject:  listingID.String(),
		Action:   audit.ActionRentConfirmed,
		Decision: "confirmed",
	})
	if s.metrics != nil {
		s.metrics.RentsConfirmed.Inc()
	}
	return &record, nil
}

// RetryHistoryAppend compensates a HistoryAppendError. It never touches the
// listing record.
func (s *Service) RetryHistoryAppend(ctx context.Context, renterID id.UserID, record models.RentRecord) error {
	if err := s.history.Append(ctx, renterID, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to append rent record")
	}
	return nil
}

// Delete removes a listing. Administrative; gated at the transport layer.
func (s *Service) Delete(ctx context.Context, listingID id.ListingID) error {
	if err := s.listings.Delete(ctx, listingID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ErrListingNotFound
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete listing")
	}
	s.invalidateCache(ctx)
	s.emit(ctx, audit.Event{
		Subject: listingID.String(),
		Action:  audit.ActionListingDeleted,
	})
	return nil
}

// RentHistory returns the renter's records in append order.
func (s *Service) RentHistory(ctx context.Context, renterID id.UserID) ([]models.RentRecord, error) {
	if _, err := s.users.FindByID(ctx, renterID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	records, err := s.history.ListByUser(ctx, renterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rent history")
	}
	return records, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
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
