// Package engine composes the three domain managers behind one API. The
// managers never call each other; anything cross-domain is wired here at
// construction time (the listing manager's trusted-users view, for example,
// is the community edge store).
package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	communitymodels "rently/internal/community/models"
	communityservice "rently/internal/community/service"
	listingmodels "rently/internal/listing/models"
	listingservice "rently/internal/listing/service"
	usermodels "rently/internal/user/models"
	verificationmodels "rently/internal/verification/models"
	verifyservice "rently/internal/verification/service"
	id "rently/pkg/domain"
)

const tracerName = "rently/internal/engine"

// Engine is the façade over the listing, community and verification
// managers. Every operation opens a span; error kinds from the managers pass
// through unchanged.
type Engine struct {
	listings      *listingservice.Service
	communities   *communityservice.Service
	verifications *verifyservice.Service
	tracer        trace.Tracer
}

func New(listings *listingservice.Service, communities *communityservice.Service, verifications *verifyservice.Service) *Engine {
	return &Engine{
		listings:      listings,
		communities:   communities,
		verifications: verifications,
		tracer:        otel.Tracer(tracerName),
	}
}

// Listings exposes the listing manager for transport wiring.
func (e *Engine) Listings() *listingservice.Service { return e.listings }

// Communities exposes the community manager for transport wiring.
func (e *Engine) Communities() *communityservice.Service { return e.communities }

// Verifications exposes the verification manager for transport wiring.
func (e *Engine) Verifications() *verifyservice.Service { return e.verifications }

// CreateListing posts a new listing for the owner.
func (e *Engine) CreateListing(ctx context.Context, req listingservice.CreateListingRequest) (*listingmodels.Listing, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CreateListing",
		trace.WithAttributes(attribute.String("owner_id", req.OwnerID.String())))
	defer span.End()
	listing, err := e.listings.Create(ctx, req)
	return listing, e.record(span, err)
}

// GetListing loads one listing.
func (e *Engine) GetListing(ctx context.Context, listingID id.ListingID) (*listingmodels.Listing, error) {
	ctx, span := e.tracer.Start(ctx, "engine.GetListing")
	defer span.End()
	listing, err := e.listings.Get(ctx, listingID)
	return listing, e.record(span, err)
}

// BrowseListings returns the available feed, newest first.
func (e *Engine) BrowseListings(ctx context.Context) ([]*listingmodels.Listing, error) {
	ctx, span := e.tracer.Start(ctx, "engine.BrowseListings")
	defer span.End()
	listings, err := e.listings.Browse(ctx)
	return listings, e.record(span, err)
}

// SearchListings filters the available feed by title.
func (e *Engine) SearchListings(ctx context.Context, title string) ([]*listingmodels.Listing, error) {
	ctx, span := e.tracer.Start(ctx, "engine.SearchListings")
	defer span.End()
	listings, err := e.listings.Search(ctx, title)
	return listings, e.record(span, err)
}

// CommunityFeed returns available listings owned by users the caller trusts.
func (e *Engine) CommunityFeed(ctx context.Context, userID id.UserID) ([]*listingmodels.Listing, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CommunityFeed",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()
	listings, err := e.listings.CommunityFeed(ctx, userID)
	return listings, e.record(span, err)
}

// ConfirmRent runs the rent confirmation state machine. Exactly one caller
// per listing ever gets a nil error.
func (e *Engine) ConfirmRent(ctx context.Context, listingID id.ListingID, renterID id.UserID) (*listingmodels.RentRecord, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ConfirmRent",
		trace.WithAttributes(
			attribute.String("listing_id", listingID.String()),
			attribute.String("renter_id", renterID.String()),
		))
	defer span.End()
	record, err := e.listings.ConfirmRent(ctx, listingID, renterID)
	return record, e.record(span, err)
}

// DeleteListing removes a listing. Rent history keeps its snapshots.
func (e *Engine) DeleteListing(ctx context.Context, listingID id.ListingID) error {
	ctx, span := e.tracer.Start(ctx, "engine.DeleteListing")
	defer span.End()
	return e.record(span, e.listings.Delete(ctx, listingID))
}

// RentHistory returns the renter's records in append order.
func (e *Engine) RentHistory(ctx context.Context, renterID id.UserID) ([]listingmodels.RentRecord, error) {
	ctx, span := e.tracer.Start(ctx, "engine.RentHistory")
	defer span.End()
	records, err := e.listings.RentHistory(ctx, renterID)
	return records, e.record(span, err)
}

// AddToCommunity adds a directed trust edge.
func (e *Engine) AddToCommunity(ctx context.Context, userID, targetID id.UserID) error {
	ctx, span := e.tracer.Start(ctx, "engine.AddToCommunity")
	defer span.End()
	return e.record(span, e.communities.AddToCommunity(ctx, userID, targetID))
}

// RemoveFromCommunity removes a directed trust edge, tolerating absence.
func (e *Engine) RemoveFromCommunity(ctx context.Context, userID, targetID id.UserID) error {
	ctx, span := e.tracer.Start(ctx, "engine.RemoveFromCommunity")
	defer span.End()
	return e.record(span, e.communities.RemoveFromCommunity(ctx, userID, targetID))
}

// ListCommunity resolves the caller's trusted users.
func (e *Engine) ListCommunity(ctx context.Context, userID id.UserID) ([]*usermodels.User, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ListCommunity")
	defer span.End()
	users, err := e.communities.ListCommunity(ctx, userID)
	return users, e.record(span, err)
}

// CreateCommunity creates a named community.
func (e *Engine) CreateCommunity(ctx context.Context, creatorID id.UserID, name, description string) (*communitymodels.Community, error) {
	ctx, span := e.tracer.Start(ctx, "engine.CreateCommunity")
	defer span.End()
	community, err := e.communities.CreateCommunity(ctx, creatorID, name, description)
	return community, e.record(span, err)
}

// JoinCommunity adds a member and returns the updated count.
func (e *Engine) JoinCommunity(ctx context.Context, communityID id.CommunityID, userID id.UserID) (int, error) {
	ctx, span := e.tracer.Start(ctx, "engine.JoinCommunity")
	defer span.End()
	count, err := e.communities.JoinCommunity(ctx, communityID, userID)
	return count, e.record(span, err)
}

// ListCommunities returns all communities, newest first.
func (e *Engine) ListCommunities(ctx context.Context) ([]*communitymodels.Community, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ListCommunities")
	defer span.End()
	communities, err := e.communities.ListCommunities(ctx)
	return communities, e.record(span, err)
}

// SubmitVerification files a pending verification request.
func (e *Engine) SubmitVerification(ctx context.Context, userID id.UserID, documentRef string) (*verificationmodels.VerificationRequest, error) {
	ctx, span := e.tracer.Start(ctx, "engine.SubmitVerification",
		trace.WithAttributes(attribute.String("user_id", userID.String())))
	defer span.End()
	request, err := e.verifications.Submit(ctx, userID, documentRef)
	return request, e.record(span, err)
}

// ApproveVerification approves a pending request and marks the user verified.
func (e *Engine) ApproveVerification(ctx context.Context, requestID id.RequestID) (*verificationmodels.VerificationRequest, error) {
	ctx, span := e.tracer.Start(ctx, "engine.ApproveVerification")
	defer span.End()
	request, err := e.verifications.Approve(ctx, requestID)
	return request, e.record(span, err)
}

// RejectVerification rejects a pending request.
func (e *Engine) RejectVerification(ctx context.Context, requestID id.RequestID) (*verificationmodels.VerificationRequest, error) {
	ctx, span := e.tracer.Start(ctx, "engine.RejectVerification")
	defer span.End()
	request, err := e.verifications.Reject(ctx, requestID)
	return request, e.record(span, err)
}

// DeleteVerification removes a request regardless of status.
func (e *Engine) DeleteVerification(ctx context.Context, requestID id.RequestID) error {
	ctx, span := e.tracer.Start(ctx, "engine.DeleteVerification")
	defer span.End()
	return e.record(span, e.verifications.Delete(ctx, requestID))
}

// VerificationStatus summarizes a user's verification state.
func (e *Engine) VerificationStatus(ctx context.Context, userID id.UserID) (*verifyservice.UserStatus, error) {
	ctx, span := e.tracer.Start(ctx, "engine.VerificationStatus")
	defer span.End()
	status, err := e.verifications.Status(ctx, userID)
	return status, e.record(span, err)
}

func (e *Engine) record(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
	}
	return err
}
