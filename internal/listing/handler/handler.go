package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	listingservice "rently/internal/listing/service"
	"rently/internal/platform/middleware"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
	"rently/pkg/platform/httputil"
	"rently/pkg/requestcontext"
)

// Handler wires listing endpoints to the listing service.
type Handler struct {
	service        *listingservice.Service
	logger         *slog.Logger
	jwtValidator   middleware.JWTValidator
	adminTokenHash string
}

// New constructs a listing handler with its dependencies.
func New(service *listingservice.Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, adminTokenHash string) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		jwtValidator:   jwtValidator,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts listing endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/listings", h.HandleBrowse)
	r.Get("/listings/search", h.HandleSearch)
	r.Get("/listings/{listingID}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/listings", h.HandleCreate)
		r.Get("/listings/community", h.HandleCommunityFeed)
		r.Post("/listings/{listingID}/rent", h.HandleConfirmRent)
		r.Get("/me/rent-history", h.HandleRentHistory)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
		r.Delete("/listings/{listingID}", h.HandleDelete)
	})
}

// HandleCreate handles POST /listings requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateListingRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	listing, err := h.service.Create(ctx, listingservice.CreateListingRequest{
		OwnerID:       userID,
		Title:         req.Title,
		Location:      req.Location,
		ContactNumber: req.ContactNumber,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		PriceCents:    req.PriceCents,
	})
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromListing(listing))
}

// HandleBrowse handles GET /listings requests.
func (h *Handler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listings, err := h.service.Browse(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to browse listings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListings(listings))
}

// HandleSearch handles GET /listings/search?title= requests.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listings, err := h.service.Search(ctx, r.URL.Query().Get("title"))
	if err != nil {
		h.writeServiceError(ctx, w, "failed to search listings", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListings(listings))
}

// HandleCommunityFeed handles GET /listings/community requests.
func (h *Handler) HandleCommunityFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	listings, err := h.service.CommunityFeed(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load community feed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListings(listings))
}

// HandleGet handles GET /listings/{listingID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	listing, err := h.service.Get(ctx, listingID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load listing", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromListing(listing))
}

// HandleConfirmRent handles POST /listings/{listingID}/rent requests. The
// authenticated user is the renter; losers of the availability race receive a
// conflict.
func (h *Handler) HandleConfirmRent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.service.ConfirmRent(ctx, listingID, userID)
	if err != nil {
		if errors.Is(err, listingservice.ErrAlreadyRented) {
			httputil.WriteError(w, err)
			return
		}
		if dErrors.HasCode(err, dErrors.CodePartialFailure) {
			h.logger.ErrorContext(ctx, "rent confirmed but history append failed",
				"request_id", requestID,
				"listing_id", listingID.String(),
				"user_id", userID.String(),
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.writeServiceError(ctx, w, "failed to confirm rent", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RentRecordResponse{
		ListingID:  record.ListingID.String(),
		Title:      record.Title,
		Location:   record.Location,
		PriceCents: record.PriceCents,
		RentedAt:   record.RentedAt,
	})
}

// HandleRentHistory handles GET /me/rent-history requests.
func (h *Handler) HandleRentHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	records, err := h.service.RentHistory(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load rent history", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRentRecords(records))
}

// HandleDelete handles DELETE /listings/{listingID} requests. Admin only.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID, err := id.ParseListingID(chi.URLParam(r, "listingID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, listingID); err != nil {
		h.writeServiceError(ctx, w, "failed to delete listing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
