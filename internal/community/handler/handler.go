package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	communityservice "rently/internal/community/service"
	"rently/internal/platform/middleware"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
	"rently/pkg/platform/httputil"
	"rently/pkg/requestcontext"
)

// Handler wires trust graph endpoints to the community service.
type Handler struct {
	service      *communityservice.Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

// New constructs a community handler with its dependencies.
func New(service *communityservice.Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts community endpoints on the router. Everything here requires
// an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/community/trust", h.HandleAddTrust)
		r.Delete("/community/trust/{userID}", h.HandleRemoveTrust)
		r.Get("/community/trust", h.HandleListTrusted)
		r.Post("/communities", h.HandleCreateCommunity)
		r.Get("/communities", h.HandleListCommunities)
		r.Get("/communities/{communityID}", h.HandleGetCommunity)
		r.Post("/communities/{communityID}/join", h.HandleJoinCommunity)
	})
}

// HandleAddTrust handles POST /community/trust requests.
func (h *Handler) HandleAddTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[AddTrustRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.service.AddToCommunity(ctx, userID, req.ParsedUserID()); err != nil {
		h.writeServiceError(ctx, w, "failed to add trust edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveTrust handles DELETE /community/trust/{userID} requests.
// Removing an absent edge succeeds.
func (h *Handler) HandleRemoveTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	targetID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.RemoveFromCommunity(ctx, userID, targetID); err != nil {
		h.writeServiceError(ctx, w, "failed to remove trust edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListTrusted handles GET /community/trust requests.
func (h *Handler) HandleListTrusted(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	users, err := h.service.ListCommunity(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list trusted users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromUsers(users))
}

// HandleCreateCommunity handles POST /communities requests.
func (h *Handler) HandleCreateCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateCommunityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	community, err := h.service.CreateCommunity(ctx, userID, req.Name, req.Description)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to create community", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromCommunity(community))
}

// HandleListCommunities handles GET /communities requests.
func (h *Handler) HandleListCommunities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	communities, err := h.service.ListCommunities(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list communities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCommunities(communities))
}

// HandleGetCommunity handles GET /communities/{communityID} requests.
func (h *Handler) HandleGetCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	communityID, err := id.ParseCommunityID(chi.URLParam(r, "communityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	community, err := h.service.GetCommunity(ctx, communityID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load community", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCommunity(community))
}

// HandleJoinCommunity handles POST /communities/{communityID}/join requests.
func (h *Handler) HandleJoinCommunity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.requireUser(ctx, w)
	if !ok {
		return
	}

	communityID, err := id.ParseCommunityID(chi.URLParam(r, "communityID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	count, err := h.service.JoinCommunity(ctx, communityID, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to join community", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, JoinResponse{
		CommunityID: communityID.String(),
		MemberCount: count,
	})
}

func (h *Handler) requireUser(ctx context.Context, w http.ResponseWriter) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
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
