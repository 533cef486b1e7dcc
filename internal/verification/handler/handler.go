package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rently/internal/platform/middleware"
	"rently/internal/verification/models"
	verifyservice "rently/internal/verification/service"
	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
	"rently/pkg/platform/httputil"
	"rently/pkg/requestcontext"
)

// Handler wires verification endpoints to the verification service.
type Handler struct {
	service        *verifyservice.Service
	logger         *slog.Logger
	jwtValidator   middleware.JWTValidator
	adminTokenHash string
}

// New constructs a verification handler with its dependencies.
func New(service *verifyservice.Service, logger *slog.Logger, jwtValidator middleware.JWTValidator, adminTokenHash string) *Handler {
	return &Handler{
		service:        service,
		logger:         logger,
		jwtValidator:   jwtValidator,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts verification endpoints on the router. Submission and status
// are user-facing; review and deletion are admin-only.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/verification", h.HandleSubmit)
		r.Get("/verification/status", h.HandleStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.adminTokenHash, h.logger))
		r.Get("/verification/pending", h.HandleListPending)
		r.Post("/verification/{requestID}/approve", h.HandleApprove)
		r.Post("/verification/{requestID}/reject", h.HandleReject)
		r.Delete("/verification/{requestID}", h.HandleDelete)
	})
}

// HandleSubmit handles POST /verification requests.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	request, err := h.service.Submit(ctx, userID, req.DocumentRef)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to submit verification request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromRequest(request))
}

// HandleStatus handles GET /verification/status requests.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := requestcontext.UserID(ctx)
	if userID.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	status, err := h.service.Status(ctx, userID)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to load verification status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromStatus(status))
}

// HandleListPending handles GET /verification/pending requests.
func (h *Handler) HandleListPending(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pending, err := h.service.ListPending(ctx)
	if err != nil {
		h.writeServiceError(ctx, w, "failed to list pending requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequests(pending))
}

// HandleApprove handles POST /verification/{requestID}/approve requests.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Approve, "failed to approve verification request")
}

// HandleReject handles POST /verification/{requestID}/reject requests.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.service.Reject, "failed to reject verification request")
}

func (h *Handler) review(w http.ResponseWriter, r *http.Request, reviewFn func(context.Context, id.RequestID) (*models.VerificationRequest, error), msg string) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := reviewFn(ctx, requestID)
	if err != nil {
		h.writeServiceError(ctx, w, msg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(request))
}

// HandleDelete handles DELETE /verification/{requestID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, requestID); err != nil {
		h.writeServiceError(ctx, w, "failed to delete verification request", err)
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
