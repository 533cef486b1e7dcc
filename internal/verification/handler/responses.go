package handler

import (
	"time"

	"rently/internal/verification/models"
	verifyservice "rently/internal/verification/service"
)

// RequestResponse is the HTTP representation of a verification request.
type RequestResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	DocumentRef string     `json:"document_ref"`
	Status      string     `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// StatusResponse is the HTTP representation of a user's verification summary.
type StatusResponse struct {
	Verified     bool   `json:"verified"`
	HasRequest   bool   `json:"has_request"`
	LatestStatus string `json:"latest_status,omitempty"`
}

// FromRequest converts a domain verification request to its HTTP response.
func FromRequest(request *models.VerificationRequest) RequestResponse {
	return RequestResponse{
		ID:          request.ID.String(),
		UserID:      request.UserID.String(),
		DocumentRef: request.DocumentRef,
		Status:      string(request.Status),
		SubmittedAt: request.SubmittedAt,
		ReviewedAt:  request.ReviewedAt,
	}
}

// FromRequests converts a slice of requests, never returning nil.
func FromRequests(requests []*models.VerificationRequest) []RequestResponse {
	out := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		out = append(out, FromRequest(request))
	}
	return out
}

// FromStatus converts a domain status summary to its HTTP response.
func FromStatus(status *verifyservice.UserStatus) StatusResponse {
	return StatusResponse{
		Verified:     status.Verified,
		HasRequest:   status.HasRequest,
		LatestStatus: string(status.LatestStatus),
	}
}
