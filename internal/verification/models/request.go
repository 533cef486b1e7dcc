package models

import (
	"strings"
	"time"

	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
)

// Status is the review state of a verification request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus validates a stored status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown verification status")
	}
}

// VerificationRequest is a user's pending or reviewed identity check.
//
// Invariants:
//   - At most one pending request per user; the store enforces it with a
//     conditional insert.
//   - Status only moves pending to approved or pending to rejected, via a
//     conditional update. Reviewed requests never change again.
type VerificationRequest struct {
	ID          id.RequestID `json:"id"`
	UserID      id.UserID    `json:"user_id"`
	DocumentRef string       `json:"document_ref"`
	Status      Status       `json:"status"`
	SubmittedAt time.Time    `json:"submitted_at"`
	ReviewedAt  *time.Time   `json:"reviewed_at,omitempty"`
}

func NewVerificationRequest(requestID id.RequestID, userID id.UserID, documentRef string, now time.Time) (*VerificationRequest, error) {
	documentRef = strings.TrimSpace(documentRef)
	if documentRef == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "document reference is required")
	}
	if len(documentRef) > 500 {
		return nil, dErrors.New(dErrors.CodeValidation, "document reference must be at most 500 characters")
	}
	return &VerificationRequest{
		ID:          requestID,
		UserID:      userID,
		DocumentRef: documentRef,
		Status:      StatusPending,
		SubmittedAt: now,
	}, nil
}
