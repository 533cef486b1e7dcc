package audit

import (
	"context"
	"time"

	id "rently/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp    time.Time `json:"timestamp"`
	UserID       id.UserID `json:"user_id"`
	Subject      string    `json:"subject"`
	Action       Action    `json:"action"`
	Decision     string    `json:"decision,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	ClientIP     string    `json:"client_ip,omitempty"`
	DeviceFamily string    `json:"device_family,omitempty"`
}

// Action names an audited state change.
type Action string

const (
	// Listing lifecycle
	ActionListingCreated Action = "listing_created"
	ActionListingDeleted Action = "listing_deleted"
	ActionRentConfirmed  Action = "rent_confirmed"
	ActionRentConflict   Action = "rent_conflict"

	// Trust graph
	ActionTrustAdded       Action = "trust_added"
	ActionTrustRemoved     Action = "trust_removed"
	ActionCommunityCreated Action = "community_created"
	ActionCommunityJoined  Action = "community_joined"

	// Verification workflow
	ActionVerificationSubmitted Action = "verification_submitted"
	ActionVerificationApproved  Action = "verification_approved"
	ActionVerificationRejected  Action = "verification_rejected"
	ActionVerificationDeleted   Action = "verification_deleted"
)

// Store persists audit events append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}

// Publisher is the emission side consumed by domain services.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
