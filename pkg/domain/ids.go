// Package domain holds the typed identifiers shared across the engine.
//
// Each entity gets its own UUID-backed type so a ListingID can never be
// passed where a UserID is expected. Parse functions enforce the invariant
// that IDs arriving from the outside are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "rently/pkg/domain-errors"
)

// UserID identifies a registered user.
type UserID uuid.UUID

// ListingID identifies a rental listing.
type ListingID uuid.UUID

// CommunityID identifies a named community entity.
type CommunityID uuid.UUID

// RequestID identifies a verification request.
type RequestID uuid.UUID

func (id UserID) String() string      { return uuid.UUID(id).String() }
func (id ListingID) String() string   { return uuid.UUID(id).String() }
func (id CommunityID) String() string { return uuid.UUID(id).String() }
func (id RequestID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ListingID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CommunityID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id RequestID) IsZero() bool   { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the types JSON-friendly: IDs travel as their
// canonical string form, not as raw UUID bytes.

func (id UserID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id ListingID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id CommunityID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id RequestID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := ParseUserID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ListingID) UnmarshalText(text []byte) error {
	parsed, err := ParseListingID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *CommunityID) UnmarshalText(text []byte) error {
	parsed, err := ParseCommunityID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *RequestID) UnmarshalText(text []byte) error {
	parsed, err := ParseRequestID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewListingID returns a fresh random ListingID.
func NewListingID() ListingID { return ListingID(uuid.New()) }

// NewCommunityID returns a fresh random CommunityID.
func NewCommunityID() CommunityID { return CommunityID(uuid.New()) }

// NewRequestID returns a fresh random RequestID.
func NewRequestID() RequestID { return RequestID(uuid.New()) }

// ParseUserID parses and validates a user ID from its string form.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseListingID parses and validates a listing ID from its string form.
func ParseListingID(s string) (ListingID, error) {
	u, err := parseUUID(s, "listing id")
	return ListingID(u), err
}

// ParseCommunityID parses and validates a community ID from its string form.
func ParseCommunityID(s string) (CommunityID, error) {
	u, err := parseUUID(s, "community id")
	return CommunityID(u), err
}

// ParseRequestID parses and validates a verification request ID from its string form.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID(s, "request id")
	return RequestID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return u, nil
}
