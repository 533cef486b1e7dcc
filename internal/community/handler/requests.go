package handler

import (
	"strings"

	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
)

// AddTrustRequest is the HTTP request body for POST /community/trust.
type AddTrustRequest struct {
	UserID string `json:"user_id"`

	// Parsed values (populated by Validate)
	parsedUserID id.UserID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AddTrustRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return dErrors.New(dErrors.CodeValidation, "user_id is required")
	}
	userID, err := id.ParseUserID(r.UserID)
	if err != nil {
		return err
	}
	r.parsedUserID = userID
	return nil
}

// ParsedUserID returns the parsed target user id.
func (r *AddTrustRequest) ParsedUserID() id.UserID { return r.parsedUserID }

// CreateCommunityRequest is the HTTP request body for POST /communities.
type CreateCommunityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate validates the request. Name is trimmed but compared
// case-sensitively downstream.
func (r *CreateCommunityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 100 characters")
	}
	if len(r.Description) > 500 {
		return dErrors.New(dErrors.CodeValidation, "description must be at most 500 characters")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}
