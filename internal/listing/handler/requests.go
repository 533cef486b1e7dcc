package handler

import (
	"strings"

	dErrors "rently/pkg/domain-errors"
)

// CreateListingRequest is the HTTP request body for POST /listings.
type CreateListingRequest struct {
	Title         string `json:"title"`
	Location      string `json:"location"`
	Bedrooms      int    `json:"bedrooms"`
	Bathrooms     int    `json:"bathrooms"`
	ContactNumber string `json:"contact_number"`
	PriceCents    int64  `json:"price_cents"`
}

// Validate validates and normalizes the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateListingRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	// Size validation (fail fast)
	if len(r.Title) > 200 {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 200 characters")
	}
	if len(r.Location) > 200 {
		return dErrors.New(dErrors.CodeValidation, "location must be at most 200 characters")
	}
	if len(r.ContactNumber) > 32 {
		return dErrors.New(dErrors.CodeValidation, "contact_number must be at most 32 characters")
	}

	r.Title = strings.TrimSpace(r.Title)
	r.Location = strings.TrimSpace(r.Location)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	if r.Location == "" {
		return dErrors.New(dErrors.CodeValidation, "location is required")
	}
	if r.ContactNumber == "" {
		return dErrors.New(dErrors.CodeValidation, "contact_number is required")
	}
	return nil
}
