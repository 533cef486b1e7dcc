package handler

import (
	"strings"

	dErrors "rently/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /verification.
type SubmitRequest struct {
	DocumentRef string `json:"document_ref"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.DocumentRef) > 500 {
		return dErrors.New(dErrors.CodeValidation, "document_ref must be at most 500 characters")
	}
	r.DocumentRef = strings.TrimSpace(r.DocumentRef)
	if r.DocumentRef == "" {
		return dErrors.New(dErrors.CodeValidation, "document_ref is required")
	}
	return nil
}
