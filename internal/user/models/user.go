package models

import (
	"strings"
	"time"

	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
)

// User is the engine's view of a registered account. Registration itself
// happens upstream; the engine only ever flips Verified and reads identity
// fields. Rent history and the directed trust relation live in their own
// stores so no two managers write the same record.
type User struct {
	ID        id.UserID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUser(userID id.UserID, name, email string, now time.Time) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "user name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	return &User{
		ID:        userID,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}, nil
}
