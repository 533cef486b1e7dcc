package models

import (
	"strings"
	"time"

	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
)

// Community is a named group of users.
//
// Invariants:
//   - Name is unique across communities, compared exactly (case-sensitive).
//   - Members is grow-only: users join, nobody leaves, and the creator is a
//     member from the start.
type Community struct {
	ID          id.CommunityID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	CreatorID   id.UserID      `json:"creator_id"`
	Members     []id.UserID    `json:"members"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewCommunity(communityID id.CommunityID, creatorID id.UserID, name, description string, now time.Time) (*Community, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "community name is required")
	}
	if len(name) > 100 {
		return nil, dErrors.New(dErrors.CodeValidation, "community name must be at most 100 characters")
	}
	if len(description) > 500 {
		return nil, dErrors.New(dErrors.CodeValidation, "community description must be at most 500 characters")
	}
	return &Community{
		ID:          communityID,
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
		Members:     []id.UserID{creatorID},
		CreatedAt:   now,
	}, nil
}

// IsMember reports whether the user is already in the community.
func (c *Community) IsMember(userID id.UserID) bool {
	for _, member := range c.Members {
		if member == userID {
			return true
		}
	}
	return false
}
