package handler

import (
	"time"

	"rently/internal/community/models"
	usermodels "rently/internal/user/models"
)

// MemberResponse is the HTTP representation of a trusted user.
type MemberResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
}

// CommunityResponse is the HTTP representation of a community.
type CommunityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   string    `json:"creator_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// JoinResponse reports the member count after a successful join.
type JoinResponse struct {
	CommunityID string `json:"community_id"`
	MemberCount int    `json:"member_count"`
}

// FromUsers converts trusted users to member responses, never returning nil.
func FromUsers(users []*usermodels.User) []MemberResponse {
	out := make([]MemberResponse, 0, len(users))
	for _, user := range users {
		out = append(out, MemberResponse{
			ID:       user.ID.String(),
			Name:     user.Name,
			Verified: user.Verified,
		})
	}
	return out
}

// FromCommunity converts a domain community to its HTTP response.
func FromCommunity(community *models.Community) CommunityResponse {
	return CommunityResponse{
		ID:          community.ID.String(),
		Name:        community.Name,
		Description: community.Description,
		CreatorID:   community.CreatorID.String(),
		MemberCount: len(community.Members),
		CreatedAt:   community.CreatedAt,
	}
}

// FromCommunities converts a slice of communities, never returning nil.
func FromCommunities(communities []*models.Community) []CommunityResponse {
	out := make([]CommunityResponse, 0, len(communities))
	for _, community := range communities {
		out = append(out, FromCommunity(community))
	}
	return out
}
