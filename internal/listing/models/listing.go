package models

import (
	"strings"
	"time"

	id "rently/pkg/domain"
	dErrors "rently/pkg/domain-errors"
)

// Listing is the aggregate root for a rental post.
//
// Invariants:
//   - Available is monotonic: it starts true and flips to false exactly once,
//     never back. The flip is a conditional write in the store, not a field
//     assignment in the service.
//   - Title, Location and ContactNumber are non-empty; counts are >= 1;
//     PriceCents is >= 0.
type Listing struct {
	ID            id.ListingID `json:"id"`
	Title         string       `json:"title"`
	Location      string       `json:"location"`
	Bedrooms      int          `json:"bedrooms"`
	Bathrooms     int          `json:"bathrooms"`
	ContactNumber string       `json:"contact_number"`
	PriceCents    int64        `json:"price_cents"`
	OwnerID       id.UserID    `json:"owner_id"`
	OwnerName     string       `json:"owner_name"`
	Available     bool         `json:"available"`
	CreatedAt     time.Time    `json:"created_at"`
}

// RentRecord is the immutable snapshot appended to a renter's history when a
// rent is confirmed. It deliberately copies listing fields so later listing
// deletion cannot rewrite history.
type RentRecord struct {
	ListingID  id.ListingID `json:"listing_id"`
	Title      string       `json:"title"`
	Location   string       `json:"location"`
	PriceCents int64        `json:"price_cents"`
	RentedAt   time.Time    `json:"rented_at"`
}

func NewListing(listingID id.ListingID, ownerID id.UserID, ownerName, title, location, contactNumber string, bedrooms, bathrooms int, priceCents int64, now time.Time) (*Listing, error) {
	title = strings.TrimSpace(title)
	location = strings.TrimSpace(location)
	contactNumber = strings.TrimSpace(contactNumber)
	switch {
	case title == "":
		return nil, dErrors.New(dErrors.CodeValidation, "title is required")
	case location == "":
		return nil, dErrors.New(dErrors.CodeValidation, "location is required")
	case contactNumber == "":
		return nil, dErrors.New(dErrors.CodeValidation, "contact number is required")
	case bedrooms < 1:
		return nil, dErrors.New(dErrors.CodeValidation, "bedroom count must be at least 1")
	case bathrooms < 1:
		return nil, dErrors.New(dErrors.CodeValidation, "bathroom count must be at least 1")
	case priceCents < 0:
		return nil, dErrors.New(dErrors.CodeValidation, "price must not be negative")
	}
	return &Listing{
		ID:            listingID,
		Title:         title,
		Location:      location,
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		ContactNumber: contactNumber,
		PriceCents:    priceCents,
		OwnerID:       ownerID,
		OwnerName:     ownerName,
		Available:     true,
		CreatedAt:     now,
	}, nil
}

// Snapshot builds the rent record for this listing at the given time.
func (l *Listing) Snapshot(rentedAt time.Time) RentRecord {
	return RentRecord{
		ListingID:  l.ID,
		Title:      l.Title,
		Location:   l.Location,
		PriceCents: l.PriceCents,
		RentedAt:   rentedAt,
	}
}
