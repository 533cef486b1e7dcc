package handler

import (
	"time"

	"rently/internal/listing/models"
)

// ListingResponse is the HTTP representation of a listing.
type ListingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Location      string    `json:"location"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	ContactNumber string    `json:"contact_number"`
	PriceCents    int64     `json:"price_cents"`
	OwnerID       string    `json:"owner_id"`
	OwnerName     string    `json:"owner_name"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"created_at"`
}

// RentRecordResponse is the HTTP representation of a rent history entry.
type RentRecordResponse struct {
	ListingID  string    `json:"listing_id"`
	Title      string    `json:"title"`
	Location   string    `json:"location"`
	PriceCents int64     `json:"price_cents"`
	RentedAt   time.Time `json:"rented_at"`
}

// FromListing converts a domain listing to its HTTP response.
func FromListing(listing *models.Listing) *ListingResponse {
	return &ListingResponse{
		ID:            listing.ID.String(),
		Title:         listing.Title,
		Location:      listing.Location,
		Bedrooms:      listing.Bedrooms,
		Bathrooms:     listing.Bathrooms,
		ContactNumber: listing.ContactNumber,
		PriceCents:    listing.PriceCents,
		OwnerID:       listing.OwnerID.String(),
		OwnerName:     listing.OwnerName,
		Available:     listing.Available,
		CreatedAt:     listing.CreatedAt,
	}
}

// FromListings converts a slice of domain listings, never returning nil so
// empty feeds encode as [].
func FromListings(listings []*models.Listing) []*ListingResponse {
	out := make([]*ListingResponse, 0, len(listings))
	for _, listing := range listings {
		out = append(out, FromListing(listing))
	}
	return out
}

// FromRentRecords converts rent history entries in append order.
func FromRentRecords(records []models.RentRecord) []RentRecordResponse {
	out := make([]RentRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, RentRecordResponse{
			ListingID:  record.ListingID.String(),
			Title:      record.Title,
			Location:   record.Location,
			PriceCents: record.PriceCents,
			RentedAt:   record.RentedAt,
		})
	}
	return out
}
