package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rently/internal/listing/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const listingColumns = `id, title, location, bedrooms, bathrooms, contact_number, price_cents, owner_id, owner_name, available, created_at`

func (s *Postgres) Create(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.db.ExecContext(ctx, query,
		listing.ID.String(), listing.Title, listing.Location,
		listing.Bedrooms, listing.Bathrooms, listing.ContactNumber,
		listing.PriceCents, listing.OwnerID.String(), listing.OwnerName,
		listing.Available, listing.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, listingID.String()))
}

func (s *Postgres) ListAvailable(ctx context.Context) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + ` FROM listings
		WHERE available
		ORDER BY created_at DESC`
	return s.scanMany(ctx, query)
}

func (s *Postgres) SearchAvailable(ctx context.Context, title string) ([]*models.Listing, error) {
	query := `
		SELECT ` + listingColumns + ` FROM listings
		WHERE available AND title ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC`
	return s.scanMany(ctx, query, title)
}

func (s *Postgres) ListAvailableByOwners(ctx context.Context, owners []id.UserID) ([]*models.Listing, error) {
	ownerIDs := make([]string, 0, len(owners))
	for _, owner := range owners {
		ownerIDs = append(ownerIDs, owner.String())
	}
	query := `
		SELECT ` + listingColumns + ` FROM listings
		WHERE available AND owner_id = ANY($1)
		ORDER BY created_at DESC`
	return s.scanMany(ctx, query, pq.Array(ownerIDs))
}

// MarkRented flips available to false only when it is still true. The
// RETURNING row is the winner's snapshot; zero rows means either the listing
// is gone or someone else already won, so we look again to tell them apart.
func (s *Postgres) MarkRented(ctx context.Context, listingID id.ListingID) (*models.Listing, error) {
	query := `
		UPDATE listings SET available = FALSE
		WHERE id = $1 AND available
		RETURNING ` + listingColumns
	listing, err := s.scanOne(s.db.QueryRowContext(ctx, query, listingID.String()))
	if err == nil {
		return listing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	if _, err := s.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return nil, sentinel.ErrAlreadyUsed
}

func (s *Postgres) Delete(ctx context.Context, listingID id.ListingID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, listingID.String())
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete listing rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanMany(ctx context.Context, query string, args ...any) ([]*models.Listing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var result []*models.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Postgres) scanOne(row *sql.Row) (*models.Listing, error) {
	listing, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return listing, err
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var (
		listing           models.Listing
		rawID, rawOwnerID string
	)
	err := row.Scan(&rawID, &listing.Title, &listing.Location,
		&listing.Bedrooms, &listing.Bathrooms, &listing.ContactNumber,
		&listing.PriceCents, &rawOwnerID, &listing.OwnerName,
		&listing.Available, &listing.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	if listing.ID, err = id.ParseListingID(rawID); err != nil {
		return nil, fmt.Errorf("parse listing id: %w", err)
	}
	if listing.OwnerID, err = id.ParseUserID(rawOwnerID); err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	return &listing, nil
}
