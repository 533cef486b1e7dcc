package renthistory

import (
	"context"
	"database/sql"
	"fmt"

	"rently/internal/listing/models"
	id "rently/pkg/domain"
)

// Postgres stores rent history as append-only rows. There is deliberately no
// UPDATE or DELETE path in this store.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, userID id.UserID, record models.RentRecord) error {
	query := `
		INSERT INTO rent_history (user_id, listing_id, title, location, price_cents, rented_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.ExecContext(ctx, query,
		userID.String(), record.ListingID.String(),
		record.Title, record.Location, record.PriceCents, record.RentedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rent record: %w", err)
	}
	return nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]models.RentRecord, error) {
	query := `
		SELECT listing_id, title, location, price_cents, rented_at
		FROM rent_history
		WHERE user_id = $1
		ORDER BY rented_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query rent history: %w", err)
	}
	defer rows.Close()

	var records []models.RentRecord
	for rows.Next() {
		var (
			record models.RentRecord
			rawID  string
		)
		if err := rows.Scan(&rawID, &record.Title, &record.Location, &record.PriceCents, &record.RentedAt); err != nil {
			return nil, fmt.Errorf("scan rent record: %w", err)
		}
		if record.ListingID, err = id.ParseListingID(rawID); err != nil {
			return nil, fmt.Errorf("parse listing id: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
