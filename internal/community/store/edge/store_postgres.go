package edge

import (
	"context"
	"database/sql"
	"fmt"

	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Add inserts the edge. ON CONFLICT DO NOTHING plus the rows-affected check
// makes the duplicate case race-free.
func (s *Postgres) Add(ctx context.Context, userID, trustedID id.UserID) error {
	query := `
		INSERT INTO community_edges (user_id, trusted_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, trusted_id) DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, userID.String(), trustedID.String())
	if err != nil {
		return fmt.Errorf("insert trust edge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert trust edge rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *Postgres) Remove(ctx context.Context, userID, trustedID id.UserID) error {
	query := `DELETE FROM community_edges WHERE user_id = $1 AND trusted_id = $2`
	result, err := s.db.ExecContext(ctx, query, userID.String(), trustedID.String())
	if err != nil {
		return fmt.Errorf("delete trust edge: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete trust edge rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListTrusted(ctx context.Context, userID id.UserID) ([]id.UserID, error) {
	query := `
		SELECT trusted_id FROM community_edges
		WHERE user_id = $1
		ORDER BY trusted_id`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("query trust edges: %w", err)
	}
	defer rows.Close()

	var trusted []id.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan trust edge: %w", err)
		}
		trustedID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse trusted id: %w", err)
		}
		trusted = append(trusted, trustedID)
	}
	return trusted, rows.Err()
}
