package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"rently/internal/verification/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// Postgres stores verification requests. A partial unique index on
// (user_id) WHERE status = 'pending' enforces the one-pending-per-user rule
// at the database, so CreateIfNonePending stays race-free.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const requestColumns = `id, user_id, document_ref, status, submitted_at, reviewed_at`

func (s *Postgres) CreateIfNonePending(ctx context.Context, request *models.VerificationRequest) error {
	query := `
		INSERT INTO verification_requests (id, user_id, document_ref, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := s.db.ExecContext(ctx, query,
		request.ID.String(), request.UserID.String(),
		request.DocumentRef, string(request.Status), request.SubmittedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert verification request: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, requestID id.RequestID) (*models.VerificationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM verification_requests WHERE id = $1`
	return scanRequest(s.db.QueryRowContext(ctx, query, requestID.String()))
}

// UpdateStatusIfPending moves the request out of pending. Zero rows affected
// means the request is missing or already reviewed; a follow-up read tells
// them apart.
func (s *Postgres) UpdateStatusIfPending(ctx context.Context, requestID id.RequestID, status models.Status, reviewedAt time.Time) (*models.VerificationRequest, error) {
	query := `
		UPDATE verification_requests
		SET status = $2, reviewed_at = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + requestColumns
	request, err := scanRequest(s.db.QueryRowContext(ctx, query, requestID.String(), string(status), reviewedAt))
	if err == nil {
		return request, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}
	if _, err := s.FindByID(ctx, requestID); err != nil {
		return nil, err
	}
	return nil, sentinel.ErrInvalidState
}

func (s *Postgres) Delete(ctx context.Context, requestID id.RequestID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_requests WHERE id = $1`, requestID.String())
	if err != nil {
		return fmt.Errorf("delete verification request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete verification request rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) LatestByUser(ctx context.Context, userID id.UserID) (*models.VerificationRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM verification_requests
		WHERE user_id = $1
		ORDER BY submitted_at DESC
		LIMIT 1`
	return scanRequest(s.db.QueryRowContext(ctx, query, userID.String()))
}

func (s *Postgres) ListPending(ctx context.Context) ([]*models.VerificationRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM verification_requests
		WHERE status = 'pending'
		ORDER BY submitted_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query pending requests: %w", err)
	}
	defer rows.Close()

	var pending []*models.VerificationRequest
	for rows.Next() {
		request, err := scanRequestRow(rows)
		if err != nil {
			return nil, err
		}
		pending = append(pending, request)
	}
	return pending, rows.Err()
}

func scanRequest(row *sql.Row) (*models.VerificationRequest, error) {
	request, err := scanRequestRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return request, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequestRow(row rowScanner) (*models.VerificationRequest, error) {
	var (
		request          models.VerificationRequest
		rawID, rawUserID string
		rawStatus        string
		reviewedAt       sql.NullTime
	)
	err := row.Scan(&rawID, &rawUserID, &request.DocumentRef, &rawStatus, &request.SubmittedAt, &reviewedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan verification request: %w", err)
	}
	if request.ID, err = id.ParseRequestID(rawID); err != nil {
		return nil, fmt.Errorf("parse request id: %w", err)
	}
	if request.UserID, err = id.ParseUserID(rawUserID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if request.Status, err = models.ParseStatus(rawStatus); err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		request.ReviewedAt = &reviewedAt.Time
	}
	return &request, nil
}

func isUniqueViolation(err error) bool {
	// 23505 is the PostgreSQL unique_violation class.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
