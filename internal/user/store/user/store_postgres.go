package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"rently/internal/user/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
)

// Postgres persists user records. Pure I/O; invariants live in the service.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, verified, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(user.ID), user.Name, user.Email, user.Verified, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT id, name, email, verified, created_at FROM users WHERE id = $1`
	var user models.User
	var uid uuid.UUID
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(userID)).
		Scan(&uid, &user.Name, &user.Email, &user.Verified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	user.ID = id.UserID(uid)
	return &user, nil
}

// SetVerified flips the verified flag. The flip is idempotent; the one-shot
// semantics live on the verification request record, not the user row.
func (s *Postgres) SetVerified(ctx context.Context, userID id.UserID) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET verified = TRUE WHERE id = $1`, uuid.UUID(userID))
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set verified rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	// 23505 is the PostgreSQL unique_violation class.
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
