package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "rently/pkg/domain"
	audit "rently/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL. Append-only by construction:
// there is no update or delete path.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (occurred_at, user_id, subject, action, decision, reason, request_id, client_ip, device_family)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Timestamp,
		uuid.UUID(event.UserID),
		event.Subject,
		string(event.Action),
		event.Decision,
		event.Reason,
		event.RequestID,
		event.ClientIP,
		event.DeviceFamily,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT occurred_at, user_id, subject, action, decision, reason, request_id, client_ip, device_family
		FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		var uid uuid.UUID
		var action string
		if err := rows.Scan(&event.Timestamp, &uid, &event.Subject, &action,
			&event.Decision, &event.Reason, &event.RequestID, &event.ClientIP, &event.DeviceFamily); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.UserID = id.UserID(uid)
		event.Action = audit.Action(action)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
