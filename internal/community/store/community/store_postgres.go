package community

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"rently/internal/community/models"
	id "rently/pkg/domain"
	"rently/pkg/platform/sentinel"
	"rently/pkg/platform/tx"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Create inserts the community and its creator membership in one
// transaction. The unique index on name turns duplicates into ErrAlreadyUsed.
func (s *Postgres) Create(ctx context.Context, community *models.Community) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create community: %w", err)
	}
	defer dbTx.Rollback()

	result, err := dbTx.ExecContext(ctx, `
		INSERT INTO communities (id, name, description, creator_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO NOTHING`,
		community.ID.String(), community.Name, community.Description,
		community.CreatorID.String(), community.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert community: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert community rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrAlreadyUsed
	}

	for _, member := range community.Members {
		if _, err := dbTx.ExecContext(ctx, `
			INSERT INTO community_members (community_id, user_id)
			VALUES ($1, $2)`,
			community.ID.String(), member.String(),
		); err != nil {
			return fmt.Errorf("insert community member: %w", err)
		}
	}
	return dbTx.Commit()
}

func (s *Postgres) FindByID(ctx context.Context, communityID id.CommunityID) (*models.Community, error) {
	q := tx.QuerierFrom(ctx, s.db)
	var (
		community           models.Community
		rawID, rawCreatorID string
	)
	err := q.QueryRowContext(ctx, `
		SELECT id, name, description, creator_id, created_at FROM communities WHERE id = $1`,
		communityID.String(),
	).Scan(&rawID, &community.Name, &community.Description, &rawCreatorID, &community.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query community: %w", err)
	}
	if community.ID, err = id.ParseCommunityID(rawID); err != nil {
		return nil, fmt.Errorf("parse community id: %w", err)
	}
	if community.CreatorID, err = id.ParseUserID(rawCreatorID); err != nil {
		return nil, fmt.Errorf("parse creator id: %w", err)
	}
	if community.Members, err = s.listMembers(ctx, q, communityID); err != nil {
		return nil, err
	}
	return &community, nil
}

// AddMember appends the membership row and returns the updated count. Zero
// rows affected means either a duplicate join or a missing community; a
// follow-up existence check tells them apart.
func (s *Postgres) AddMember(ctx context.Context, communityID id.CommunityID, userID id.UserID) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO community_members (community_id, user_id)
		SELECT $1, $2 WHERE EXISTS (SELECT 1 FROM communities WHERE id = $1)
		ON CONFLICT (community_id, user_id) DO NOTHING`,
		communityID.String(), userID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert community member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert community member rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		err := s.db.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM communities WHERE id = $1)`,
			communityID.String(),
		).Scan(&exists)
		if err != nil {
			return 0, fmt.Errorf("check community exists: %w", err)
		}
		if !exists {
			return 0, sentinel.ErrNotFound
		}
		return 0, sentinel.ErrAlreadyUsed
	}

	var count int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM community_members WHERE community_id = $1`,
		communityID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count community members: %w", err)
	}
	return count, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Community, error) {
	q := tx.QuerierFrom(ctx, s.db)
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, description, creator_id, created_at FROM communities
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query communities: %w", err)
	}
	defer rows.Close()

	var communities []*models.Community
	for rows.Next() {
		var (
			community           models.Community
			rawID, rawCreatorID string
		)
		if err := rows.Scan(&rawID, &community.Name, &community.Description, &rawCreatorID, &community.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan community: %w", err)
		}
		if community.ID, err = id.ParseCommunityID(rawID); err != nil {
			return nil, fmt.Errorf("parse community id: %w", err)
		}
		if community.CreatorID, err = id.ParseUserID(rawCreatorID); err != nil {
			return nil, fmt.Errorf("parse creator id: %w", err)
		}
		communities = append(communities, &community)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, community := range communities {
		if community.Members, err = s.listMembers(ctx, q, community.ID); err != nil {
			return nil, err
		}
	}
	return communities, nil
}

func (s *Postgres) listMembers(ctx context.Context, q tx.Querier, communityID id.CommunityID) ([]id.UserID, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id FROM community_members
		WHERE community_id = $1
		ORDER BY joined_at, user_id`,
		communityID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query community members: %w", err)
	}
	defer rows.Close()

	var members []id.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan community member: %w", err)
		}
		member, err := id.ParseUserID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse member id: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}
