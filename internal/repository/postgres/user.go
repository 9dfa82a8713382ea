package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taitfuller/feedr-backend/internal/domain"
	"github.com/taitfuller/feedr-backend/pkg/database"
	apperrors "github.com/taitfuller/feedr-backend/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user together with the ids of their feeds, oldest first.
func (r *UserRepository) GetByID(ctx context.Context, id string) (u *domain.User, err error) {
	query := `
		SELECT u.id, u.github_id, u.display_name,
		       COALESCE(array_agg(uf.feed_id::text ORDER BY uf.created_at) FILTER (WHERE uf.feed_id IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_feeds uf ON uf.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id`

	ctx, end := database.TraceQuery(ctx, "users.get", query)
	defer func() { end(err) }()

	u = &domain.User{}
	if err = r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.GitHubID, &u.DisplayName, &u.Feeds); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.Feeds == nil {
		u.Feeds = []string{}
	}
	return u, nil
}

// GetAccessToken returns the user's stored GitHub token, or "" when none is
// stored.
func (r *UserRepository) GetAccessToken(ctx context.Context, id string) (token string, err error) {
	query := `SELECT COALESCE(github_access_token, '') FROM users WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "users.get_access_token", query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, id).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("user", id)
		}
		return "", fmt.Errorf("get access token: %w", err)
	}
	return token, nil
}
