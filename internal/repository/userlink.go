package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserLinkRepository handles per-user match link preferences.
type UserLinkRepository struct {
	pool        *pgxpool.Pool
	defaultLink string
}

// NewUserLinkRepository creates a new UserLinkRepository instance.
// defaultLink is returned by Get for users with no stored link.
func NewUserLinkRepository(pool *pgxpool.Pool, defaultLink string) *UserLinkRepository {
	return &UserLinkRepository{pool: pool, defaultLink: defaultLink}
}

// Set upserts the match link for a user.
func (r *UserLinkRepository) Set(ctx context.Context, userID int64, link string) error {
	const query = `
		INSERT INTO user_links (user_id, match_link)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET match_link = EXCLUDED.match_link
	`

	if _, err := r.pool.Exec(ctx, query, userID, link); err != nil {
		return fmt.Errorf("failed to set user link: %w", err)
	}
	return nil
}

// Get returns the user's match link, falling back to the configured default
// when the user has none stored.
func (r *UserLinkRepository) Get(ctx context.Context, userID int64) (string, error) {
	var link string
	err := r.pool.QueryRow(ctx, `SELECT match_link FROM user_links WHERE user_id = $1`, userID).Scan(&link)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.defaultLink, nil
		}
		return "", fmt.Errorf("failed to get user link: %w", err)
	}
	return link, nil
}
