package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// TokenRepository persists one OAuth token row per user.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token row for the token's user.
func (r *TokenRepository) Save(token *models.Token) error {
	if token.UserID == "" {
		return fmt.Errorf("token user id is required")
	}

	token.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO tokens (user_id, access_token, refresh_token, expires_at, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query, token.UserID, token.AccessToken, token.RefreshToken, token.ExpiresAt, token.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Get retrieves the token row for a user. A missing row maps to
// [shared.ErrNotAuthenticated] so callers can treat it as a logged-out state.
func (r *TokenRepository) Get(userID string) (*models.Token, error) {
	query := `
		SELECT user_id, access_token, refresh_token, expires_at, updated_at
		FROM tokens
		WHERE user_id = ?
	`

	token := &models.Token{}
	err := r.db.QueryRow(query, userID).Scan(&token.UserID, &token.AccessToken, &token.RefreshToken, &token.ExpiresAt, &token.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no token for user %s", shared.ErrNotAuthenticated, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	return token, nil
}

// Delete removes the token row for a user
func (r *TokenRepository) Delete(userID string) error {
	_, err := r.db.Exec(`DELETE FROM tokens WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
