package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// UserRepository implements [models.Repository] for [models.User] persistence.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user into the database with a generated ID
func (r *UserRepository) Create(user *models.User) error {
	user.SetID(shared.GenerateID())

	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO users (id, spotify_id, email, display_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query, user.ID(), user.SpotifyID(), user.Email(), user.DisplayName(), user.CreatedAt(), user.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(id string) (*models.User, error) {
	query := `
		SELECT id, spotify_id, email, display_name, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	return r.scanUser(r.db.QueryRow(query, id), id)
}

// GetBySpotifyID retrieves a user by their catalog profile ID
func (r *UserRepository) GetBySpotifyID(spotifyID string) (*models.User, error) {
	query := `
		SELECT id, spotify_id, email, display_name, created_at, updated_at
		FROM users
		WHERE spotify_id = ?
	`
	return r.scanUser(r.db.QueryRow(query, spotifyID), spotifyID)
}

func (r *UserRepository) scanUser(row *sql.Row, key string) (*models.User, error) {
	var (
		userID      string
		spotifyID   string
		email       string
		displayName string
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&userID, &spotifyID, &email, &displayName, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user not found: %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user := models.NewUser(spotifyID, email, displayName)
	user.SetID(userID)
	user.SetCreatedAt(createdAt)
	user.SetUpdatedAt(updatedAt)

	return user, nil
}

// Update modifies an existing user in the database
func (r *UserRepository) Update(user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now().UTC()
	user.SetUpdatedAt(now)

	query := `
		UPDATE users
		SET email = ?, display_name = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, user.Email(), user.DisplayName(), now, user.ID())
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %s", user.ID())
	}

	return nil
}

// Delete removes a user and their token and session rows
func (r *UserRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM tokens WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	result, err := tx.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user not found: %s", id)
	}

	return tx.Commit()
}

// List retrieves all users ordered by creation time
func (r *UserRepository) List() ([]*models.User, error) {
	query := `
		SELECT id, spotify_id, email, display_name, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var (
			userID      string
			spotifyID   string
			email       string
			displayName string
			createdAt   time.Time
			updatedAt   time.Time
		)

		if err := rows.Scan(&userID, &spotifyID, &email, &displayName, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		user := models.NewUser(spotifyID, email, displayName)
		user.SetID(userID)
		user.SetCreatedAt(createdAt)
		user.SetUpdatedAt(updatedAt)
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
