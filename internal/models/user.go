package models

import (
	"fmt"
	"time"
)

// User is an account record keyed to a catalog (Spotify) profile.
type User struct {
	id          string
	spotifyID   string
	email       string
	displayName string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewUser creates a User for the given catalog profile with timestamps set to now.
func NewUser(spotifyID, email, displayName string) *User {
	now := time.Now().UTC()
	return &User{
		spotifyID:   spotifyID,
		email:       email,
		displayName: displayName,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (u *User) ID() string           { return u.id }
func (u *User) SpotifyID() string    { return u.spotifyID }
func (u *User) Email() string        { return u.email }
func (u *User) DisplayName() string  { return u.displayName }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) SetID(id string)            { u.id = id }
func (u *User) SetEmail(email string)      { u.email = email }
func (u *User) SetDisplayName(name string) { u.displayName = name }
func (u *User) SetCreatedAt(t time.Time)   { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)   { u.updatedAt = t }

// Validate checks that the user record is complete enough to persist.
func (u *User) Validate() error {
	if u.id == "" {
		return fmt.Errorf("user id is required")
	}
	if u.spotifyID == "" {
		return fmt.Errorf("user spotify id is required")
	}
	return nil
}

// Identity returns the caller-facing projection of this user.
func (u *User) Identity() Identity {
	return Identity{
		ID:          u.id,
		SpotifyID:   u.spotifyID,
		Email:       u.email,
		DisplayName: u.displayName,
	}
}

// Token holds OAuth token material for one user.
type Token struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}

// Valid reports whether the access token is still usable, with a skew margin
// so a token expiring mid-request is refreshed up front.
func (t *Token) Valid() bool {
	return t.AccessToken != "" && time.Now().UTC().Add(30*time.Second).Before(t.ExpiresAt)
}

// Session is a cookie-backed login session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}
