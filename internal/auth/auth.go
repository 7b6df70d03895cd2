// package auth brokers OAuth credentials and login sessions.
//
// [Broker] owns the authorization code flow against the catalog, persists
// token material through the repositories, and hands out fresh access tokens
// to the task layer, refreshing transparently when a stored token has expired.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// Broker coordinates OAuth exchange, token refresh, and session issuance.
type Broker struct {
	oauth      *oauth2.Config
	catalog    services.Catalog
	users      *repositories.UserRepository
	tokens     *repositories.TokenRepository
	sessions   *repositories.SessionRepository
	sessionTTL time.Duration
	logger     *log.Logger

	// serializes refreshes so concurrent requests for the same user do not
	// race each other to the token endpoint
	mu sync.Mutex
}

// NewBroker creates a [Broker] over the given OAuth config and repositories.
func NewBroker(oauth *oauth2.Config, catalog services.Catalog, users *repositories.UserRepository, tokens *repositories.TokenRepository, sessions *repositories.SessionRepository, sessionTTL time.Duration) *Broker {
	return &Broker{
		oauth:      oauth,
		catalog:    catalog,
		users:      users,
		tokens:     tokens,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     shared.NewLogger(nil),
	}
}

// NewState generates a random state token for CSRF protection.
func (b *Broker) NewState() string {
	return shared.GenerateID()
}

// LoginURL builds the authorization URL the caller should be redirected to.
func (b *Broker) LoginURL(state string) string {
	return b.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// HandleCallback completes the authorization code flow.
//
// Exchanges the code for tokens, resolves the catalog profile, upserts the
// local user record, persists the token material, and issues a login session.
func (b *Broker) HandleCallback(ctx context.Context, code string) (*models.Session, error) {
	token, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrUnauthorized, err)
	}

	profile, err := b.catalog.Me(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	user, err := b.users.GetBySpotifyID(profile.ID)
	if err != nil {
		user = models.NewUser(profile.ID, profile.Email, profile.DisplayName)
		if err := b.users.Create(user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		b.logger.Info("registered new user", "spotify_id", profile.ID)
	} else if user.Email() != profile.Email || user.DisplayName() != profile.DisplayName {
		user.SetEmail(profile.Email)
		user.SetDisplayName(profile.DisplayName)
		if err := b.users.Update(user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	if err := b.tokens.Save(&models.Token{
		UserID:       user.ID(),
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry.UTC(),
	}); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	session, err := b.sessions.Create(user.ID(), b.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// EnsureAccess returns a usable access token for the user, refreshing the
// stored token when it has expired.
func (b *Broker) EnsureAccess(ctx context.Context, userID string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, err := b.tokens.Get(userID)
	if err != nil {
		return "", err
	}

	if stored.Valid() {
		return stored.AccessToken, nil
	}

	if stored.RefreshToken == "" {
		return "", fmt.Errorf("%w: stored token expired", shared.ErrNoRefreshToken)
	}

	refreshed, err := b.oauth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: stored.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}).Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	stored.AccessToken = refreshed.AccessToken
	stored.ExpiresAt = refreshed.Expiry.UTC()
	if refreshed.RefreshToken != "" {
		stored.RefreshToken = refreshed.RefreshToken
	}

	if err := b.tokens.Save(stored); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	b.logger.Debug("refreshed access token", "user_id", userID)
	return stored.AccessToken, nil
}

// SessionUser resolves a session ID to its user record.
func (b *Broker) SessionUser(id string) (*models.User, error) {
	session, err := b.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	return b.users.Get(session.UserID)
}

// Logout removes the session.
func (b *Broker) Logout(id string) error {
	return b.sessions.Delete(id)
}
