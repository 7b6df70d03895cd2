package shared

import (
	"fmt"
	"time"
)

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrUnauthorized     = fmt.Errorf("unauthorized")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken   = fmt.Errorf("no refresh token available")

	// Upstream catalog errors
	ErrRateLimited      = fmt.Errorf("upstream rate limited")
	ErrUpstreamFailed   = fmt.Errorf("upstream request failed")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

// RateLimitError reports upstream throttling along with the server-advised
// wait duration. Every read path surfaces this same type, so callers can
// apply a single retry policy; the engine itself never retries.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limited: retry after %s", e.RetryAfter)
}

// Unwrap makes errors.Is(err, ErrRateLimited) hold for every RateLimitError.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}
