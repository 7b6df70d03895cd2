// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/crate/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// defaultPageLimit is the collector-internal page size. The upstream
	// `next` URL is the sole continuation signal; page size never affects
	// output ordering.
	defaultPageLimit = 100
)

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"` // premium, free, etc.
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	URI         string `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
//
// Any field may be absent in upstream responses; absence means "unknown",
// not an error. Popularity and DurationMS are pointers so an explicit zero
// survives the trip distinct from a missing value.
type SpotifyTrack struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []SpotifyArtist   `json:"artists"`
	Album        *SpotifyAlbum     `json:"album"`
	Popularity   *int              `json:"popularity"`
	DurationMS   *int              `json:"duration_ms"`
	IsLocal      bool              `json:"is_local"`
	PreviewURL   string            `json:"preview_url"`
	ExternalURLs map[string]string `json:"external_urls"`
	URI          string            `json:"uri"`
}

// AddedBy identifies the user who added an item to a playlist.
type AddedBy struct {
	ID string `json:"id"`
}

// PlaylistItem represents one entry of a playlist's track listing.
// Track is nil for removed or local-only records, which are valid entries.
type PlaylistItem struct {
	AddedAt string        `json:"added_at"`
	AddedBy *AddedBy      `json:"added_by"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// itemPage is one fetched page of a playlist's track listing.
type itemPage struct {
	Items []PlaylistItem `json:"items"`
	Next  *string        `json:"next"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist's metadata record.
type SpotifyPlaylist struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Owner         Owner          `json:"owner"`
	Public        bool           `json:"public"`
	Collaborative bool           `json:"collaborative"`
	SnapshotID    string         `json:"snapshot_id"`
	Tracks        playlistTracks `json:"tracks"`
	URI           string         `json:"uri"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	URI         string         `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifySimplePlaylist `json:"items"`
	Total    int                     `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
	Next     *string                 `json:"next"`
	Previous *string                 `json:"previous"`
}

// TrackRemoval is one (uri, positions) pair of a bulk-delete request.
type TrackRemoval struct {
	URI       string `json:"uri"`
	Positions []int  `json:"positions"`
}

// SpotifyService implements the [Catalog] interface for Spotify API interactions.
//
// The service is stateless with respect to users: every method takes the
// bearer token for the requesting user, so one instance is shared safely
// across concurrent requests.
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify catalog client.
// baseURL defaults to the public API; override it in tests.
func NewSpotifyService(baseURL string, client *http.Client) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyService{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// NewOAuthConfig builds the [oauth2.Config] for the Spotify authorization
// code flow used by the auth collaborator.
func NewOAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-email",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}
}

// doRequest performs an authenticated HTTP request against an absolute API URL.
//
// Maps upstream failures onto the shared error taxonomy: 429 becomes a
// [shared.RateLimitError] carrying the Retry-After duration, any other
// non-2xx becomes [shared.ErrUpstreamFailed] without response-body detail.
func (s *SpotifyService) doRequest(ctx context.Context, token, method, apiURL string, body, result any) error {
	if token == "" {
		return shared.ErrNotAuthenticated
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUpstreamFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return &shared.RateLimitError{RetryAfter: retryAfter(resp)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrUpstreamFailed, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// retryAfter reads the server-advised wait duration from a 429 response.
func retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

// endpoint joins a path onto the configured API base URL.
func (s *SpotifyService) endpoint(path string) string {
	return s.baseURL + path
}

// Me retrieves the profile of the token's owner.
func (s *SpotifyService) Me(ctx context.Context, token string) (*SpotifyUser, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, token, http.MethodGet, s.endpoint("/me"), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Playlist retrieves a playlist's metadata record by ID.
func (s *SpotifyService) Playlist(ctx context.Context, token, playlistID string) (*SpotifyPlaylist, error) {
	var playlist SpotifyPlaylist
	apiURL := s.endpoint(fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID)))
	if err := s.doRequest(ctx, token, http.MethodGet, apiURL, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// UserPlaylists retrieves one page of the token owner's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, token string, limit int) (*SpotifyPaginatedPlaylists, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	var response SpotifyPaginatedPlaylists
	apiURL := s.endpoint(fmt.Sprintf("/me/playlists?limit=%d", limit))
	if err := s.doRequest(ctx, token, http.MethodGet, apiURL, nil, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// PlaylistItems returns a lazy sequence over every item in the playlist.
//
// Pages are fetched on demand in order; each page's `next` URL (an absolute
// URL, trusted per the upstream contract) drives continuation until absent.
// Page fetches are strictly sequential because the upstream exposes no page
// count that would make concurrent fetching safe. Consumers that stop early
// skip the remaining page fetches.
func (s *SpotifyService) PlaylistItems(ctx context.Context, token, playlistID string) iter.Seq2[PlaylistItem, error] {
	return func(yield func(PlaylistItem, error) bool) {
		next := s.endpoint(fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), defaultPageLimit))

		for next != "" {
			var page itemPage
			if err := s.doRequest(ctx, token, http.MethodGet, next, nil, &page); err != nil {
				yield(PlaylistItem{}, err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			if page.Next == nil {
				return
			}
			next = *page.Next
		}
	}
}

// RemoveTracks issues a single bulk-delete request for the given removals
// and returns the playlist's new snapshot ID.
func (s *SpotifyService) RemoveTracks(ctx context.Context, token, playlistID string, removals []TrackRemoval, snapshotID string) (string, error) {
	if len(removals) == 0 {
		return "", fmt.Errorf("%w: no tracks to remove", shared.ErrInvalidInput)
	}

	body := struct {
		Tracks     []TrackRemoval `json:"tracks"`
		SnapshotID string         `json:"snapshot_id,omitempty"`
	}{
		Tracks:     removals,
		SnapshotID: snapshotID,
	}

	var response struct {
		SnapshotID string `json:"snapshot_id"`
	}

	apiURL := s.endpoint(fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID)))
	if err := s.doRequest(ctx, token, http.MethodDelete, apiURL, body, &response); err != nil {
		return "", err
	}

	return response.SnapshotID, nil
}
