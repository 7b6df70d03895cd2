// package testing contains shared testing utilities
package testing

import (
	"context"
	"database/sql"
	"errors"
	"iter"
	"net/http"
	"testing"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// MockCatalog is a test double for [services.Catalog]. Each method delegates
// to the corresponding function field when set and returns zero values
// otherwise.
type MockCatalog struct {
	MeFunc            func(ctx context.Context, token string) (*services.SpotifyUser, error)
	PlaylistFunc      func(ctx context.Context, token, playlistID string) (*services.SpotifyPlaylist, error)
	PlaylistItemsFunc func(ctx context.Context, token, playlistID string) iter.Seq2[services.PlaylistItem, error]
	UserPlaylistsFunc func(ctx context.Context, token string, limit int) (*services.SpotifyPaginatedPlaylists, error)
	RemoveTracksFunc  func(ctx context.Context, token, playlistID string, removals []services.TrackRemoval, snapshotID string) (string, error)
}

func (m *MockCatalog) Me(ctx context.Context, token string) (*services.SpotifyUser, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx, token)
	}
	return &services.SpotifyUser{ID: "mock-user"}, nil
}

func (m *MockCatalog) Playlist(ctx context.Context, token, playlistID string) (*services.SpotifyPlaylist, error) {
	if m.PlaylistFunc != nil {
		return m.PlaylistFunc(ctx, token, playlistID)
	}
	return &services.SpotifyPlaylist{ID: playlistID}, nil
}

func (m *MockCatalog) PlaylistItems(ctx context.Context, token, playlistID string) iter.Seq2[services.PlaylistItem, error] {
	if m.PlaylistItemsFunc != nil {
		return m.PlaylistItemsFunc(ctx, token, playlistID)
	}
	return ItemSeq(nil)
}

func (m *MockCatalog) UserPlaylists(ctx context.Context, token string, limit int) (*services.SpotifyPaginatedPlaylists, error) {
	if m.UserPlaylistsFunc != nil {
		return m.UserPlaylistsFunc(ctx, token, limit)
	}
	return &services.SpotifyPaginatedPlaylists{}, nil
}

func (m *MockCatalog) RemoveTracks(ctx context.Context, token, playlistID string, removals []services.TrackRemoval, snapshotID string) (string, error) {
	if m.RemoveTracksFunc != nil {
		return m.RemoveTracksFunc(ctx, token, playlistID, removals, snapshotID)
	}
	return snapshotID, nil
}

// ItemSeq wraps a fixed item slice as the lazy sequence the catalog yields.
func ItemSeq(items []services.PlaylistItem) iter.Seq2[services.PlaylistItem, error] {
	return func(yield func(services.PlaylistItem, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

// FailingSeq yields the given items and then the error, modeling a
// pagination walk that breaks partway through.
func FailingSeq(items []services.PlaylistItem, err error) iter.Seq2[services.PlaylistItem, error] {
	return func(yield func(services.PlaylistItem, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
		yield(services.PlaylistItem{}, err)
	}
}

// MockAccess is a test double for the engine's access provider.
type MockAccess struct {
	Token string
	Err   error
}

func (m *MockAccess) EnsureAccess(ctx context.Context, userID string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if m.Token == "" {
		return "mock-token", nil
	}
	return m.Token, nil
}

// MockEngine is a test double for [tasks.Engine] used by handler tests.
type MockEngine struct {
	ContentsFunc       func(ctx context.Context, userID, playlistID string) (*models.PlaylistContents, error)
	StatsFunc          func(ctx context.Context, userID, playlistID string) (*models.AggregateReport, error)
	SimulateDedupeFunc func(ctx context.Context, userID, playlistID string) (*models.DuplicateReport, error)
	SimulateMergeFunc  func(ctx context.Context, userID, playlistA, playlistB string) (*models.MergeReport, error)
	ExportFunc         func(ctx context.Context, userID, playlistID string) (*formatter.ExportFile, error)
	DedupeFunc         func(ctx context.Context, userID, playlistID string) (*models.DedupeResult, error)
}

func (m *MockEngine) Contents(ctx context.Context, userID, playlistID string) (*models.PlaylistContents, error) {
	if m.ContentsFunc != nil {
		return m.ContentsFunc(ctx, userID, playlistID)
	}
	return &models.PlaylistContents{}, nil
}

func (m *MockEngine) Stats(ctx context.Context, userID, playlistID string) (*models.AggregateReport, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID, playlistID)
	}
	return &models.AggregateReport{}, nil
}

func (m *MockEngine) SimulateDedupe(ctx context.Context, userID, playlistID string) (*models.DuplicateReport, error) {
	if m.SimulateDedupeFunc != nil {
		return m.SimulateDedupeFunc(ctx, userID, playlistID)
	}
	return &models.DuplicateReport{}, nil
}

func (m *MockEngine) SimulateMerge(ctx context.Context, userID, playlistA, playlistB string) (*models.MergeReport, error) {
	if m.SimulateMergeFunc != nil {
		return m.SimulateMergeFunc(ctx, userID, playlistA, playlistB)
	}
	return &models.MergeReport{}, nil
}

func (m *MockEngine) Export(ctx context.Context, userID, playlistID string) (*formatter.ExportFile, error) {
	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, userID, playlistID)
	}
	return &formatter.ExportFile{Filename: "mock.csv", ContentType: formatter.ExportContentType}, nil
}

func (m *MockEngine) Dedupe(ctx context.Context, userID, playlistID string) (*models.DedupeResult, error) {
	if m.DedupeFunc != nil {
		return m.DedupeFunc(ctx, userID, playlistID)
	}
	return &models.DedupeResult{}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustOpenDB opens a migrated in-memory sqlite database for repository tests.
func MustOpenDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// a pooled second connection would see a fresh empty memory database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

// Ptr returns a pointer to v, for building nullable fixture fields inline.
func Ptr[T any](v T) *T { return &v }
