package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	tu "github.com/desertthunder/crate/internal/testing"
)

// fakeSessions resolves the session id "sess" to a fixed user.
type fakeSessions struct {
	user *models.User
}

func (f *fakeSessions) SessionUser(id string) (*models.User, error) {
	if id != "sess" {
		return nil, fmt.Errorf("%w: unknown session", shared.ErrUnauthorized)
	}
	return f.user, nil
}

func testUser() *models.User {
	user := models.NewUser("spot1", "u1@example.com", "User One")
	user.SetID("u1")
	return user
}

func newTestRouter(engine tasks.Engine) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(shared.NewLogger(nil)))
	router.Use(RequireSession(&fakeSessions{user: testUser()}))
	router.Handler(NewPlaylistHandler(engine))
	return router
}

func doRequest(router http.Handler, method, target string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if authed {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess"})
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func TestPlaylistHandler(t *testing.T) {
	t.Run("Unauthorized Without Session", func(t *testing.T) {
		router := newTestRouter(&tu.MockEngine{})

		rec := doRequest(router, http.MethodGet, "/playlists/PL/stats", false)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Error != "unauthorized" {
			t.Errorf("expected unauthorized code, got %q", body.Error)
		}
	})

	t.Run("Stats", func(t *testing.T) {
		engine := &tu.MockEngine{
			StatsFunc: func(ctx context.Context, userID, playlistID string) (*models.AggregateReport, error) {
				if userID != "u1" || playlistID != "PL" {
					t.Errorf("unexpected call: user=%s playlist=%s", userID, playlistID)
				}
				return &models.AggregateReport{TracksTotal: 3, TracksUnique: 2}, nil
			},
		}
		router := newTestRouter(engine)

		rec := doRequest(router, http.MethodGet, "/playlists/PL/stats", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var report models.AggregateReport
		if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
			t.Fatalf("failed to decode report: %v", err)
		}
		if report.TracksTotal != 3 || report.TracksUnique != 2 {
			t.Errorf("unexpected report: %+v", report)
		}
	})

	t.Run("Simulate Merge Requires Both IDs", func(t *testing.T) {
		called := false
		engine := &tu.MockEngine{
			SimulateMergeFunc: func(ctx context.Context, userID, a, b string) (*models.MergeReport, error) {
				called = true
				return &models.MergeReport{}, nil
			},
		}
		router := newTestRouter(engine)

		rec := doRequest(router, http.MethodGet, "/simulate-merge?a=PL1", true)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Error != "query_required" {
			t.Errorf("expected query_required code, got %q", body.Error)
		}
		if called {
			t.Error("expected no engine call on usage error")
		}
	})

	t.Run("Rate Limited Upstream", func(t *testing.T) {
		engine := &tu.MockEngine{
			ContentsFunc: func(ctx context.Context, userID, playlistID string) (*models.PlaylistContents, error) {
				return nil, &shared.RateLimitError{RetryAfter: 3 * time.Second}
			},
		}
		router := newTestRouter(engine)

		rec := doRequest(router, http.MethodGet, "/playlists/PL/contents", true)
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", rec.Code)
		}
		body := decodeError(t, rec)
		if body.Error != "rate_limited" || body.RetryAfter != 3 {
			t.Errorf("unexpected body: %+v", body)
		}
	})

	t.Run("Upstream Failure", func(t *testing.T) {
		engine := &tu.MockEngine{
			StatsFunc: func(ctx context.Context, userID, playlistID string) (*models.AggregateReport, error) {
				return nil, fmt.Errorf("%w: status 500", shared.ErrUpstreamFailed)
			},
		}
		router := newTestRouter(engine)

		rec := doRequest(router, http.MethodGet, "/playlists/PL/stats", true)
		if rec.Code != http.StatusBadGateway {
			t.Fatalf("expected 502, got %d", rec.Code)
		}
		if body := decodeError(t, rec); body.Error != "spotify_failed" {
			t.Errorf("expected spotify_failed code, got %q", body.Error)
		}
	})

	t.Run("Export Attachment", func(t *testing.T) {
		engine := &tu.MockEngine{
			ExportFunc: func(ctx context.Context, userID, playlistID string) (*formatter.ExportFile, error) {
				return &formatter.ExportFile{
					Filename:    "u1_Mix_20240301_150405.csv",
					ContentType: formatter.ExportContentType,
					Data:        []byte("Position,Track Name\n"),
				}, nil
			},
		}
		router := newTestRouter(engine)

		rec := doRequest(router, http.MethodGet, "/playlists/PL/export", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected text/csv content type, got %q", ct)
		}
		if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "u1_Mix_20240301_150405.csv") {
			t.Errorf("expected attachment filename, got %q", cd)
		}
	})

	t.Run("Dedupe Write", func(t *testing.T) {
		engine := &tu.MockEngine{
			DedupeFunc: func(ctx context.Context, userID, playlistID string) (*models.DedupeResult, error) {
				return &models.DedupeResult{Removed: 4, SnapshotID: "snap2"}, nil
			},
		}
		router := newTestRouter(engine)

		rec := doRequest(router, http.MethodPost, "/playlists/PL/dedupe", true)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var result models.DedupeResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode result: %v", err)
		}
		if result.Removed != 4 || result.SnapshotID != "snap2" {
			t.Errorf("unexpected result: %+v", result)
		}
	})

	t.Run("Dedupe Requires Post", func(t *testing.T) {
		router := newTestRouter(&tu.MockEngine{})

		rec := doRequest(router, http.MethodGet, "/playlists/PL/dedupe", true)
		if rec.Code != http.StatusMethodNotAllowed && rec.Code != http.StatusNotFound {
			t.Errorf("expected method rejection, got %d", rec.Code)
		}
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("RateLimit", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(RateLimit(2, time.Minute))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		}))

		codes := []int{}
		for i := 0; i < 3; i++ {
			rec := doRequest(router, http.MethodGet, "/ping", false)
			codes = append(codes, rec.Code)
		}

		if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
			t.Errorf("expected first two requests allowed, got %v", codes)
		}
		if codes[2] != http.StatusTooManyRequests {
			t.Errorf("expected third request limited, got %v", codes)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(shared.NewLogger(nil)))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		}))

		rec := doRequest(router, http.MethodGet, "/boom", false)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500 from recovered panic, got %d", rec.Code)
		}
	})

	t.Run("RequestLogger Sets Request ID", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(RequestLogger(shared.NewLogger(nil)))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		rec := doRequest(router, http.MethodGet, "/ping", false)
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("expected X-Request-ID header")
		}
	})
}

func TestHealthHandler(t *testing.T) {
	router := NewBasicRouter()
	router.Handler(NewHealthHandler(nil))

	rec := doRequest(router, http.MethodGet, "/healthz", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected ok status, got %v", body)
	}
}

func TestMeHandler(t *testing.T) {
	router := NewBasicRouter()
	router.Use(RequireSession(&fakeSessions{user: testUser()}))
	router.Handler(NewMeHandler(&tu.MockCatalog{}, &tu.MockAccess{}))

	rec := doRequest(router, http.MethodGet, "/me", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var identity models.Identity
	if err := json.NewDecoder(rec.Body).Decode(&identity); err != nil {
		t.Fatalf("failed to decode identity: %v", err)
	}
	if identity.ID != "u1" || identity.SpotifyID != "spot1" {
		t.Errorf("unexpected identity: %+v", identity)
	}
}
