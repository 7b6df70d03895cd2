package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/tasks"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db *sql.DB
}

// NewHealthHandler creates a [HealthHandler]. The database handle may be nil,
// in which case readiness reports ok unconditionally.
func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"GET /healthz", "GET /readyz"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/readyz" && h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AuthBroker is the surface of the auth layer the HTTP handlers use.
type AuthBroker interface {
	SessionResolver
	NewState() string
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*models.Session, error)
	Logout(id string) error
}

const stateCookie = "crate_oauth_state"

// AuthHandler serves the OAuth login and callback endpoints.
type AuthHandler struct {
	broker AuthBroker
}

// NewAuthHandler creates an [AuthHandler] over the given broker.
func NewAuthHandler(broker AuthBroker) *AuthHandler {
	return &AuthHandler{broker: broker}
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{"GET /auth/login", "GET /auth/callback", "POST /auth/logout"}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/auth/login":
		h.login(w, r)
	case "/auth/callback":
		h.callback(w, r)
	case "/auth/logout":
		h.logout(w, r)
	default:
		http.NotFound(w, r)
	}
}

// login issues a state cookie and redirects to the authorization endpoint.
func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	state := h.broker.NewState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.broker.LoginURL(state), http.StatusTemporaryRedirect)
}

// callback validates the state parameter, completes the code exchange, and
// sets the session cookie.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query_required", Message: "invalid state parameter"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query_required", Message: "missing authorization code"})
		return
	}

	session, err := h.broker.HandleCallback(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	user, err := h.broker.SessionUser(session.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user.Identity())
}

// logout deletes the session and clears the cookie.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		_ = h.broker.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MeHandler serves the authenticated user's profile and playlist listing.
type MeHandler struct {
	catalog services.Catalog
	access  tasks.AccessProvider
}

// NewMeHandler creates a [MeHandler] over the catalog and access broker.
func NewMeHandler(catalog services.Catalog, access tasks.AccessProvider) *MeHandler {
	return &MeHandler{catalog: catalog, access: access}
}

// Routes returns the HTTP routes this handler serves.
func (h *MeHandler) Routes() []string {
	return []string{"GET /me", "GET /me/playlists"}
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	if r.URL.Path == "/me" {
		writeJSON(w, http.StatusOK, user.Identity())
		return
	}

	token, err := h.access.EnsureAccess(r.Context(), user.ID())
	if err != nil {
		writeError(w, err)
		return
	}

	playlists, err := h.catalog.UserPlaylists(r.Context(), token, 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playlists)
}

// PlaylistHandler serves the playlist analysis endpoints.
type PlaylistHandler struct {
	engine tasks.Engine
}

// NewPlaylistHandler creates a [PlaylistHandler] over the given engine.
func NewPlaylistHandler(engine tasks.Engine) *PlaylistHandler {
	return &PlaylistHandler{engine: engine}
}

// Routes returns the HTTP routes this handler serves.
func (h *PlaylistHandler) Routes() []string {
	return []string{
		"GET /playlists/{id}/contents",
		"GET /playlists/{id}/stats",
		"GET /playlists/{id}/simulate-dedupe",
		"GET /playlists/{id}/export",
		"POST /playlists/{id}/dedupe",
		"GET /simulate-merge",
	}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
		return
	}

	if r.URL.Path == "/simulate-merge" {
		h.simulateMerge(w, r, user)
		return
	}

	id := r.PathValue("id")
	switch path.Base(r.URL.Path) {
	case "contents":
		h.respond(w)(h.engine.Contents(r.Context(), user.ID(), id))
	case "stats":
		h.respond(w)(h.engine.Stats(r.Context(), user.ID(), id))
	case "simulate-dedupe":
		h.respond(w)(h.engine.SimulateDedupe(r.Context(), user.ID(), id))
	case "dedupe":
		h.respond(w)(h.engine.Dedupe(r.Context(), user.ID(), id))
	case "export":
		h.export(w, r, user, id)
	default:
		http.NotFound(w, r)
	}
}

// respond folds the (result, error) pair of an engine call into a response.
func (h *PlaylistHandler) respond(w http.ResponseWriter) func(v any, err error) {
	return func(v any, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// simulateMerge requires both playlist IDs before any work happens.
func (h *PlaylistHandler) simulateMerge(w http.ResponseWriter, r *http.Request, user *models.User) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "query_required",
			Message: "example: /simulate-merge?a=PL1&b=PL2",
		})
		return
	}
	h.respond(w)(h.engine.SimulateMerge(r.Context(), user.ID(), a, b))
}

// export streams the rendered CSV document as a file attachment.
func (h *PlaylistHandler) export(w http.ResponseWriter, r *http.Request, user *models.User, id string) {
	file, err := h.engine.Export(r.Context(), user.ID(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
