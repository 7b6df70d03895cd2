package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/crate/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, panic recovery, rate limiting, and session auth.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the playlist service.
// Implementations handle specific endpoint groups (auth, profile, playlist operations).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method-qualified patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Server wraps an [http.Server] around a [Router] with graceful shutdown.
type Server struct {
	router Router
	logger *log.Logger
	http   *http.Server
}

// New creates a [Server] listening on addr and serving the given router.
func New(addr string, router Router, logger *log.Logger) *Server {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Server{
		router: router,
		logger: logger,
		http:   &http.Server{Addr: addr, Handler: router},
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return s.http.Shutdown(context.Background())
	}
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error envelope returned by every endpoint.
type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// writeError maps a domain error to its HTTP status and wire code.
//
// Auth failures map to 401 "unauthorized", caller mistakes to 400
// "query_required", upstream throttling to 429 "rate_limited" with the retry
// delay in seconds, and any other upstream failure to 502 "spotify_failed".
func writeError(w http.ResponseWriter, err error) {
	var rateErr *shared.RateLimitError
	switch {
	case errors.As(err, &rateErr):
		writeJSON(w, http.StatusTooManyRequests, errorBody{
			Error:      "rate_limited",
			RetryAfter: int(rateErr.RetryAfter.Seconds()),
		})
	case errors.Is(err, shared.ErrUnauthorized),
		errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrNoRefreshToken),
		errors.Is(err, shared.ErrRefreshFailed),
		errors.Is(err, shared.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "query_required", Message: err.Error()})
	case errors.Is(err, shared.ErrPlaylistNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found"})
	case errors.Is(err, shared.ErrUpstreamFailed):
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "spotify_failed"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	}
}
