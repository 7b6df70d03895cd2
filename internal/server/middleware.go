package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/desertthunder/crate/internal/models"
)

// SessionCookie is the name of the login session cookie.
const SessionCookie = "crate_session"

type contextKey string

const userContextKey contextKey = "user"

// UserFrom extracts the authenticated user placed in the request context by
// [RequireSession]. The second return is false on unauthenticated requests.
func UserFrom(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// SessionResolver resolves a session cookie value to its user record.
type SessionResolver interface {
	SessionUser(id string) (*models.User, error)
}

// Recover returns middleware that converts handler panics into 500 responses.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", "panic", rec, "path", r.URL.Path)
					writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// RequestLogger returns middleware that logs each request with a generated
// request ID, method, path, status, and duration.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.New().String()
			w.Header().Set("X-Request-ID", requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			logger.Info("request",
				"id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// RateLimit returns middleware enforcing a process-wide request budget of
// max requests per window, answering excess requests with 429 and the
// remaining window in retry_after.
func RateLimit(max int, window time.Duration) Middleware {
	limiter := rate.NewLimiter(rate.Every(window/time.Duration(max)), max)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				retryAfter := int(delay.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", RetryAfter: retryAfter})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession returns middleware that resolves the session cookie to a
// user and stores it in the request context. Requests without a valid
// session receive 401 "unauthorized".
func RequireSession(sessions SessionResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}

			user, err := sessions.SessionUser(cookie.Value)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
