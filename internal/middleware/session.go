package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/addressbook/internal/cookie"
	"github.com/dukerupert/addressbook/internal/session"
	"github.com/dukerupert/addressbook/internal/telemetry"
)

const (
	// SessionContextKey is the context key for the finder session controller
	SessionContextKey contextKey = "session"

	// SessionIDContextKey is the context key for the finder session id
	SessionIDContextKey contextKey = "session_id"
)

// Sessions attaches the finder session for the request, creating one and
// setting its cookie when the request carries no live session.
func Sessions(store *session.Store, cookies *cookie.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ctrl, created := store.GetOrCreate(cookie.Get(r, cookie.SessionCookieName))

			// Refreshed on every request so the browser keeps the cookie as long
			// as the store keeps the session.
			cookies.SetSession(w, cookie.SessionCookieName, id, store.TTL())

			logger := GetLogger(r.Context()).With(slog.String("session_id", id))
			if created {
				logger.Debug("session created")
			}

			ctx := context.WithValue(r.Context(), SessionContextKey, ctrl)
			ctx = context.WithValue(ctx, SessionIDContextKey, id)
			ctx = withLogger(ctx, logger)
			telemetry.SetSession(ctx, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the finder session controller from the context.
// Returns nil when the Sessions middleware did not run.
func GetSession(ctx context.Context) *session.Controller {
	if c, ok := ctx.Value(SessionContextKey).(*session.Controller); ok {
		return c
	}
	return nil
}

// GetSessionID retrieves the finder session id from the context.
func GetSessionID(ctx context.Context) string {
	if id, ok := ctx.Value(SessionIDContextKey).(string); ok {
		return id
	}
	return ""
}
