package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ssogate/internal/apps"
	"ssogate/internal/auth/models"
	"ssogate/internal/auth/session"
	"ssogate/internal/transport/http/shared"
	dErrors "ssogate/pkg/domain-errors"
)

type ctxKey int

const (
	appKey ctxKey = iota
	sessionKey
)

// AppGate resolves the {app} path segment against the application registry.
// Unknown app identifiers are rejected before any business logic runs.
func AppGate(registry *apps.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			slug := chi.URLParam(r, "app")
			preset, ok := registry.Lookup(slug)
			if !ok {
				shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown application"))
				return
			}
			ctx := context.WithValue(r.Context(), appKey, preset)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AppFromContext returns the application preset resolved by AppGate.
func AppFromContext(ctx context.Context) (apps.Preset, bool) {
	preset, ok := ctx.Value(appKey).(apps.Preset)
	return preset, ok
}

// GuestLoginPolicy rejects guest logins for apps that don't allow them.
// It runs after AppGate and before the principal is ever looked up.
func GuestLoginPolicy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		preset, ok := AppFromContext(r.Context())
		if !ok || !preset.GuestLoginEnabled {
			shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "guest login is disabled for this application"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSession guards protected paths: absence of a valid session fails
// before any business logic.
func RequireSession(codec *session.Codec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap, err := codec.FromRequest(r)
			if err != nil {
				shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session required"))
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, snap)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFromContext returns the session snapshot stored by RequireSession.
func SessionFromContext(ctx context.Context) (*models.SessionSnapshot, bool) {
	snap, ok := ctx.Value(sessionKey).(*models.SessionSnapshot)
	return snap, ok
}
