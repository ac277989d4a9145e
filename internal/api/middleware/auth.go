package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"hackr_api/internal/common"
	"hackr_api/internal/common/security"
	"hackr_api/internal/domain/model"
	"hackr_api/internal/platform/metrics"
)

type contextKey string

const (
	IdentityCtxKey contextKey = "identity"
)

// UserFinder resolves the user id carried by a session token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticator requires a verified session cookie that still points at an
// existing user. It must run after security.TokenService.Verifier.
// Every request costs one user lookup so role changes apply immediately.
func Authenticator(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := security.ClaimsFromContext(r.Context())
			if err != nil {
				if errors.Is(err, common.ErrUnauthorized) {
					metrics.AuthRejectionsTotal.WithLabelValues("no_token").Inc()
					common.RespondWithError(w, r, http.StatusUnauthorized, "Access Denied: No Token Provided")
					return
				}
				metrics.AuthRejectionsTotal.WithLabelValues("invalid_token").Inc()
				common.RespondWithError(w, r, http.StatusBadRequest, "Invalid Token")
				return
			}

			user, err := users.FindByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					metrics.AuthRejectionsTotal.WithLabelValues("user_not_found").Inc()
					common.RespondWithError(w, r, http.StatusNotFound, "User not found")
					return
				}
				slog.Error("resolving session user failed", "user_id", claims.UserID, "error", err)
				common.RespondWithError(w, r, http.StatusInternalServerError, "internal server error")
				return
			}

			identity := user.Identity()
			common.TrailFromContext(r.Context()).SetIdentity(identity)

			ctx := context.WithValue(r.Context(), IdentityCtxKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after Authenticator.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := GetIdentityFromContext(r.Context())
		if !ok || !identity.IsAdmin() {
			slog.Warn("access denied",
				"status", http.StatusForbidden,
				"method", r.Method,
				"path", r.URL.Path,
				"user_id", identity.ID,
				"user_role", identity.Role,
			)
			metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
			common.RespondWithError(w, r, http.StatusForbidden, "Access Denied: Admins Only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RejectAuthenticated stops register/login attempts that already carry a
// valid session, meaning a verified token whose user still exists. A stale,
// tampered or orphaned cookie does not block signing in again.
func RejectAuthenticated(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := security.ClaimsFromContext(r.Context())
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			_, err = users.FindByID(r.Context(), claims.UserID)
			switch {
			case err == nil:
				common.RespondWithError(w, r, http.StatusForbidden, "You are already logged in.")
				return
			case !errors.Is(err, common.ErrNotFound):
				slog.Warn("resolving session user in login guard failed", "user_id", claims.UserID, "error", err)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helper to get the authenticated identity from context
func GetIdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(IdentityCtxKey).(model.Identity)
	return identity, ok
}

// WithIdentity returns a context carrying identity, as Authenticator would set it.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, IdentityCtxKey, identity)
}
