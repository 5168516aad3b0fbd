package middleware

import (
	"context"
	"errors"
	"net/http"

	"gitlab.com/realty/api/realty-listing-service/internal/application"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
	"gitlab.com/realty/api/realty-listing-service/pkg/contextkeys"
)

// AccessTokenCookie is the cookie that carries the signed access token.
const AccessTokenCookie = "access_token"

// TokenVerifier verifies a raw access token.
type TokenVerifier interface {
	Verify(raw string) (*domain.AuthenticatedUser, error)
}

// CookieAuthMiddleware requires a valid access token cookie and injects the
// AuthenticatedUser into the request context.
func CookieAuthMiddleware(tokens TokenVerifier, logger domain.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				logger.Debug(r.Context(), "Authentication failed: access token missing", "path", r.URL.Path)
				domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Unauthorized", "Sign in to continue.").
					WriteJSON(w, http.StatusUnauthorized)
				return
			}

			user, err := tokens.Verify(cookie.Value)
			if err != nil {
				logger.Warn(r.Context(), "Authentication failed", "path", r.URL.Path, "error", err.Error())
				switch {
				case errors.Is(err, application.ErrTokenExpired):
					domain.NewErrorResponse(domain.ErrCodeUnauthorized, "Session expired", "Sign in again.").
						WriteJSON(w, http.StatusUnauthorized)
				case errors.Is(err, application.ErrTokenInvalid):
					domain.NewErrorResponse(domain.ErrCodeForbidden, "Forbidden", "Access token is invalid.").
						WriteJSON(w, http.StatusForbidden)
				default:
					// Signing secret missing or similar server-side problem.
					domain.NewErrorResponse(domain.ErrCodeInternal, "An unexpected error occurred.", "").
						WriteJSON(w, http.StatusInternalServerError)
				}
				return
			}

			ctx := context.WithValue(r.Context(), contextkeys.AuthUserContextKey, user)
			ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthenticatedUser returns the user injected by CookieAuthMiddleware.
func AuthenticatedUser(ctx context.Context) (*domain.AuthenticatedUser, bool) {
	user, ok := ctx.Value(contextkeys.AuthUserContextKey).(*domain.AuthenticatedUser)
	return user, ok && user != nil
}
