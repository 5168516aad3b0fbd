package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/logger"
	"gitlab.com/realty/api/realty-listing-service/internal/application"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
	"gitlab.com/realty/api/realty-listing-service/pkg/contextkeys"
)

func newTokens() *application.TokenService {
	return application.NewTokenService(config.StaticProvider{Config: &config.Config{
		Auth: config.AuthConfig{JWTSecret: "middleware-secret", TokenTTLSeconds: 60},
	}})
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := AuthenticatedUser(r.Context())
		require.True(t, ok)
		assert.Equal(t, user.ID, r.Context().Value(contextkeys.UserIDKey))
		_ = json.NewEncoder(w).Encode(user)
	})
}

func TestCookieAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	mw := CookieAuthMiddleware(tokens, logger.NewFromZap(zap.NewNop()))
	signed, _, err := tokens.Issue(&domain.User{ID: "u1", Username: "alice", Email: "a@example.com"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		cookie     *http.Cookie
		wantStatus int
		wantCode   domain.ErrorCode
	}{
		{"missing cookie", nil, http.StatusUnauthorized, domain.ErrCodeUnauthorized},
		{"garbage token", &http.Cookie{Name: AccessTokenCookie, Value: "not-a-jwt"}, http.StatusForbidden, domain.ErrCodeForbidden},
		{"valid token", &http.Cookie{Name: AccessTokenCookie, Value: signed}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/user/listings/u1", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			rec := httptest.NewRecorder()
			mw(echoUser(t)).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				var body domain.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.False(t, body.Success)
				assert.Equal(t, tt.wantStatus, body.StatusCode)
				assert.Equal(t, tt.wantCode, body.Code)
				return
			}
			var user domain.AuthenticatedUser
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
			assert.Equal(t, "alice", user.Username)
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen any
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Context().Value(contextkeys.RequestIDKey)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(XRequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(XRequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get(XRequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(XRequestIDHeader, "bad id\nwith newline")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id\nwith newline", rec.Header().Get(XRequestIDHeader))
	assert.Len(t, rec.Header().Get(XRequestIDHeader), 36)
}
