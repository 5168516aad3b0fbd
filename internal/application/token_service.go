package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

var (
	ErrTokenInvalid = errors.New("access token is invalid")
	ErrTokenExpired = errors.New("access token has expired")
)

// defaultTokenTTL applies when auth.token_ttl_seconds is not set.
const defaultTokenTTL = 15 * time.Minute

// accessClaims is the signed payload of an access token.
type accessClaims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.
// The signing secret is read from config on every call so a reload takes effect immediately.
type TokenService struct {
	config config.Provider
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg config.Provider) *TokenService {
	if cfg == nil {
		panic("config provider is nil in NewTokenService")
	}
	return &TokenService{config: cfg}
}

// TTL returns the configured access token lifetime.
func (s *TokenService) TTL() time.Duration {
	if secs := s.config.Get().Auth.TokenTTLSeconds; secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultTokenTTL
}

func (s *TokenService) secret() ([]byte, error) {
	secret := s.config.Get().Auth.JWTSecret
	if secret == "" {
		return nil, errors.New("application not configured for token signing")
	}
	return []byte(secret), nil
}

// Issue signs an access token for user and returns it with its expiry.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	secret, err := s.secret()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt := now.Add(s.TTL())
	claims := accessClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks the signature and expiry of raw and returns the user it was issued to.
func (s *TokenService) Verify(raw string) (*domain.AuthenticatedUser, error) {
	secret, err := s.secret()
	if err != nil {
		return nil, err
	}
	var claims accessClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return &domain.AuthenticatedUser{ID: claims.UserID, Username: claims.Username, Email: claims.Email}, nil
}
