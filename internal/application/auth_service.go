package application

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// Session is the result of a successful sign-in.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// GoogleProfile is the identity the client obtained from Google sign-in.
type GoogleProfile struct {
	Name     string
	Email    string
	PhotoURL string
}

// AuthService handles account creation and credential checks.
type AuthService struct {
	users  domain.UserStore
	tokens *TokenService
	config config.Provider
	logger domain.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserStore, tokens *TokenService, cfg config.Provider, logger domain.Logger) *AuthService {
	if users == nil {
		panic("user store is nil in NewAuthService")
	}
	if tokens == nil {
		panic("token service is nil in NewAuthService")
	}
	if cfg == nil {
		panic("config provider is nil in NewAuthService")
	}
	if logger == nil {
		panic("logger is nil in NewAuthService")
	}
	return &AuthService{users: users, tokens: tokens, config: cfg, logger: logger}
}

// HashPassword hashes a plaintext password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	cost := s.config.Get().Auth.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SignUp creates a new active account.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*domain.User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Username:     strings.TrimSpace(username),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info(ctx, "User signed up", "user_id", user.ID)
	return user, nil
}

// SignIn verifies email and password and issues an access token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user.AccountStatus == domain.AccountStatusDeleted {
		return nil, domain.ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn(ctx, "Sign-in rejected", "user_id", user.ID, "reason", "password mismatch")
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

// GoogleSignIn signs in the account registered under the profile email,
// creating it with a random password on first use.
func (s *AuthService) GoogleSignIn(ctx context.Context, profile GoogleProfile) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(profile.Email))
	switch {
	case err == nil:
		if user.AccountStatus == domain.AccountStatusDeleted {
			return nil, domain.ErrAccountDisabled
		}
		return s.session(user)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	password, err := randomHex(s.config.Get().Auth.GooglePasswordSize)
	if err != nil {
		return nil, err
	}
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}
	suffix, err := randomHex(2)
	if err != nil {
		return nil, err
	}
	user = &domain.User{
		Username:     googleUsername(profile.Name, suffix),
		Email:        strings.TrimSpace(profile.Email),
		PasswordHash: hash,
		Avatar:       profile.PhotoURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info(ctx, "User created from Google profile", "user_id", user.ID)
	return s.session(user)
}

func (s *AuthService) session(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// googleUsername derives a username from a display name: spaces removed,
// lowercased, cut to fit, and suffixed to avoid collisions.
func googleUsername(name, suffix string) string {
	base := []rune(strings.ToLower(strings.Join(strings.Fields(name), "")))
	if len(base) == 0 {
		base = []rune("user")
	}
	if limit := 20 - len(suffix); len(base) > limit {
		base = base[:limit]
	}
	return string(base) + suffix
}

func randomHex(n int) (string, error) {
	if n <= 0 {
		n = 16
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
