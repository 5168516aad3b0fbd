package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// ProfileChanges carries the optional fields of a profile update. Empty fields are left unchanged.
type ProfileChanges struct {
	Username string
	Password string
	Avatar   string
}

// UploadSignature authorizes one signed client-side image upload to the asset host.
type UploadSignature struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	APIKey       string `json:"api_key"`
	CloudName    string `json:"cloud_name"`
	UploadPreset string `json:"upload_preset"`
}

// UserService manages profiles of signed-in users.
type UserService struct {
	users  domain.UserStore
	auth   *AuthService
	config config.Provider
	logger domain.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserStore, auth *AuthService, cfg config.Provider, logger domain.Logger) *UserService {
	if users == nil {
		panic("user store is nil in NewUserService")
	}
	if auth == nil {
		panic("auth service is nil in NewUserService")
	}
	if cfg == nil {
		panic("config provider is nil in NewUserService")
	}
	if logger == nil {
		panic("logger is nil in NewUserService")
	}
	return &UserService{users: users, auth: auth, config: cfg, logger: logger, now: time.Now}
}

// UpdateProfile applies changes to the requester's own account.
func (s *UserService) UpdateProfile(ctx context.Context, requester domain.AuthenticatedUser, userID string, changes ProfileChanges) (*domain.User, error) {
	if requester.ID != userID {
		return nil, fmt.Errorf("%w: can only update own account", domain.ErrForbidden)
	}
	update := domain.ProfileUpdate{
		Username: strings.TrimSpace(changes.Username),
		Avatar:   strings.TrimSpace(changes.Avatar),
	}
	if changes.Password != "" {
		hash, err := s.auth.HashPassword(changes.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = hash
	}
	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrDuplicateUser) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user '%s': %w", userID, err)
	}
	return user, nil
}

// DeleteAccount marks the requester's own account deleted. Listings of the account are kept.
func (s *UserService) DeleteAccount(ctx context.Context, requester domain.AuthenticatedUser, userID string) error {
	if requester.ID != userID {
		return fmt.Errorf("%w: can only delete own account", domain.ErrForbidden)
	}
	if err := s.users.SetAccountStatus(ctx, userID, domain.AccountStatusDeleted); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	s.logger.Info(ctx, "User account deleted", "user_id", userID)
	return nil
}

// GetUser returns the public profile of an account, used to contact a listing owner.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.AccountStatus == domain.AccountStatusDeleted {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// SignUpload signs the parameters of a client-side upload with the asset host secret.
func (s *UserService) SignUpload() (*UploadSignature, error) {
	host := s.config.Get().AssetHost
	if host.APISecret == "" || host.APIKey == "" {
		return nil, errors.New("application not configured for image uploads")
	}
	ts := s.now().Unix()
	params := map[string]string{
		"timestamp":     strconv.FormatInt(ts, 10),
		"upload_preset": host.UploadPreset,
	}
	return &UploadSignature{
		Signature:    signParams(params, host.APISecret),
		Timestamp:    ts,
		APIKey:       host.APIKey,
		CloudName:    host.CloudName,
		UploadPreset: host.UploadPreset,
	}, nil
}

// signParams produces the asset host request signature: the parameters
// sorted by name, joined as k=v with '&', suffixed by the secret, SHA-1 hex.
func signParams(params map[string]string, secret string) string {
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	pairs := make([]string, 0, len(names))
	for _, k := range names {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
