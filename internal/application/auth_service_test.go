package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/logger"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/memory"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

func testConfig() config.StaticProvider {
	return config.StaticProvider{Config: &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "test-secret",
			TokenTTLSeconds:    60,
			BcryptCost:         4,
			GooglePasswordSize: 8,
		},
		AssetHost: config.AssetHostConfig{
			CloudName:    "demo",
			APIKey:       "key",
			APISecret:    "shh",
			UploadPreset: "mern_realty_secure",
		},
	}}
}

func newAuthFixture(t *testing.T) (*AuthService, *UserService, *TokenService, *memory.UserStore) {
	t.Helper()
	cfg := testConfig()
	log := logger.NewFromZap(zap.NewNop())
	users := memory.NewUserStore()
	tokens := NewTokenService(cfg)
	auth := NewAuthService(users, tokens, cfg, log)
	return auth, NewUserService(users, auth, cfg, log), tokens, users
}

func TestSignUpThenSignIn(t *testing.T) {
	auth, _, tokens, _ := newAuthFixture(t)
	ctx := context.Background()

	user, err := auth.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.Equal(t, domain.DefaultAvatarURL, user.Avatar)

	session, err := auth.SignIn(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), session.ExpiresAt, 5*time.Second)

	claims, err := tokens.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.AuthenticatedUser{ID: user.ID, Username: "alice", Email: "alice@example.com"}, *claims)
}

func TestSignInFailures(t *testing.T) {
	auth, users, _, _ := newAuthFixture(t)
	ctx := context.Background()
	user, err := auth.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, err = auth.SignIn(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	require.NoError(t, users.DeleteAccount(ctx, domain.AuthenticatedUser{ID: user.ID}, user.ID))
	_, err = auth.SignIn(ctx, "alice@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestSignUpRejectsDuplicates(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()
	_, err := auth.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	_, err = auth.SignUp(ctx, "alice", "other@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
	_, err = auth.SignUp(ctx, "alice2", "ALICE@example.com", "hunter22")
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestGoogleSignInCreatesOnceThenReuses(t *testing.T) {
	auth, _, _, _ := newAuthFixture(t)
	ctx := context.Background()
	profile := GoogleProfile{Name: "Jane Q Public", Email: "jane@example.com", PhotoURL: "https://img.example.com/jane.png"}

	first, err := auth.GoogleSignIn(ctx, profile)
	require.NoError(t, err)
	assert.Regexp(t, `^janeqpublic[0-9a-f]{4}$`, first.User.Username)
	assert.Equal(t, profile.PhotoURL, first.User.Avatar)

	second, err := auth.GoogleSignIn(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestGoogleUsernameFitsLimit(t *testing.T) {
	assert.Equal(t, "abcdefghijklmnopab12", googleUsername("Abcdefghij Klmnopqrstuvwxyz", "ab12"))
	assert.Equal(t, "userab12", googleUsername("   ", "ab12"))
}

func TestTokenVerifyRejectsTampering(t *testing.T) {
	_, _, tokens, _ := newAuthFixture(t)
	signed, _, err := tokens.Issue(&domain.User{ID: "u1", Username: "u", Email: "u@example.com"})
	require.NoError(t, err)

	_, err = tokens.Verify(signed + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := NewTokenService(config.StaticProvider{Config: &config.Config{Auth: config.AuthConfig{JWTSecret: "other"}}})
	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	tokens := NewTokenService(config.StaticProvider{Config: &config.Config{Auth: config.AuthConfig{JWTSecret: "s", TokenTTLSeconds: -1}}})
	// A negative TTL falls back to the default, so build an expired token by hand.
	assert.Equal(t, defaultTokenTTL, tokens.TTL())

	expired, err := signForTest("s", accessClaims{UserID: "u1"}, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = tokens.Verify(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestUserServiceProfileRules(t *testing.T) {
	auth, users, _, _ := newAuthFixture(t)
	ctx := context.Background()
	alice, err := auth.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	require.NoError(t, err)
	_, err = auth.SignUp(ctx, "bob", "bob@example.com", "hunter22")
	require.NoError(t, err)
	self := domain.AuthenticatedUser{ID: alice.ID}

	_, err = users.UpdateProfile(ctx, domain.AuthenticatedUser{ID: "someone"}, alice.ID, ProfileChanges{Username: "mallory"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = users.UpdateProfile(ctx, self, alice.ID, ProfileChanges{Username: "bob"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)

	updated, err := users.UpdateProfile(ctx, self, alice.ID, ProfileChanges{Username: "alice2", Password: "newpass1"})
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	_, err = auth.SignIn(ctx, "alice@example.com", "newpass1")
	assert.NoError(t, err)

	require.NoError(t, users.DeleteAccount(ctx, self, alice.ID))
	_, err = users.GetUser(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSignUpload(t *testing.T) {
	_, users, _, _ := newAuthFixture(t)
	users.now = func() time.Time { return time.Unix(1700000000, 0) }

	sig, err := users.SignUpload()
	require.NoError(t, err)

	sum := sha1.Sum([]byte("timestamp=1700000000&upload_preset=mern_realty_secureshh"))
	assert.Equal(t, hex.EncodeToString(sum[:]), sig.Signature)
	assert.Equal(t, int64(1700000000), sig.Timestamp)
	assert.Equal(t, "key", sig.APIKey)
	assert.Equal(t, "demo", sig.CloudName)
}

func signForTest(secret string, c accessClaims, expiresAt time.Time) (string, error) {
	c.ExpiresAt = jwt.NewNumericDate(expiresAt)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
