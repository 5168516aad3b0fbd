package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/logger"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/memory"
)

type flakyStore struct {
	*memory.CacheStore
	fail  bool
	calls int
}

var errDown = errors.New("store down")

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.calls++
	if f.fail {
		return nil, false, errDown
	}
	return f.CacheStore.Get(ctx, key)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyStore{CacheStore: memory.NewCacheStore(), fail: true}
	s := NewCacheStore(inner, Settings{Name: "test-open", MaxFailures: 3, OpenTimeout: time.Hour}, logger.NewFromZap(zap.NewNop()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := s.Get(ctx, "k")
		assert.ErrorIs(t, err, errDown)
	}
	assert.Equal(t, gobreaker.StateOpen, s.State())

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, inner.calls, "open breaker must not reach the store")
}

func TestBreakerPassesResultsThrough(t *testing.T) {
	inner := &flakyStore{CacheStore: memory.NewCacheStore()}
	s := NewCacheStore(inner, Settings{Name: "test-pass"}, logger.NewFromZap(zap.NewNop()))
	ctx := context.Background()

	require.NoError(t, s.SetEx(ctx, "string:listing:1:details", []byte("{}"), time.Minute))

	val, ok, err := s.Get(ctx, "string:listing:1:details")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{}", string(val))

	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.Keys(ctx, "string:listing:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"string:listing:1:details"}, keys)

	deleted, err := s.Del(ctx, "string:listing:1:details")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, gobreaker.StateClosed, s.State())
}
