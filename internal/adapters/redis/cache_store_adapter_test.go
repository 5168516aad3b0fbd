package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/logger"
)

func newTestAdapter(t *testing.T) (*CacheStoreAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheStoreAdapter(client, logger.NewFromZap(zap.NewNop())), mr
}

func TestCacheStoreAdapterGetMiss(t *testing.T) {
	a, _ := newTestAdapter(t)

	val, ok, err := a.Get(context.Background(), "string:listing:nope:details")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestCacheStoreAdapterSetExThenGet(t *testing.T) {
	a, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.SetEx(ctx, "k", []byte(`{"a":1}`), 30*time.Minute))

	val, ok, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(val))
	assert.Equal(t, 30*time.Minute, mr.TTL("k"))
}

func TestCacheStoreAdapterEntryExpires(t *testing.T) {
	a, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, a.SetEx(ctx, "k", []byte("v"), time.Minute))
	mr.FastForward(61 * time.Second)

	_, ok, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCacheStoreAdapterKeysAndDel(t *testing.T) {
	a, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(`string:listings:search:{"limit":9}`, "[]"))
	require.NoError(t, mr.Set(`string:listings:search:{"limit":3}`, "[]"))
	require.NoError(t, mr.Set("string:listing:1:details", "{}"))

	keys, err := a.Keys(ctx, "string:listings:search:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		`string:listings:search:{"limit":9}`,
		`string:listings:search:{"limit":3}`,
	}, keys)

	deleted, err := a.Del(ctx, `string:listings:search:{"limit":9}`)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = a.Del(ctx, `string:listings:search:{"limit":9}`)
	require.NoError(t, err)
	assert.False(t, deleted)

	assert.True(t, mr.Exists("string:listing:1:details"))
}

func TestCacheStoreAdapterReportsStoreErrors(t *testing.T) {
	a, mr := newTestAdapter(t)
	ctx := context.Background()
	mr.Close()

	_, _, err := a.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, a.SetEx(ctx, "k", []byte("v"), time.Minute))
	_, err = a.Keys(ctx, "*")
	assert.Error(t, err)
	_, err = a.Del(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, a.Ping(ctx))
}
