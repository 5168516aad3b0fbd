package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"string:listings:search:*", `string:listings:search:{"limit":9,"searchTerm":"a/b"}`, true},
		{"string:listings:search:*", "string:listing:1:details", false},
		{"string:users:*:listings", "string:users:64f1:listings", true},
		{"string:users:*:listings", "string:users:64f1:listings:extra", false},
		{"string:listing:1:details", "string:listing:1:details", true},
		{"string:listing:1:details", "string:listing:10:details", false},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h[ae]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-c]llo", "hbllo", true},
		{`h\*llo`, "h*llo", true},
		{`h\*llo`, "hello", false},
		{"**", "", true},
		{"a[b", "a[b", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchGlob(tt.pattern, tt.key), "MatchGlob(%q, %q)", tt.pattern, tt.key)
	}
}

func TestCacheStoreExpiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewCacheStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, s.SetEx(ctx, "string:users:u1:listings", []byte("[]"), 30*time.Minute))

	_, ok, err := s.Get(ctx, "string:users:u1:listings")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(30 * time.Minute)
	_, ok, err = s.Get(ctx, "string:users:u1:listings")
	require.NoError(t, err)
	assert.False(t, ok)

	keys, err := s.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestCacheStoreDel(t *testing.T) {
	s := NewCacheStore()
	ctx := context.Background()
	require.NoError(t, s.SetEx(ctx, "a", []byte("1"), time.Minute))

	deleted, err := s.Del(ctx, "a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Del(ctx, "a")
	require.NoError(t, err)
	assert.False(t, deleted)
}
