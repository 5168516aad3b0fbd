package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// scanBatch is the COUNT hint passed to SCAN while enumerating a pattern.
const scanBatch = 200

// CacheStoreAdapter implements domain.CacheStore over the Redis protocol.
type CacheStoreAdapter struct {
	redisClient redis.UniversalClient
	logger      domain.Logger
}

// NewCacheStoreAdapter creates a new instance of CacheStoreAdapter.
func NewCacheStoreAdapter(redisClient redis.UniversalClient, logger domain.Logger) *CacheStoreAdapter {
	if redisClient == nil {
		panic("redisClient cannot be nil in NewCacheStoreAdapter")
	}
	if logger == nil {
		panic("logger cannot be nil in NewCacheStoreAdapter")
	}
	return &CacheStoreAdapter{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Get retrieves the raw value stored under key.
func (a *CacheStoreAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := a.redisClient.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		a.logger.Debug(ctx, "Redis GET miss", "key", key)
		return nil, false, nil
	}
	if err != nil {
		a.logger.Error(ctx, "Redis GET failed", "key", key, "error", err.Error())
		return nil, false, fmt.Errorf("redis GET for key '%s' failed: %w", key, err)
	}
	a.logger.Debug(ctx, "Redis GET hit", "key", key, "bytes", len(val))
	return val, true, nil
}

// SetEx stores value under key with the given expiry.
func (a *CacheStoreAdapter) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := a.redisClient.SetEx(ctx, key, value, ttl).Err(); err != nil {
		a.logger.Error(ctx, "Redis SETEX failed", "key", key, "ttl", ttl.String(), "error", err.Error())
		return fmt.Errorf("redis SETEX for key '%s' failed: %w", key, err)
	}
	a.logger.Debug(ctx, "Redis SETEX ok", "key", key, "ttl", ttl.String(), "bytes", len(value))
	return nil
}

// Keys enumerates the keys matching pattern. SCAN is used instead of KEYS so a
// large keyspace does not block the server; the result is the same set.
func (a *CacheStoreAdapter) Keys(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)
	iter := a.redisClient.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		// SCAN may return a key more than once.
		k := iter.Val()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if err := iter.Err(); err != nil {
		a.logger.Error(ctx, "Redis SCAN failed", "pattern", pattern, "error", err.Error())
		return nil, fmt.Errorf("redis SCAN for pattern '%s' failed: %w", pattern, err)
	}
	a.logger.Debug(ctx, "Redis SCAN complete", "pattern", pattern, "matched", len(keys))
	return keys, nil
}

// Del removes key and reports whether it existed.
func (a *CacheStoreAdapter) Del(ctx context.Context, key string) (bool, error) {
	n, err := a.redisClient.Del(ctx, key).Result()
	if err != nil {
		a.logger.Error(ctx, "Redis DEL failed", "key", key, "error", err.Error())
		return false, fmt.Errorf("redis DEL for key '%s' failed: %w", key, err)
	}
	return n == 1, nil
}

// Ping checks connectivity.
func (a *CacheStoreAdapter) Ping(ctx context.Context) error {
	if err := a.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis PING failed: %w", err)
	}
	return nil
}
