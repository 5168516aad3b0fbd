package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/metrics"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// maxParallelDeletes bounds the per-key DEL fan-out of one invalidation.
const maxParallelDeletes = 16

// CachePolicy layers read-through and write-invalidate semantics over a
// domain.CacheStore. The cache is an accelerator only: store failures are
// logged and turned into misses, no-ops or a false invalidation result, never
// into errors for the caller.
type CachePolicy struct {
	store  domain.CacheStore
	logger domain.Logger
}

// NewCachePolicy creates a new CachePolicy.
func NewCachePolicy(store domain.CacheStore, logger domain.Logger) *CachePolicy {
	if store == nil {
		panic("cache store is nil in NewCachePolicy")
	}
	if logger == nil {
		panic("logger is nil in NewCachePolicy")
	}
	return &CachePolicy{store: store, logger: logger}
}

// GetCache decodes the entry stored under key into dest and reports a hit.
// An absent, expired, unreadable or undecodable entry is a miss.
func (p *CachePolicy) GetCache(ctx context.Context, class domain.CacheClass, key string, dest any) bool {
	raw, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn(ctx, "Cache read failed, falling back to store", "class", class.String(), "key", key, "error", err.Error())
		metrics.ObserveLookup(class.String(), metrics.LookupError)
		return false
	}
	if !ok || isNullPayload(raw) {
		metrics.ObserveLookup(class.String(), metrics.LookupMiss)
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		p.logger.Warn(ctx, "Cached entry is not decodable, treating as miss", "class", class.String(), "key", key, "error", err.Error())
		metrics.ObserveLookup(class.String(), metrics.LookupError)
		return false
	}
	metrics.ObserveLookup(class.String(), metrics.LookupHit)
	return true
}

// SetCache serializes value and stores it under key with the class TTL,
// replacing any existing entry. Only serialization failures are returned.
func (p *CachePolicy) SetCache(ctx context.Context, class domain.CacheClass, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		metrics.ObserveWrite(class.String(), metrics.ResultFailed)
		return fmt.Errorf("failed to serialize cache entry for key '%s': %w", key, err)
	}
	if err := p.store.SetEx(ctx, key, payload, class.TTL()); err != nil {
		p.logger.Warn(ctx, "Cache write failed", "class", class.String(), "key", key, "error", err.Error())
		metrics.ObserveWrite(class.String(), metrics.ResultFailed)
		return nil
	}
	metrics.ObserveWrite(class.String(), metrics.ResultOK)
	return nil
}

// InvalidateCache deletes every key matching pattern and then re-enumerates
// the pattern to verify nothing is left. It returns false when any step fails
// or keys remain afterwards; a pattern with no matches is a success.
// The sequence is not atomic: a write landing after the final enumeration is
// not detected.
func (p *CachePolicy) InvalidateCache(ctx context.Context, pattern string) bool {
	keys, err := p.store.Keys(ctx, pattern)
	if err != nil {
		p.logger.Error(ctx, "Cache invalidation aborted: key enumeration failed", "pattern", pattern, "error", err.Error())
		metrics.ObserveInvalidation(metrics.ResultFailed, 0)
		return false
	}
	if len(keys) == 0 {
		p.logger.Debug(ctx, "Cache invalidation matched no keys", "pattern", pattern)
		metrics.ObserveInvalidation(metrics.ResultOK, 0)
		return true
	}

	var deleted atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDeletes)
	for _, key := range keys {
		g.Go(func() error {
			ok, err := p.store.Del(gctx, key)
			if err != nil {
				return err
			}
			if ok {
				deleted.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.Error(ctx, "Cache invalidation aborted: key deletion failed", "pattern", pattern, "matched", len(keys), "deleted", deleted.Load(), "error", err.Error())
		metrics.ObserveInvalidation(metrics.ResultFailed, int(deleted.Load()))
		return false
	}
	if n := int(deleted.Load()); n < len(keys) {
		// Keys that expired between enumeration and DEL are already gone.
		p.logger.Debug(ctx, "Some matched keys were already gone at deletion", "pattern", pattern, "matched", len(keys), "deleted", n)
	}

	remaining, err := p.store.Keys(ctx, pattern)
	if err != nil {
		p.logger.Error(ctx, "Cache invalidation verification failed", "pattern", pattern, "error", err.Error())
		metrics.ObserveInvalidation(metrics.ResultFailed, int(deleted.Load()))
		return false
	}
	if len(remaining) > 0 {
		p.logger.Error(ctx, "Cache invalidation left keys behind", "pattern", pattern, "remaining_keys", remaining)
		metrics.ObserveInvalidation(metrics.ResultFailed, int(deleted.Load()))
		return false
	}

	p.logger.Debug(ctx, "Cache invalidation complete", "pattern", pattern, "deleted", deleted.Load())
	metrics.ObserveInvalidation(metrics.ResultOK, int(deleted.Load()))
	return true
}

// Ping reports whether the underlying store is reachable.
func (p *CachePolicy) Ping(ctx context.Context) error {
	return p.store.Ping(ctx)
}

// isNullPayload reports entries that hold no value. Earlier deployments could
// store a JSON null, which reads the same as "not cached".
func isNullPayload(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
