// Package breaker guards a domain.CacheStore with a circuit breaker so that an
// unreachable cache costs one fast local failure per call instead of a network
// timeout on every request.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/metrics"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// Settings tunes the breaker.
type Settings struct {
	Name           string
	MaxFailures    uint32        // consecutive failures that open the circuit
	OpenTimeout    time.Duration // time spent open before probing
	HalfOpenProbes uint32        // requests allowed through while half-open
}

// CacheStore decorates a domain.CacheStore with a gobreaker.CircuitBreaker.
type CacheStore struct {
	next   domain.CacheStore
	cb     *gobreaker.CircuitBreaker
	logger domain.Logger
}

// NewCacheStore wraps next.
func NewCacheStore(next domain.CacheStore, st Settings, logger domain.Logger) *CacheStore {
	if st.MaxFailures == 0 {
		st.MaxFailures = 5
	}
	if st.OpenTimeout <= 0 {
		st.OpenTimeout = 30 * time.Second
	}
	if st.HalfOpenProbes == 0 {
		st.HalfOpenProbes = 1
	}
	s := &CacheStore{next: next, logger: logger}
	s.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        st.Name,
		MaxRequests: st.HalfOpenProbes,
		Timeout:     st.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= st.MaxFailures
		},
		// A cancelled request says nothing about the store's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(context.Background(), "Cache circuit breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
			metrics.SetBreakerState(name, float64(to))
		},
	})
	metrics.SetBreakerState(st.Name, float64(gobreaker.StateClosed))
	return s
}

// State exposes the current breaker state, e.g. for readiness reporting.
func (s *CacheStore) State() gobreaker.State {
	return s.cb.State()
}

// Get reads key through the breaker. A miss is not counted as a failure.
func (s *CacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	type getResult struct {
		val []byte
		ok  bool
	}
	res, err := s.cb.Execute(func() (interface{}, error) {
		val, ok, err := s.next.Get(ctx, key)
		return getResult{val: val, ok: ok}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := res.(getResult)
	return r.val, r.ok, nil
}

// SetEx writes key through the breaker.
func (s *CacheStore) SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.SetEx(ctx, key, value, ttl)
	})
	return err
}

// Keys enumerates pattern through the breaker.
func (s *CacheStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Keys(ctx, pattern)
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

// Del removes key through the breaker.
func (s *CacheStore) Del(ctx context.Context, key string) (bool, error) {
	res, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.Del(ctx, key)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (s *CacheStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
