package memory

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// CacheStore is an in-process domain.CacheStore with per-entry expiry.
// Expired entries are dropped lazily on access.
type CacheStore struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewCacheStore creates an empty store.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]cacheEntry), now: time.Now}
}

// WithClock replaces the time source. Used by tests to expire entries.
func (s *CacheStore) WithClock(now func() time.Time) *CacheStore {
	s.now = now
	return s
}

func (s *CacheStore) liveLocked(key string) (cacheEntry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return cacheEntry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return cacheEntry{}, false
	}
	return e, true
}

func (s *CacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (s *CacheStore) SetEx(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = cacheEntry{value: append([]byte(nil), value...), expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *CacheStore) Keys(_ context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0)
	for k := range s.entries {
		if _, ok := s.liveLocked(k); !ok {
			continue
		}
		if MatchGlob(pattern, k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *CacheStore) Del(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liveLocked(key)
	delete(s.entries, key)
	return ok, nil
}

func (s *CacheStore) Ping(context.Context) error { return nil }

// MatchGlob reports whether key matches a Redis-style glob pattern.
// Supported: * (any run, including separators), ? (one byte), [abc], [^abc],
// [a-z] and backslash escapes.
func MatchGlob(pattern, key string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(key); i++ {
				if MatchGlob(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(key) == 0 {
				return false
			}
			key = key[1:]
			pattern = pattern[1:]
		case '[':
			if len(key) == 0 {
				return false
			}
			end, matched := matchClass(pattern, key[0])
			if end < 0 {
				// Unterminated class: treat '[' literally.
				if key[0] != '[' {
					return false
				}
				key, pattern = key[1:], pattern[1:]
				continue
			}
			if !matched {
				return false
			}
			key = key[1:]
			pattern = pattern[end+1:]
		case '\\':
			if len(pattern) > 1 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
			key = key[1:]
			pattern = pattern[1:]
		}
	}
	return len(key) == 0
}

// matchClass evaluates the bracket expression at the start of pattern against c.
// It returns the index of the closing bracket, or -1 if there is none.
func matchClass(pattern string, c byte) (int, bool) {
	i := 1
	negate := false
	if i < len(pattern) && pattern[i] == '^' {
		negate = true
		i++
	}
	matched := false
	for ; i < len(pattern); i++ {
		switch {
		case pattern[i] == ']':
			return i, matched != negate
		case pattern[i] == '\\' && i+1 < len(pattern):
			i++
			if pattern[i] == c {
				matched = true
			}
		case i+2 < len(pattern) && pattern[i+1] == '-' && pattern[i+2] != ']':
			lo, hi := pattern[i], pattern[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 2
		default:
			if pattern[i] == c {
				matched = true
			}
		}
	}
	return -1, false
}
