package domain

import (
	"context"
	"time"
)

// CacheStore is the raw key-value store behind the cache policy.
// Implementations report store failures as errors; containing them is the
// policy's job, not the store's.
type CacheStore interface {
	// Get returns the stored bytes and true, or (nil, false, nil) when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// SetEx stores value under key with the given expiry, overwriting any existing entry.
	SetEx(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Keys returns every key currently matching the glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Del removes a single key and reports whether it existed.
	Del(ctx context.Context, key string) (bool, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// CacheClass identifies the query shape a cache entry belongs to.
type CacheClass int

const (
	CacheClassSearchResults CacheClass = iota + 1
	CacheClassListingDetail
	// CacheClassHomePage and CacheClassUserProfile are reserved for the home-page
	// and profile views; their TTLs match entries written by earlier deployments.
	CacheClassHomePage
	CacheClassUserProfile
	CacheClassUserListings
)

// DefaultCacheTTL applies to classes outside the table.
const DefaultCacheTTL = time.Hour

// TTL returns the expiry assigned to the class.
func (c CacheClass) TTL() time.Duration {
	switch c {
	case CacheClassSearchResults:
		return 30 * time.Minute
	case CacheClassListingDetail:
		return 24 * time.Hour
	case CacheClassHomePage:
		return 15 * time.Minute
	case CacheClassUserProfile:
		return time.Hour
	case CacheClassUserListings:
		return 30 * time.Minute
	default:
		return DefaultCacheTTL
	}
}

// String is used as the metrics label and in logs.
func (c CacheClass) String() string {
	switch c {
	case CacheClassSearchResults:
		return "search_results"
	case CacheClassListingDetail:
		return "listing_detail"
	case CacheClassHomePage:
		return "home_page"
	case CacheClassUserProfile:
		return "user_profile"
	case CacheClassUserListings:
		return "user_listings"
	default:
		return "unknown"
	}
}
