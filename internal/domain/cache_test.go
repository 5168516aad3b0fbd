package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheClassTTL(t *testing.T) {
	tests := []struct {
		class CacheClass
		want  time.Duration
		label string
	}{
		{CacheClassSearchResults, 1800 * time.Second, "search_results"},
		{CacheClassListingDetail, 86400 * time.Second, "listing_detail"},
		{CacheClassHomePage, 900 * time.Second, "home_page"},
		{CacheClassUserProfile, 3600 * time.Second, "user_profile"},
		{CacheClassUserListings, 1800 * time.Second, "user_listings"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.class.TTL())
			assert.Equal(t, tt.label, tt.class.String())
		})
	}
}

func TestUnknownCacheClassUsesDefault(t *testing.T) {
	var unknown CacheClass = 42
	assert.Equal(t, DefaultCacheTTL, unknown.TTL())
	assert.Equal(t, time.Hour, unknown.TTL())
	assert.Equal(t, "unknown", unknown.String())
}
