package rediskeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/memory"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

func TestSearchKeyFormat(t *testing.T) {
	key, err := SearchKey(domain.SearchParams{
		Limit:       9,
		StartIndex:  0,
		Offer:       "true",
		Furnished:   "true",
		Parking:     "true",
		ListingType: "rent",
		SearchTerm:  "",
		Sort:        "createdAt",
		Order:       "desc",
	})
	require.NoError(t, err)
	assert.Equal(t,
		`string:listings:search:{"limit":9,"startIndex":0,"offer":"true","furnished":"true","parking":"true","listingType":"rent","searchTerm":"","sort":"createdAt","order":"desc"}`,
		key)
}

func TestSearchKeyIgnoresConstructionOrder(t *testing.T) {
	a := domain.SearchParams{Order: "asc", Sort: "regularPrice", SearchTerm: "loft", Limit: 12}
	b := domain.SearchParams{Limit: 12, SearchTerm: "loft", Sort: "regularPrice", Order: "asc"}

	keyA, err := SearchKey(a)
	require.NoError(t, err)
	keyB, err := SearchKey(b)
	require.NoError(t, err)
	assert.Equal(t, keyA, keyB)
}

func TestSearchKeyDoesNotEscapeHTML(t *testing.T) {
	key, err := SearchKey(domain.SearchParams{SearchTerm: "a&b <c>"})
	require.NoError(t, err)
	assert.Contains(t, key, `"searchTerm":"a&b <c>"`)
}

func TestSearchKeySerializationError(t *testing.T) {
	_, err := SearchKey(func() {})
	assert.Error(t, err)
}

func TestKeyTemplates(t *testing.T) {
	assert.Equal(t, "string:listing:65f1:details", ListingDetailKey("65f1"))
	assert.Equal(t, "string:users:u-7:listings", UserListingsKey("u-7"))
	assert.Equal(t, "string:listings:search:*", SearchInvalidationPattern())
	assert.Equal(t, "string:users:*:listings", UserListingsInvalidationPattern())
}

func TestPatternsMatchGeneratedKeys(t *testing.T) {
	search, err := SearchKey(domain.SearchParams{Limit: 9, ListingType: "all"})
	require.NoError(t, err)

	assert.True(t, memory.MatchGlob(SearchInvalidationPattern(), search))
	assert.True(t, memory.MatchGlob(UserListingsInvalidationPattern(), UserListingsKey("u-1")))
	assert.False(t, memory.MatchGlob(SearchInvalidationPattern(), ListingDetailKey("l-1")))
	assert.False(t, memory.MatchGlob(UserListingsInvalidationPattern(), ListingDetailKey("l-1")))
}
