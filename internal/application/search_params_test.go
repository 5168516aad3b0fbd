package application

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

func TestNormalizeSearchParamsDefaults(t *testing.T) {
	got := NormalizeSearchParams(domain.SearchParams{}, 0)
	assert.Equal(t, domain.SearchParams{
		Limit:       DefaultSearchLimit,
		StartIndex:  0,
		Offer:       domain.FilterOff,
		Furnished:   domain.FilterOff,
		Parking:     domain.FilterOff,
		ListingType: "all",
		SearchTerm:  "",
		Sort:        SortCreatedAt,
		Order:       OrderDesc,
	}, got)
}

func TestNormalizeSearchParams(t *testing.T) {
	tests := []struct {
		name string
		in   domain.SearchParams
		max  int
		want func(p domain.SearchParams) bool
	}{
		{"limit is capped", domain.SearchParams{Limit: 500}, 20, func(p domain.SearchParams) bool { return p.Limit == 20 }},
		{"negative start index", domain.SearchParams{StartIndex: -4}, 0, func(p domain.SearchParams) bool { return p.StartIndex == 0 }},
		{"truthy flag", domain.SearchParams{Offer: "TRUE", Parking: "1"}, 0, func(p domain.SearchParams) bool {
			return p.Offer == domain.FilterOn && p.Parking == domain.FilterOn && p.Furnished == domain.FilterOff
		}},
		{"unknown listing type", domain.SearchParams{ListingType: "lease"}, 0, func(p domain.SearchParams) bool { return p.ListingType == "all" }},
		{"sale listing type", domain.SearchParams{ListingType: "Sale"}, 0, func(p domain.SearchParams) bool { return p.ListingType == "sale" }},
		{"unknown sort column", domain.SearchParams{Sort: "password"}, 0, func(p domain.SearchParams) bool { return p.Sort == SortCreatedAt }},
		{"price ascending", domain.SearchParams{Sort: SortRegularPrice, Order: "ASC"}, 0, func(p domain.SearchParams) bool {
			return p.Sort == SortRegularPrice && p.Order == OrderAsc
		}},
		{"search term trimmed", domain.SearchParams{SearchTerm: "  villa "}, 0, func(p domain.SearchParams) bool { return p.SearchTerm == "villa" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want(NormalizeSearchParams(tt.in, tt.max)))
		})
	}
}
