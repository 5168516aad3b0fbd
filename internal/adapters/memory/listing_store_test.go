package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

func seedListings(t *testing.T, s *ListingStore) []domain.Listing {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}
	in := []domain.Listing{
		{Name: "Luxury Apartment", ListingType: domain.ListingTypeRent, Offer: true, Furnished: true, Parking: true, RegularPrice: 2000, UserRef: "u1"},
		{Name: "Cozy Cottage", ListingType: domain.ListingTypeSale, RegularPrice: 1200, UserRef: "u2"},
		{Name: "Downtown Loft", ListingType: domain.ListingTypeRent, Furnished: true, RegularPrice: 1500, UserRef: "u1"},
	}
	for i := range in {
		require.NoError(t, s.Create(context.Background(), &in[i]))
	}
	return in
}

func names(ls []domain.Listing) []string {
	out := make([]string, 0, len(ls))
	for _, l := range ls {
		out = append(out, l.Name)
	}
	return out
}

func TestListingStoreSearchFilters(t *testing.T) {
	s := NewListingStore()
	seedListings(t, s)
	ctx := context.Background()

	all := domain.SearchParams{Limit: 9, Offer: "false", Furnished: "false", Parking: "false", ListingType: "all", Sort: "createdAt", Order: "desc"}
	got, err := s.Search(ctx, all)
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown Loft", "Cozy Cottage", "Luxury Apartment"}, names(got))

	furnishedRent := all
	furnishedRent.Furnished = "true"
	furnishedRent.ListingType = "rent"
	got, err = s.Search(ctx, furnishedRent)
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown Loft", "Luxury Apartment"}, names(got))

	term := all
	term.SearchTerm = "cOzY"
	got, err = s.Search(ctx, term)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cozy Cottage"}, names(got))

	byPrice := all
	byPrice.Sort, byPrice.Order = "regularPrice", "asc"
	byPrice.StartIndex, byPrice.Limit = 1, 1
	got, err = s.Search(ctx, byPrice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown Loft"}, names(got))
}

func TestListingStoreHidesDeleted(t *testing.T) {
	s := NewListingStore()
	seeded := seedListings(t, s)
	ctx := context.Background()

	require.NoError(t, s.SetStatus(ctx, seeded[0].ID, domain.ListingStatusDeleted))

	_, err := s.FindByID(ctx, seeded[0].ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)

	owned, err := s.FindByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Downtown Loft"}, names(owned))

	assert.ErrorIs(t, s.SetStatus(ctx, seeded[0].ID, domain.ListingStatusDeleted), domain.ErrListingNotFound)
}
