package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/logger"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

func TestBuildSearchQuery(t *testing.T) {
	r := NewListingRepo(&DB{})
	sqlStr, args, err := r.buildSearchQuery(domain.SearchParams{
		Limit:       9,
		StartIndex:  18,
		Offer:       domain.FilterOn,
		Furnished:   domain.FilterOff,
		Parking:     domain.FilterOn,
		ListingType: "rent",
		SearchTerm:  "50%_off",
		Sort:        "regularPrice",
		Order:       "asc",
	})
	require.NoError(t, err)

	assert.Contains(t, sqlStr, "FROM listings WHERE listing_status <> $1 AND name ILIKE $2 AND offer = $3 AND parking = $4 AND listing_type = $5")
	assert.Contains(t, sqlStr, "ORDER BY regular_price ASC, id ASC LIMIT 9 OFFSET 18")
	assert.NotContains(t, sqlStr, "furnished =")
	assert.Equal(t, []any{"deleted", `%50\%\_off%`, true, true, "rent"}, args)
}

func TestBuildSearchQueryRejectsUnknownSortColumn(t *testing.T) {
	r := NewListingRepo(&DB{})
	sqlStr, _, err := r.buildSearchQuery(domain.SearchParams{Sort: "password_hash; DROP TABLE users", Order: "desc", ListingType: "all"})
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "ORDER BY created_at DESC, id DESC")
	assert.NotContains(t, sqlStr, "listing_type =")
	assert.NotContains(t, sqlStr, "password_hash")
}

// TestRepositoriesAgainstPostgres runs only when REALTY_TEST_POSTGRES_DSN points at a disposable database.
func TestRepositoriesAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("REALTY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("REALTY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	cfg := config.StaticProvider{Config: &config.Config{Store: config.StoreConfig{DSN: dsn, AutoMigrate: true}}}
	db, cleanup, err := NewDB(ctx, cfg, logger.NewFromZap(zap.NewNop()))
	require.NoError(t, err)
	t.Cleanup(cleanup)

	users := NewUserRepo(db)
	suffix := uuid.NewString()[:8]
	owner := &domain.User{Username: "pg-" + suffix, Email: suffix + "@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, owner))
	assert.ErrorIs(t, users.Create(ctx, &domain.User{Username: owner.Username, Email: "other-" + suffix + "@example.com", PasswordHash: "x"}), domain.ErrDuplicateUser)

	listings := NewListingRepo(db)
	l := &domain.Listing{
		Name: "Harbour view", Description: "d", Address: "a", RegularPrice: 100, Bathrooms: 1, Bedrooms: 1,
		ListingType: domain.ListingTypeSale, ImageURLs: []string{"https://img/1.jpg"}, UserRef: owner.ID,
	}
	require.NoError(t, listings.Create(ctx, l))

	got, err := listings.FindByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.Name, got.Name)
	assert.Equal(t, l.ImageURLs, got.ImageURLs)

	mine, err := listings.FindByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	require.NoError(t, listings.SetStatus(ctx, l.ID, domain.ListingStatusDeleted))
	_, err = listings.FindByID(ctx, l.ID)
	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}
