package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

const listingsTable = "listings"

var listingColumns = []string{
	"id", "name", "description", "address", "regular_price", "discounted_price",
	"bathrooms", "bedrooms", "furnished", "parking", "listing_type", "offer",
	"image_urls", "user_ref", "listing_status", "created_at", "updated_at",
}

// sortColumns whitelists the ORDER BY columns a search may use.
var sortColumns = map[string]string{
	"createdAt":    "created_at",
	"regularPrice": "regular_price",
	"updatedAt":    "updated_at",
}

// ListingRepo implements domain.ListingStore on Postgres.
type ListingRepo struct {
	db  *DB
	now func() time.Time
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(db *DB) *ListingRepo {
	return &ListingRepo{db: db, now: time.Now}
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var l domain.Listing
	var listingType, status string
	err := row.Scan(&l.ID, &l.Name, &l.Description, &l.Address, &l.RegularPrice, &l.DiscountedPrice,
		&l.Bathrooms, &l.Bedrooms, &l.Furnished, &l.Parking, &listingType, &l.Offer,
		&l.ImageURLs, &l.UserRef, &status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.ListingType = domain.ListingType(listingType)
	l.ListingStatus = domain.ListingStatus(status)
	if l.ImageURLs == nil {
		l.ImageURLs = []string{}
	}
	return &l, nil
}

func (r *ListingRepo) Create(ctx context.Context, listing *domain.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.ListingStatus == "" {
		listing.ListingStatus = domain.ListingStatusAvailable
	}
	now := r.now().UTC()
	listing.CreatedAt, listing.UpdatedAt = now, now

	sqlStr, args, err := r.db.qb().Insert(listingsTable).
		Columns(listingColumns...).
		Values(listing.ID, listing.Name, listing.Description, listing.Address, listing.RegularPrice,
			listing.DiscountedPrice, listing.Bathrooms, listing.Bedrooms, listing.Furnished, listing.Parking,
			string(listing.ListingType), listing.Offer, imageURLs(listing.ImageURLs), listing.UserRef,
			string(listing.ListingStatus), listing.CreatedAt, listing.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert listing: %w", err)
	}
	if _, err := r.db.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.db.logger.Error(ctx, "Insert listing failed", "listing_id", listing.ID, "error", err.Error())
		return fmt.Errorf("insert listing '%s': %w", listing.ID, err)
	}
	return nil
}

func (r *ListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	sqlStr, args, err := r.db.qb().Select(listingColumns...).From(listingsTable).
		Where(sq.Eq{"id": id}).
		Where(sq.NotEq{"listing_status": string(domain.ListingStatusDeleted)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select listing: %w", err)
	}
	l, err := scanListing(r.db.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("select listing '%s': %w", id, err)
	}
	return l, nil
}

// buildSearchQuery renders a search as SQL. params must already be normalized.
func (r *ListingRepo) buildSearchQuery(p domain.SearchParams) (string, []any, error) {
	q := r.db.qb().Select(listingColumns...).From(listingsTable).
		Where(sq.NotEq{"listing_status": string(domain.ListingStatusDeleted)})

	if p.SearchTerm != "" {
		q = q.Where(sq.ILike{"name": "%" + escapeLike(p.SearchTerm) + "%"})
	}
	if p.Offer == domain.FilterOn {
		q = q.Where(sq.Eq{"offer": true})
	}
	if p.Furnished == domain.FilterOn {
		q = q.Where(sq.Eq{"furnished": true})
	}
	if p.Parking == domain.FilterOn {
		q = q.Where(sq.Eq{"parking": true})
	}
	if p.ListingType != "" && p.ListingType != string(domain.ListingTypeAll) {
		q = q.Where(sq.Eq{"listing_type": p.ListingType})
	}

	column, ok := sortColumns[p.Sort]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if p.Order == "asc" {
		direction = "ASC"
	}
	q = q.OrderBy(column+" "+direction, "id "+direction)

	if p.Limit > 0 {
		q = q.Limit(uint64(p.Limit))
	}
	if p.StartIndex > 0 {
		q = q.Offset(uint64(p.StartIndex))
	}
	return q.ToSql()
}

func (r *ListingRepo) Search(ctx context.Context, p domain.SearchParams) ([]domain.Listing, error) {
	sqlStr, args, err := r.buildSearchQuery(p)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}
	return r.queryListings(ctx, sqlStr, args)
}

func (r *ListingRepo) FindByOwner(ctx context.Context, userID string) ([]domain.Listing, error) {
	sqlStr, args, err := r.db.qb().Select(listingColumns...).From(listingsTable).
		Where(sq.Eq{"user_ref": userID}).
		Where(sq.NotEq{"listing_status": string(domain.ListingStatusDeleted)}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build owner query: %w", err)
	}
	return r.queryListings(ctx, sqlStr, args)
}

func (r *ListingRepo) queryListings(ctx context.Context, sqlStr string, args []any) ([]domain.Listing, error) {
	start := time.Now()
	rows, err := r.db.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	r.db.logger.Debug(ctx, "Listing query done", "rows", len(out), "duration", time.Since(start).String())
	return out, nil
}

func (r *ListingRepo) Update(ctx context.Context, listing *domain.Listing) error {
	listing.UpdatedAt = r.now().UTC()
	sqlStr, args, err := r.db.qb().Update(listingsTable).
		SetMap(map[string]any{
			"name":             listing.Name,
			"description":      listing.Description,
			"address":          listing.Address,
			"regular_price":    listing.RegularPrice,
			"discounted_price": listing.DiscountedPrice,
			"bathrooms":        listing.Bathrooms,
			"bedrooms":         listing.Bedrooms,
			"furnished":        listing.Furnished,
			"parking":          listing.Parking,
			"listing_type":     string(listing.ListingType),
			"offer":            listing.Offer,
			"image_urls":       imageURLs(listing.ImageURLs),
			"listing_status":   string(listing.ListingStatus),
			"updated_at":       listing.UpdatedAt,
		}).
		Where(sq.Eq{"id": listing.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update listing: %w", err)
	}
	return r.execOne(ctx, listing.ID, sqlStr, args)
}

func (r *ListingRepo) SetStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	sqlStr, args, err := r.db.qb().Update(listingsTable).
		Set("listing_status", string(status)).
		Set("updated_at", r.now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build listing status update: %w", err)
	}
	return r.execOne(ctx, id, sqlStr, args)
}

func (r *ListingRepo) execOne(ctx context.Context, id, sqlStr string, args []any) error {
	tag, err := r.db.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.db.logger.Error(ctx, "Listing write failed", "listing_id", id, "error", err.Error())
		return fmt.Errorf("update listing '%s': %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func imageURLs(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}

// escapeLike quotes the LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
