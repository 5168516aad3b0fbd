package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
	"gitlab.com/realty/api/realty-listing-service/pkg/rediskeys"
	"gitlab.com/realty/api/realty-listing-service/pkg/safego"
)

// eventPublishTimeout bounds one listing event publish after the request has returned.
const eventPublishTimeout = 5 * time.Second

// ListingService serves listing queries read-through the cache and keeps the
// cache coherent after listing mutations.
type ListingService struct {
	listings domain.ListingStore
	cache    *CachePolicy
	events   domain.ListingEventPublisher
	config   config.Provider
	logger   domain.Logger
}

// NewListingService creates a new ListingService.
func NewListingService(listings domain.ListingStore, cache *CachePolicy, events domain.ListingEventPublisher, cfg config.Provider, logger domain.Logger) *ListingService {
	if listings == nil {
		panic("listing store is nil in NewListingService")
	}
	if cache == nil {
		panic("cache policy is nil in NewListingService")
	}
	if events == nil {
		panic("event publisher is nil in NewListingService")
	}
	if cfg == nil {
		panic("config provider is nil in NewListingService")
	}
	if logger == nil {
		panic("logger is nil in NewListingService")
	}
	return &ListingService{listings: listings, cache: cache, events: events, config: cfg, logger: logger}
}

// SearchListings returns one page of listings matching params.
// params is normalized first; the result is cached under the normalized key.
func (s *ListingService) SearchListings(ctx context.Context, params domain.SearchParams) ([]domain.Listing, error) {
	params = NormalizeSearchParams(params, s.config.Get().App.MaxSearchLimit)

	key, err := rediskeys.SearchKey(params)
	if err != nil {
		// Without a key the request still goes to the store, uncached.
		s.logger.Error(ctx, "Failed to build search cache key", "error", err.Error())
	}

	if key != "" {
		var cached []domain.Listing
		if s.cache.GetCache(ctx, domain.CacheClassSearchResults, key, &cached) {
			s.logger.Debug(ctx, "Search served from cache", "cache_key", key)
			return cached, nil
		}
	}

	listings, err := s.listings.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	if key != "" {
		s.storeInCache(ctx, domain.CacheClassSearchResults, key, listings)
	}
	return listings, nil
}

// GetListingDetail returns a single live listing.
func (s *ListingService) GetListingDetail(ctx context.Context, listingID string) (*domain.Listing, error) {
	key := rediskeys.ListingDetailKey(listingID)

	var cached domain.Listing
	if s.cache.GetCache(ctx, domain.CacheClassListingDetail, key, &cached) {
		return &cached, nil
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	s.storeInCache(ctx, domain.CacheClassListingDetail, key, listing)
	return listing, nil
}

// GetOwnedListingDetail returns the listing only when it belongs to userRef.
// A listing owned by someone else is reported as not found.
func (s *ListingService) GetOwnedListingDetail(ctx context.Context, listingID, userRef string) (*domain.Listing, error) {
	listing, err := s.GetListingDetail(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.UserRef != userRef {
		return nil, domain.ErrListingNotFound
	}
	return listing, nil
}

// GetUserListings returns every live listing owned by userID. Only the owner may read them.
func (s *ListingService) GetUserListings(ctx context.Context, requester domain.AuthenticatedUser, userID string) ([]domain.Listing, error) {
	if requester.ID != userID {
		return nil, fmt.Errorf("%w: can only view own listings", domain.ErrForbidden)
	}
	key := rediskeys.UserListingsKey(userID)

	var cached []domain.Listing
	if s.cache.GetCache(ctx, domain.CacheClassUserListings, key, &cached) {
		return cached, nil
	}

	listings, err := s.listings.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load listings of user '%s': %w", userID, err)
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	s.storeInCache(ctx, domain.CacheClassUserListings, key, listings)
	return listings, nil
}

// CreateListing stores a new listing owned by the requester.
func (s *ListingService) CreateListing(ctx context.Context, owner domain.AuthenticatedUser, input domain.ListingInput) (*domain.Listing, error) {
	listing := &domain.Listing{UserRef: owner.ID}
	input.Apply(listing)
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.invalidateAfterWrite(ctx,
		rediskeys.SearchInvalidationPattern(),
		rediskeys.UserListingsInvalidationPattern(),
	)
	s.publish(ctx, domain.ListingCreated, listing)
	return listing, nil
}

// UpdateListing replaces the editable fields of a listing owned by the requester.
func (s *ListingService) UpdateListing(ctx context.Context, owner domain.AuthenticatedUser, listingID string, input domain.ListingInput) (*domain.Listing, error) {
	listing, err := s.ownedListing(ctx, owner, listingID)
	if err != nil {
		return nil, err
	}
	input.Apply(listing)
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to update listing '%s': %w", listingID, err)
	}

	s.invalidateAfterWrite(ctx,
		rediskeys.SearchInvalidationPattern(),
		rediskeys.UserListingsInvalidationPattern(),
		rediskeys.ListingDetailKey(listingID),
	)
	s.publish(ctx, domain.ListingUpdated, listing)
	return listing, nil
}

// DeleteListing soft-deletes a listing owned by the requester.
func (s *ListingService) DeleteListing(ctx context.Context, owner domain.AuthenticatedUser, listingID string) error {
	listing, err := s.ownedListing(ctx, owner, listingID)
	if err != nil {
		return err
	}
	if err := s.listings.SetStatus(ctx, listingID, domain.ListingStatusDeleted); err != nil {
		return fmt.Errorf("failed to delete listing '%s': %w", listingID, err)
	}

	s.invalidateAfterWrite(ctx,
		rediskeys.SearchInvalidationPattern(),
		rediskeys.UserListingsInvalidationPattern(),
		rediskeys.ListingDetailKey(listingID),
	)
	listing.ListingStatus = domain.ListingStatusDeleted
	s.publish(ctx, domain.ListingDeleted, listing)
	return nil
}

// ownedListing loads a listing straight from the store and checks ownership.
// The cache is skipped so a mutation never acts on a stale copy.
func (s *ListingService) ownedListing(ctx context.Context, owner domain.AuthenticatedUser, listingID string) (*domain.Listing, error) {
	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrListingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load listing '%s': %w", listingID, err)
	}
	if listing.UserRef != owner.ID {
		return nil, fmt.Errorf("%w: listing '%s' belongs to another user", domain.ErrForbidden, listingID)
	}
	return listing, nil
}

func (s *ListingService) storeInCache(ctx context.Context, class domain.CacheClass, key string, value any) {
	if err := s.cache.SetCache(ctx, class, key, value); err != nil {
		s.logger.Error(ctx, "Failed to cache query result", "class", class.String(), "cache_key", key, "error", err.Error())
	}
}

// invalidateAfterWrite runs after a confirmed write. A failed invalidation is
// logged and otherwise ignored; stale entries age out with their TTL.
func (s *ListingService) invalidateAfterWrite(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		if !s.cache.InvalidateCache(ctx, pattern) {
			s.logger.Warn(ctx, "Cache invalidation failed after listing write", "pattern", pattern)
		}
	}
}

// publish sends the listing event in the background. The request context may
// be cancelled by then, so only its values are kept.
func (s *ListingService) publish(ctx context.Context, action domain.ListingEventAction, listing *domain.Listing) {
	event := domain.ListingEvent{
		Action:    action,
		ListingID: listing.ID,
		UserRef:   listing.UserRef,
		At:        time.Now().UTC(),
	}
	bgCtx := context.WithoutCancel(ctx)
	safego.Execute(bgCtx, s.logger, "publish-listing-event", func() {
		pubCtx, cancel := context.WithTimeout(bgCtx, eventPublishTimeout)
		defer cancel()
		if err := s.events.PublishListingEvent(pubCtx, event); err != nil {
			s.logger.Warn(pubCtx, "Failed to publish listing event", "action", string(event.Action), "listing_id", event.ListingID, "error", err.Error())
		}
	})
}
