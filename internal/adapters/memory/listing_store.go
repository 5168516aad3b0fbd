package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// ListingStore is an in-process domain.ListingStore.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
	now      func() time.Time
}

// NewListingStore creates an empty store.
func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]domain.Listing), now: time.Now}
}

func cloneListing(l domain.Listing) domain.Listing {
	l.ImageURLs = append([]string(nil), l.ImageURLs...)
	return l
}

func (s *ListingStore) Create(_ context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.ListingStatus == "" {
		listing.ListingStatus = domain.ListingStatusAvailable
	}
	now := s.now().UTC()
	listing.CreatedAt, listing.UpdatedAt = now, now
	s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (s *ListingStore) FindByID(_ context.Context, id string) (*domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok || l.ListingStatus == domain.ListingStatusDeleted {
		return nil, domain.ErrListingNotFound
	}
	out := cloneListing(l)
	return &out, nil
}

func matchesFlag(filter string, value bool) bool {
	return filter != domain.FilterOn || value
}

func (s *ListingStore) Search(_ context.Context, p domain.SearchParams) ([]domain.Listing, error) {
	s.mu.RLock()
	term := strings.ToLower(p.SearchTerm)
	matched := make([]domain.Listing, 0)
	for _, l := range s.listings {
		if l.ListingStatus == domain.ListingStatusDeleted {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(l.Name), term) {
			continue
		}
		if !matchesFlag(p.Offer, l.Offer) || !matchesFlag(p.Furnished, l.Furnished) || !matchesFlag(p.Parking, l.Parking) {
			continue
		}
		if p.ListingType != "" && p.ListingType != string(domain.ListingTypeAll) && string(l.ListingType) != p.ListingType {
			continue
		}
		matched = append(matched, cloneListing(l))
	}
	s.mu.RUnlock()

	less := func(a, b domain.Listing) bool {
		switch p.Sort {
		case "regularPrice":
			if a.RegularPrice != b.RegularPrice {
				return a.RegularPrice < b.RegularPrice
			}
		case "updatedAt":
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(matched, func(i, j int) bool {
		if p.Order == "asc" {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	if p.StartIndex >= len(matched) {
		return []domain.Listing{}, nil
	}
	matched = matched[p.StartIndex:]
	if p.Limit > 0 && p.Limit < len(matched) {
		matched = matched[:p.Limit]
	}
	return matched, nil
}

func (s *ListingStore) FindByOwner(_ context.Context, userID string) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Listing, 0)
	for _, l := range s.listings {
		if l.UserRef == userID && l.ListingStatus != domain.ListingStatusDeleted {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *ListingStore) Update(_ context.Context, listing *domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.listings[listing.ID]
	if !ok || cur.ListingStatus == domain.ListingStatusDeleted {
		return domain.ErrListingNotFound
	}
	listing.CreatedAt = cur.CreatedAt
	listing.UpdatedAt = s.now().UTC()
	s.listings[listing.ID] = cloneListing(*listing)
	return nil
}

func (s *ListingStore) SetStatus(_ context.Context, id string, status domain.ListingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.listings[id]
	if !ok || cur.ListingStatus == domain.ListingStatusDeleted {
		return domain.ErrListingNotFound
	}
	cur.ListingStatus = status
	cur.UpdatedAt = s.now().UTC()
	s.listings[id] = cur
	return nil
}

func (s *ListingStore) Ping(context.Context) error { return nil }
