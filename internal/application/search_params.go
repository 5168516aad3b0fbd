package application

import (
	"strings"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

const (
	DefaultSearchLimit = 9
	MaxSearchLimit     = 50
)

// Sort columns accepted by listing search.
const (
	SortCreatedAt    = "createdAt"
	SortRegularPrice = "regularPrice"
	SortUpdatedAt    = "updatedAt"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// NormalizeSearchParams applies defaults and bounds so that equivalent requests
// produce identical parameters, and therefore share one cache key.
// maxLimit <= 0 selects MaxSearchLimit.
func NormalizeSearchParams(p domain.SearchParams, maxLimit int) domain.SearchParams {
	if maxLimit <= 0 {
		maxLimit = MaxSearchLimit
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultSearchLimit
	case p.Limit > maxLimit:
		p.Limit = maxLimit
	}
	if p.StartIndex < 0 {
		p.StartIndex = 0
	}

	p.Offer = normalizeFlag(p.Offer)
	p.Furnished = normalizeFlag(p.Furnished)
	p.Parking = normalizeFlag(p.Parking)

	switch domain.ListingType(strings.ToLower(strings.TrimSpace(p.ListingType))) {
	case domain.ListingTypeRent:
		p.ListingType = string(domain.ListingTypeRent)
	case domain.ListingTypeSale:
		p.ListingType = string(domain.ListingTypeSale)
	default:
		p.ListingType = string(domain.ListingTypeAll)
	}

	p.SearchTerm = strings.TrimSpace(p.SearchTerm)

	switch p.Sort {
	case SortRegularPrice, SortUpdatedAt:
	default:
		p.Sort = SortCreatedAt
	}

	if strings.EqualFold(strings.TrimSpace(p.Order), OrderAsc) {
		p.Order = OrderAsc
	} else {
		p.Order = OrderDesc
	}
	return p
}

// normalizeFlag maps any truthy spelling to FilterOn and everything else to FilterOff.
func normalizeFlag(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return domain.FilterOn
	default:
		return domain.FilterOff
	}
}
