package domain

import (
	"context"
	"time"
)

// ListingType is the transaction a listing is offered for.
type ListingType string

const (
	ListingTypeRent ListingType = "rent"
	ListingTypeSale ListingType = "sale"
	// ListingTypeAll is only meaningful as a search filter.
	ListingTypeAll ListingType = "all"
)

// ListingStatus tracks the lifecycle of a listing. Deleted listings stay in the
// store and are hidden from every read path.
type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "available"
	ListingStatusPending   ListingStatus = "pending"
	ListingStatusDeleted   ListingStatus = "deleted"
)

// Listing is a real-estate listing document.
type Listing struct {
	ID              string        `json:"_id"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	Address         string        `json:"address"`
	RegularPrice    float64       `json:"regularPrice"`
	DiscountedPrice float64       `json:"discountedPrice"`
	Bathrooms       int           `json:"bathrooms"`
	Bedrooms        int           `json:"bedrooms"`
	Furnished       bool          `json:"furnished"`
	Parking         bool          `json:"parking"`
	ListingType     ListingType   `json:"listingType"`
	Offer           bool          `json:"offer"`
	ImageURLs       []string      `json:"imageUrls"`
	UserRef         string        `json:"userRef"`
	ListingStatus   ListingStatus `json:"listingStatus"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ListingInput carries the client-editable fields of a listing on create and update.
type ListingInput struct {
	Name            string        `json:"name" validate:"required,max=120"`
	Description     string        `json:"description" validate:"required"`
	Address         string        `json:"address" validate:"required"`
	RegularPrice    float64       `json:"regularPrice" validate:"gte=0"`
	DiscountedPrice float64       `json:"discountedPrice" validate:"gte=0"`
	Bathrooms       int           `json:"bathrooms" validate:"gte=1"`
	Bedrooms        int           `json:"bedrooms" validate:"gte=1"`
	Furnished       bool          `json:"furnished"`
	Parking         bool          `json:"parking"`
	ListingType     ListingType   `json:"listingType" validate:"required,oneof=rent sale"`
	Offer           bool          `json:"offer"`
	ImageURLs       []string      `json:"imageUrls" validate:"required,min=1,max=6,dive,url"`
	ListingStatus   ListingStatus `json:"listingStatus" validate:"omitempty,oneof=available pending"`
}

// Apply copies the input onto l, leaving identity, ownership and timestamps alone.
func (in ListingInput) Apply(l *Listing) {
	l.Name = in.Name
	l.Description = in.Description
	l.Address = in.Address
	l.RegularPrice = in.RegularPrice
	l.DiscountedPrice = in.DiscountedPrice
	l.Bathrooms = in.Bathrooms
	l.Bedrooms = in.Bedrooms
	l.Furnished = in.Furnished
	l.Parking = in.Parking
	l.ListingType = in.ListingType
	l.Offer = in.Offer
	l.ImageURLs = append([]string(nil), in.ImageURLs...)
	if in.ListingStatus != "" {
		l.ListingStatus = in.ListingStatus
	}
}

// SearchParams is the normalized form of a listing search request.
// Field order is part of the cache key format.
type SearchParams struct {
	Limit       int    `json:"limit"`
	StartIndex  int    `json:"startIndex"`
	Offer       string `json:"offer"`
	Furnished   string `json:"furnished"`
	Parking     string `json:"parking"`
	ListingType string `json:"listingType"`
	SearchTerm  string `json:"searchTerm"`
	Sort        string `json:"sort"`
	Order       string `json:"order"`
}

// Boolean filter values. FilterOff matches listings with either value.
const (
	FilterOn  = "true"
	FilterOff = "false"
)

// ListingStore is the authoritative document store for listings.
type ListingStore interface {
	Create(ctx context.Context, listing *Listing) error
	// FindByID returns ErrListingNotFound for unknown and deleted listings.
	FindByID(ctx context.Context, id string) (*Listing, error)
	Search(ctx context.Context, params SearchParams) ([]Listing, error)
	FindByOwner(ctx context.Context, userID string) ([]Listing, error)
	Update(ctx context.Context, listing *Listing) error
	SetStatus(ctx context.Context, id string, status ListingStatus) error
	Ping(ctx context.Context) error
}

// ListingEventAction names the mutation that produced a ListingEvent.
type ListingEventAction string

const (
	ListingCreated ListingEventAction = "created"
	ListingUpdated ListingEventAction = "updated"
	ListingDeleted ListingEventAction = "deleted"
)

// ListingEvent is published after a listing mutation has been committed.
type ListingEvent struct {
	Action    ListingEventAction `json:"action"`
	ListingID string             `json:"listingId"`
	UserRef   string             `json:"userRef"`
	At        time.Time          `json:"at"`
}

// ListingEventPublisher fans listing mutations out to other services.
type ListingEventPublisher interface {
	PublishListingEvent(ctx context.Context, event ListingEvent) error
}
