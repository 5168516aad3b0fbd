package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "realty.listings.created", Subject(defaultSubjectPrefix, domain.ListingCreated))
	assert.Equal(t, "custom.deleted", Subject("custom", domain.ListingDeleted))
}

func TestNoopPublisher(t *testing.T) {
	var p domain.ListingEventPublisher = NoopPublisher{}
	assert.NoError(t, p.PublishListingEvent(context.Background(), domain.ListingEvent{Action: domain.ListingUpdated}))
}
