package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

const defaultSubjectPrefix = "realty.listings"

// EventPublisher publishes listing events on core NATS subjects
// "<prefix>.<action>", e.g. realty.listings.created.
type EventPublisher struct {
	nc            *nats.Conn
	subjectPrefix string
	logger        domain.Logger
}

// NewEventPublisher connects to NATS and returns the publisher with a cleanup
// function that drains the connection.
func NewEventPublisher(ctx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (*EventPublisher, func(), error) {
	appFullCfg := cfgProvider.Get()
	natsCfg := appFullCfg.NATS

	appLogger.Info(ctx, "Attempting to connect to NATS server", "url", natsCfg.URL)

	nc, err := nats.Connect(natsCfg.URL,
		nats.Name(fmt.Sprintf("%s-publisher", appFullCfg.App.ServiceName)),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			appLogger.Error(context.Background(), "NATS error", "error", err.Error())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			appLogger.Info(context.Background(), "NATS connection closed")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			appLogger.Info(context.Background(), "NATS reconnected", "url", c.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				appLogger.Warn(context.Background(), "NATS disconnected", "error", err.Error())
			}
		}),
	)
	if err != nil {
		appLogger.Error(ctx, "Failed to connect to NATS", "url", natsCfg.URL, "error", err.Error())
		return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", natsCfg.URL, err)
	}
	appLogger.Info(ctx, "Connected to NATS server", "url", nc.ConnectedUrl())

	prefix := natsCfg.SubjectPrefix
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}
	publisher := &EventPublisher{nc: nc, subjectPrefix: prefix, logger: appLogger}

	cleanup := func() {
		appLogger.Info(context.Background(), "Draining NATS connection...")
		if err := nc.Drain(); err != nil {
			appLogger.Warn(context.Background(), "NATS drain failed, closing", "error", err.Error())
			nc.Close()
		}
	}
	return publisher, cleanup, nil
}

// Subject returns the subject an action is published on.
func Subject(prefix string, action domain.ListingEventAction) string {
	return prefix + "." + string(action)
}

// PublishListingEvent implements domain.ListingEventPublisher.
func (p *EventPublisher) PublishListingEvent(ctx context.Context, event domain.ListingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal listing event: %w", err)
	}
	subject := Subject(p.subjectPrefix, event.Action)
	if err := p.nc.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	p.logger.Debug(ctx, "Listing event published", "subject", subject, "listing_id", event.ListingID)
	return nil
}

// Ping reports whether the connection is usable.
func (p *EventPublisher) Ping(context.Context) error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats connection status: %s", p.nc.Status())
	}
	return nil
}

// NoopPublisher drops events. It stands in when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishListingEvent(context.Context, domain.ListingEvent) error { return nil }
