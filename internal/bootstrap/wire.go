//go:build wireinject
// +build wireinject

//go:generate wire

package bootstrap

import (
	"context"

	"github.com/google/wire"
)

// InitializeApp builds the App from ProviderSet. The returned cleanup closes
// the NATS connection, the cache client, the database pool and syncs the logger,
// in reverse order of construction.
func InitializeApp(ctx context.Context) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
