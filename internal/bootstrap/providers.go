package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gitlab.com/realty/api/realty-listing-service/internal/adapters/breaker"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/config"
	apphttp "gitlab.com/realty/api/realty-listing-service/internal/adapters/http"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/logger"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/memory"
	appnats "gitlab.com/realty/api/realty-listing-service/internal/adapters/nats"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/postgres"
	appredis "gitlab.com/realty/api/realty-listing-service/internal/adapters/redis"
	"gitlab.com/realty/api/realty-listing-service/internal/adapters/upstash"
	"gitlab.com/realty/api/realty-listing-service/internal/application"
	"gitlab.com/realty/api/realty-listing-service/internal/domain"
)

// CacheBackend is the cache store selected by cache.driver, before the circuit
// breaker is put in front of it. A distinct type lets Wire tell the two apart.
type CacheBackend domain.CacheStore

// Stores bundles the document stores selected by store.driver.
type Stores struct {
	Listings domain.ListingStore
	Users    domain.UserStore
}

// InitialZapLoggerProvider provides a basic *zap.Logger instance, primarily for config initialization.
// It returns the logger, a cleanup function (for syncing), and an error if creation fails.
func InitialZapLoggerProvider() (*zap.Logger, func(), error) {
	logger, err := zap.NewProduction()
	if err != nil {
		// Try NewDevelopment if NewProduction fails
		logger, err = zap.NewDevelopment()
		if err != nil {
			logger = zap.NewExample()
			fmt.Fprintf(os.Stderr, "Failed to create initial zap logger (production and development failed, falling back to example): %v\n", err)
		}
	}

	cleanup := func() {
		// Syncing flushes any buffered log entries.
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync initial zap logger: %v\n", syncErr)
		}
	}
	return logger, cleanup, nil
}

// ConfigProvider provides the application configuration.
// appCtx bounds the lifetime of the hot-reload goroutines.
func ConfigProvider(appCtx context.Context, logger *zap.Logger) (config.Provider, error) {
	return config.NewViperProvider(appCtx, logger)
}

// LoggerProvider provides the application logger.
func LoggerProvider(cfgProvider config.Provider) (domain.Logger, func(), error) {
	appCfg := cfgProvider.Get()
	zl, err := logger.NewZapAdapter(cfgProvider, appCfg.App.ServiceName)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = zl.Sync() // stdout/stderr sync errors are expected on some platforms
	}
	return zl, cleanup, nil
}

// CacheBackendProvider connects the cache store selected by cache.driver.
// An unreachable store is logged but does not stop the service: every cache
// failure degrades to a miss.
func CacheBackendProvider(ctx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (CacheBackend, func(), error) {
	cacheCfg := cfgProvider.Get().Cache
	timeout := time.Duration(cacheCfg.RequestTimeoutMs) * time.Millisecond

	switch cacheCfg.Driver {
	case config.CacheDriverMemory:
		appLogger.Warn(ctx, "Using in-process cache store; entries are not shared between instances")
		return memory.NewCacheStore(), func() {}, nil

	case config.CacheDriverUpstash:
		appLogger.Info(ctx, "Using Upstash REST cache store", "url", cacheCfg.RESTURL)
		return upstash.NewRESTStore(cacheCfg.RESTURL, cacheCfg.RESTToken, timeout, appLogger), func() {}, nil

	default:
		opts := &redis.Options{
			Addr:         cacheCfg.Address,
			Password:     cacheCfg.Password,
			DB:           cacheCfg.DB,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		}
		if cacheCfg.UseTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			appLogger.Warn(ctx, "Redis not reachable at startup, continuing without cache", "error", err.Error(), "address", cacheCfg.Address)
		} else {
			appLogger.Info(ctx, "Successfully connected to Redis", "address", cacheCfg.Address)
		}
		cleanup := func() {
			client.Close()
			appLogger.Info(context.Background(), "Redis connection closed")
		}
		return appredis.NewCacheStoreAdapter(client, appLogger), cleanup, nil
	}
}

// CacheStoreProvider puts a circuit breaker in front of remote cache stores.
func CacheStoreProvider(backend CacheBackend, cfgProvider config.Provider, appLogger domain.Logger) domain.CacheStore {
	cacheCfg := cfgProvider.Get().Cache
	if cacheCfg.Driver == config.CacheDriverMemory {
		return backend
	}
	return breaker.NewCacheStore(backend, breaker.Settings{
		Name:           "cache-" + cacheCfg.Driver,
		MaxFailures:    uint32(cacheCfg.BreakerMaxFailures),
		OpenTimeout:    time.Duration(cacheCfg.BreakerOpenSeconds) * time.Second,
		HalfOpenProbes: uint32(cacheCfg.BreakerHalfOpenProbes),
	}, appLogger)
}

// StoresProvider opens the document stores selected by store.driver.
func StoresProvider(ctx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (Stores, func(), error) {
	if cfgProvider.Get().Store.Driver == config.StoreDriverMemory {
		appLogger.Warn(ctx, "Using in-process document stores; data is lost on restart")
		return Stores{Listings: memory.NewListingStore(), Users: memory.NewUserStore()}, func() {}, nil
	}
	db, cleanup, err := postgres.NewDB(ctx, cfgProvider, appLogger)
	if err != nil {
		appLogger.Error(ctx, "Failed to open Postgres", "error", err.Error())
		return Stores{}, nil, fmt.Errorf("failed to open document store: %w", err)
	}
	return Stores{Listings: postgres.NewListingRepo(db), Users: postgres.NewUserRepo(db)}, cleanup, nil
}

// ListingStoreProvider extracts the listing store.
func ListingStoreProvider(s Stores) domain.ListingStore { return s.Listings }

// UserStoreProvider extracts the user store.
func UserStoreProvider(s Stores) domain.UserStore { return s.Users }

// EventPublisherProvider connects to NATS, or drops events when nats.url is empty.
func EventPublisherProvider(ctx context.Context, cfgProvider config.Provider, appLogger domain.Logger) (domain.ListingEventPublisher, func(), error) {
	if cfgProvider.Get().NATS.URL == "" {
		appLogger.Info(ctx, "nats.url not set, listing events are not published")
		return appnats.NoopPublisher{}, func() {}, nil
	}
	publisher, cleanup, err := appnats.NewEventPublisher(ctx, cfgProvider, appLogger)
	if err != nil {
		return nil, nil, err
	}
	return publisher, cleanup, nil
}

// ReadinessChecksProvider lists the dependencies probed by /ready. Only the
// document store is critical; the cache is an accelerator.
func ReadinessChecksProvider(listings domain.ListingStore, cache *application.CachePolicy) []apphttp.ReadinessCheck {
	return []apphttp.ReadinessCheck{
		{Name: "store", Ping: listings.Ping, Critical: true},
		{Name: "cache", Ping: cache.Ping},
	}
}

// RouterProvider provides the root HTTP handler.
func RouterProvider(h *apphttp.Handler, checks []apphttp.ReadinessCheck, appLogger domain.Logger) http.Handler {
	return apphttp.NewRouter(h, checks, appLogger)
}

// HTTPGracefulServerProvider provides a new HTTP server configured for graceful shutdown.
func HTTPGracefulServerProvider(cfgProvider config.Provider, handler http.Handler) *http.Server {
	appCfg := cfgProvider.Get()

	readTimeout := 10 * time.Second
	writeTimeout := 10 * time.Second
	idleTimeout := 60 * time.Second
	if appCfg.App.ReadTimeoutSeconds > 0 {
		readTimeout = time.Duration(appCfg.App.ReadTimeoutSeconds) * time.Second
	}
	if appCfg.App.WriteTimeoutSeconds > 0 {
		writeTimeout = time.Duration(appCfg.App.WriteTimeoutSeconds) * time.Second
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", appCfg.Server.HTTPPort),
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// ProviderSet is the Wire provider set for the entire application.
var ProviderSet = wire.NewSet(
	InitialZapLoggerProvider,
	ConfigProvider,
	LoggerProvider,

	// Infrastructure Adapters
	CacheBackendProvider,
	CacheStoreProvider,
	StoresProvider,
	ListingStoreProvider,
	UserStoreProvider,
	EventPublisherProvider,

	// Application Services
	application.NewCachePolicy,
	application.NewTokenService,
	application.NewAuthService,
	application.NewUserService,
	application.NewListingService,

	// HTTP
	apphttp.NewHandler,
	ReadinessChecksProvider,
	RouterProvider,
	HTTPGracefulServerProvider,

	NewApp,
)
