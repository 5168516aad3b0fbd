package config

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const envPrefix = "REALTY"

// Cache store drivers.
const (
	CacheDriverRedis   = "redis"
	CacheDriverUpstash = "upstash"
	CacheDriverMemory  = "memory"
)

// Document store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// ServerConfig holds server-related configurations.
// Note: Fields should be exported (start with uppercase) to be unmarshalled by Viper.
type ServerConfig struct {
	HTTPPort int `mapstructure:"http_port"`
}

// CacheConfig selects and configures the listing cache store.
type CacheConfig struct {
	Driver string `mapstructure:"driver"` // redis | upstash | memory

	// Redis protocol
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	UseTLS   bool   `mapstructure:"use_tls"`

	// Upstash REST protocol
	RESTURL   string `mapstructure:"rest_url"`
	RESTToken string `mapstructure:"rest_token"`

	RequestTimeoutMs int `mapstructure:"request_timeout_ms"`

	// Circuit breaker around the store
	BreakerMaxFailures    int `mapstructure:"breaker_max_failures"`
	BreakerOpenSeconds    int `mapstructure:"breaker_open_seconds"`
	BreakerHalfOpenProbes int `mapstructure:"breaker_half_open_probes"`
}

// StoreConfig selects and configures the document store for listings and users.
type StoreConfig struct {
	Driver      string `mapstructure:"driver"` // postgres | memory
	DSN         string `mapstructure:"dsn"`
	MaxConns    int    `mapstructure:"max_conns"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// NATSConfig holds NATS-related configurations. An empty URL disables event publishing.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// LogConfig holds logging-related configurations.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// AuthConfig holds authentication-related configurations.
type AuthConfig struct {
	JWTSecret          string `mapstructure:"jwt_secret"` // Should primarily come from ENV
	TokenTTLSeconds    int    `mapstructure:"token_ttl_seconds"`
	CookieSecure       bool   `mapstructure:"cookie_secure"`
	BcryptCost         int    `mapstructure:"bcrypt_cost"`
	GooglePasswordSize int    `mapstructure:"google_password_size"`
}

// AssetHostConfig holds the credentials used to sign client-side image uploads.
type AssetHostConfig struct {
	CloudName    string `mapstructure:"cloud_name"`
	APIKey       string `mapstructure:"api_key"`
	APISecret    string `mapstructure:"api_secret"`
	UploadPreset string `mapstructure:"upload_preset"`
}

// AppConfig holds application-specific configurations.
type AppConfig struct {
	ServiceName            string `mapstructure:"service_name"`
	Version                string `mapstructure:"version"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds"`
	MaxSearchLimit         int    `mapstructure:"max_search_limit"`
}

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Store     StoreConfig     `mapstructure:"store"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	AssetHost AssetHostConfig `mapstructure:"asset_host"`
	App       AppConfig       `mapstructure:"app"`
}

// Provider defines an interface for accessing application configuration.
// This allows for easy mocking in tests and decouples the app from Viper.
type Provider interface {
	Get() *Config
}

// StaticProvider serves a fixed configuration. Used by tests and tools.
type StaticProvider struct {
	Config *Config
}

// Get returns the wrapped configuration.
func (p StaticProvider) Get() *Config {
	return p.Config
}

// viperProvider implements the Provider interface using Viper.
type viperProvider struct {
	config atomic.Pointer[Config]
	logger *zap.Logger // Using zap.Logger directly for config internal logging, not domain.Logger to avoid circular deps
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", 3000)

	v.SetDefault("cache.driver", CacheDriverRedis)
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.use_tls", false)
	v.SetDefault("cache.request_timeout_ms", 500)
	v.SetDefault("cache.breaker_max_failures", 5)
	v.SetDefault("cache.breaker_open_seconds", 30)
	v.SetDefault("cache.breaker_half_open_probes", 1)

	v.SetDefault("store.driver", StoreDriverPostgres)
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.auto_migrate", true)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "realty.listings")

	v.SetDefault("log.level", "info")

	v.SetDefault("auth.token_ttl_seconds", 15*60)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.google_password_size", 16)

	v.SetDefault("asset_host.upload_preset", "mern_realty_secure")

	v.SetDefault("app.service_name", "realty-listing-service")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.shutdown_timeout_seconds", 30)
	v.SetDefault("app.read_timeout_seconds", 10)
	v.SetDefault("app.write_timeout_seconds", 10)
	v.SetDefault("app.max_search_limit", 50)
}

// bindLegacyEnv maps the variable names used by earlier deployments.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("cache.rest_url", envPrefix+"_CACHE_REST_URL", "UPSTASH_REDIS_REST_URL")
	_ = v.BindEnv("cache.rest_token", envPrefix+"_CACHE_REST_TOKEN", "UPSTASH_REDIS_REST_TOKEN")
	_ = v.BindEnv("auth.jwt_secret", envPrefix+"_AUTH_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("store.dsn", envPrefix+"_STORE_DSN", "DATABASE_URL")
	_ = v.BindEnv("asset_host.cloud_name", envPrefix+"_ASSET_HOST_CLOUD_NAME", "CLOUDINARY_CLOUD_NAME")
	_ = v.BindEnv("asset_host.api_key", envPrefix+"_ASSET_HOST_API_KEY", "CLOUDINARY_API_KEY")
	_ = v.BindEnv("asset_host.api_secret", envPrefix+"_ASSET_HOST_API_SECRET", "CLOUDINARY_API_SECRET")
}

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetConfigName(getEnv("VIPER_CONFIG_NAME", "config"))
	v.SetConfigType("yaml")
	v.AddConfigPath(getEnv("VIPER_CONFIG_PATH", "/app/config"))
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")) // e.g., cache.rest_url becomes REALTY_CACHE_REST_URL
	bindLegacyEnv(v)
	return v
}

// NewViperProvider creates and initializes a new configuration provider using Viper.
// It loads configuration from file and environment variables, and sets up hot-reloading.
// appCtx is the application lifecycle context used for graceful shutdown of background tasks.
func NewViperProvider(appCtx context.Context, logger *zap.Logger) (Provider, error) {
	v := newViper()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warn("Config file not found; relying on defaults and environment variables", zap.Error(err))
		} else {
			logger.Error("Failed to read config file", zap.Error(err))
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		logger.Error("Failed to unmarshal config", zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &viperProvider{logger: logger}
	p.config.Store(cfg)

	// SIGHUP re-reads the file and the environment.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Panic recovered in SIGHUP handler goroutine",
					zap.String("goroutine_name", "SIGHUPConfigReloader"),
					zap.Any("panic_info", r),
					zap.String("stacktrace", string(debug.Stack())),
				)
			}
		}()
		defer signal.Stop(sigChan)
		for {
			select {
			case sig := <-sigChan:
				p.logger.Info("SIGHUP received, attempting to reload configuration...", zap.String("signal", sig.String()))
				if err := v.ReadInConfig(); err != nil {
					p.logger.Error("Failed to re-read config file on SIGHUP", zap.Error(err))
					continue
				}
				p.reload(v, "sighup")
			case <-appCtx.Done():
				p.logger.Info("SIGHUPConfigReloader goroutine shutting down due to context cancellation.")
				return
			}
		}
	}()

	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("Panic recovered in OnConfigChange callback",
						zap.String("event_name", e.Name),
						zap.Any("panic_info", r),
						zap.String("stacktrace", string(debug.Stack())),
					)
				}
			}()
			p.logger.Info("Config file changed", zap.String("name", e.Name), zap.String("op", e.Op.String()))
			p.reload(v, "file_change")
		})
	}

	p.logger.Info("Configuration loaded successfully", zap.String("config_file_used", v.ConfigFileUsed()))
	return p, nil
}

func (p *viperProvider) reload(v *viper.Viper, trigger string) {
	newCfg := &Config{}
	if err := v.Unmarshal(newCfg); err != nil {
		p.logger.Error("Failed to unmarshal reloaded config", zap.String("trigger", trigger), zap.Error(err))
		return
	}
	if err := newCfg.Validate(); err != nil {
		p.logger.Error("Reloaded config is invalid, keeping previous", zap.String("trigger", trigger), zap.Error(err))
		return
	}
	p.config.Store(newCfg)
	p.logger.Info("Configuration reloaded successfully", zap.String("trigger", trigger))
}

// Get returns the current configuration.
func (p *viperProvider) Get() *Config {
	return p.config.Load()
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case CacheDriverRedis:
		if c.Cache.Address == "" {
			return fmt.Errorf("cache.address is required for the %q cache driver", c.Cache.Driver)
		}
	case CacheDriverUpstash:
		if c.Cache.RESTURL == "" || c.Cache.RESTToken == "" {
			return fmt.Errorf("cache.rest_url and cache.rest_token are required for the %q cache driver", c.Cache.Driver)
		}
	case CacheDriverMemory:
	default:
		return fmt.Errorf("unknown cache.driver %q", c.Cache.Driver)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for the %q store driver", c.Store.Driver)
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

// Helper function to get env vars with a fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
