package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	pkgconfig "github.com/utafrali/catalog/pkg/config"
	"github.com/utafrali/catalog/pkg/database"
	"github.com/utafrali/catalog/pkg/tracing"
)

// Store, cache and asset drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"

	AssetDriverCloudinary = "cloudinary"
	AssetDriverMemory     = "memory"
)

// ServiceName identifies the catalog in logs, metrics, traces and events.
const ServiceName = "catalog-service"

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int `env:"CATALOG_HTTP_PORT" envDefault:"8001"`
	ShutdownTimeoutSecs int `env:"SHUTDOWN_TIMEOUT_SECONDS" envDefault:"15"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Document store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"catalog"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"catalog_secret"`
	PostgresDB   string `env:"CATALOG_DB_NAME" envDefault:"catalog"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// MongoDB
	MongoURI         string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase    string `env:"MONGO_DATABASE" envDefault:"catalog"`
	MongoMaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE" envDefault:"50"`

	// Catalog cache
	CacheDriver     string `env:"CACHE_DRIVER" envDefault:"memory"`
	CacheTTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"300"`
	RedisAddr       string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string `env:"REDIS_PASSWORD"`
	RedisDB         int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix  string `env:"REDIS_KEY_PREFIX" envDefault:"catalog"`

	// Kafka
	EventsEnabled bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Asset store
	AssetDriver   string `env:"ASSET_DRIVER" envDefault:"memory"`
	CloudinaryURL string `env:"CLOUDINARY_URL"`
	AssetBaseURL  string `env:"ASSET_BASE_URL" envDefault:"http://localhost:8001/assets"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and the settings each selected driver needs.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if err := oneOf("STORE_DRIVER", c.StoreDriver, StoreDriverPostgres, StoreDriverMongo); err != nil {
		return err
	}
	if err := oneOf("CACHE_DRIVER", c.CacheDriver, CacheDriverMemory, CacheDriverRedis); err != nil {
		return err
	}
	if err := oneOf("ASSET_DRIVER", c.AssetDriver, AssetDriverCloudinary, AssetDriverMemory); err != nil {
		return err
	}

	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.PostgresHost == "" {
			return errors.New("POSTGRES_HOST is required")
		}
		if c.PostgresUser == "" {
			return errors.New("POSTGRES_USER is required")
		}
		if c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
		}
	case StoreDriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required")
		}
		if c.MongoDatabase == "" {
			return errors.New("MONGO_DATABASE is required")
		}
	}

	if c.CacheDriver == CacheDriverRedis && c.RedisAddr == "" {
		return errors.New("REDIS_ADDR is required")
	}
	if c.CacheTTLSeconds < 1 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.AssetDriver == AssetDriverCloudinary && c.CloudinaryURL == "" {
		return errors.New("CLOUDINARY_URL is required when ASSET_DRIVER is cloudinary")
	}
	if c.EventsEnabled && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

func oneOf(name, value string, allowed ...string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), value)
}

// Postgres returns the connection settings of the Postgres store.
func (c *Config) Postgres() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// Mongo returns the connection settings of the Mongo store.
func (c *Config) Mongo() database.MongoConfig {
	cfg := database.DefaultMongoConfig()
	cfg.URI = c.MongoURI
	cfg.Database = c.MongoDatabase
	cfg.MaxPoolSize = c.MongoMaxPoolSize
	return cfg
}

// Redis returns the connection settings of the Redis cache.
func (c *Config) Redis() database.RedisConfig {
	cfg := database.DefaultRedisConfig()
	if c.RedisAddr != "" {
		cfg.Addr = c.RedisAddr
	}
	cfg.Password = c.RedisPassword
	cfg.DB = c.RedisDB
	return cfg
}

// Tracing returns the OpenTelemetry settings.
func (c *Config) Tracing() tracing.Config {
	cfg := tracing.DefaultConfig(ServiceName)
	cfg.Environment = c.Environment
	cfg.OTLPEndpoint = c.OTELEndpoint
	cfg.SampleRate = c.OTELSampleRate
	cfg.Enabled = c.OTELEnabled
	return cfg
}

// CacheTTL is the lifetime of a cached listing page.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// SlowQueryThreshold is the duration above which queries are logged.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// ShutdownTimeout bounds graceful shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}
