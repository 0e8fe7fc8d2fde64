package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream market-data provider
	CoinGecko CoinGeckoConfig

	// Price memo cache
	Cache CacheConfig

	// Holdings store
	Database DatabaseConfig

	// Redis configuration (only used when Cache.Backend is "redis")
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Session token verification
	Auth AuthConfig

	// Background repricer configuration
	Repricer RepricerConfig

	// Logging configuration
	Log LogConfig
}

// CoinGeckoConfig holds upstream market-data API settings
type CoinGeckoConfig struct {
	BaseURL         string        `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com/api/v3"`
	APIKey          string        `envconfig:"COINGECKO_API_KEY" default:""`
	Timeout         time.Duration `envconfig:"COINGECKO_TIMEOUT" default:"10s"`
	MaxRetries      int           `envconfig:"COINGECKO_MAX_RETRIES" default:"2"`
	RetryDelay      time.Duration `envconfig:"COINGECKO_RETRY_DELAY" default:"1s"`
	DefaultCurrency string        `envconfig:"COINGECKO_DEFAULT_CURRENCY" default:"usd"`
}

// Cache backends, price fallback policies and database drivers
const (
	CacheBackendMemory     = "memory"
	CacheBackendRedis      = "redis"
	PriceFallbackZero      = "zero"
	PriceFallbackLastKnown = "last_known"
	DriverPostgres         = "postgres"
	DriverSQLite           = "sqlite"
)

// CacheConfig holds price cache settings
type CacheConfig struct {
	Backend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	TTL     time.Duration `envconfig:"CACHE_TTL" default:"60s"`
	// PriceFallback decides what a holding is valued at when no quote is available:
	// "zero" or "last_known" (the holding's last persisted price).
	PriceFallback string `envconfig:"PRICE_FALLBACK" default:"zero"`
}

// DatabaseConfig holds holdings store connection settings
type DatabaseConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"postgres"`
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"portfolio"`
	Password        string        `envconfig:"DB_PASSWORD" default:"portfolio"`
	Name            string        `envconfig:"DB_NAME" default:"coin_portfolio"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	SQLitePath      string        `envconfig:"DB_SQLITE_PATH" default:"./data/portfolio.db"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host      string `envconfig:"REDIS_HOST" default:"localhost"`
	Port      int    `envconfig:"REDIS_PORT" default:"6379"`
	Password  string `envconfig:"REDIS_PASSWORD" default:""`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"coin-portfolio:"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	AllowedOrigins  []string      `envconfig:"API_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost"`
	// Dev-only cache introspection endpoints
	EnableAdmin bool `envconfig:"API_ENABLE_ADMIN" default:"false"`
}

// AuthConfig holds session token settings
type AuthConfig struct {
	// FernetKeys is a comma-separated list of base64 keys; the first one is the primary key.
	FernetKeys []string      `envconfig:"AUTH_FERNET_KEYS"`
	TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
}

// RepricerConfig holds background repricing settings
type RepricerConfig struct {
	Schedule    string `envconfig:"REPRICER_SCHEDULE" default:"@every 5m"`
	WorkerCount int    `envconfig:"REPRICER_WORKER_COUNT" default:"4"`
	Currency    string `envconfig:"REPRICER_CURRENCY" default:"usd"`
	MetricsPort int    `envconfig:"REPRICER_METRICS_PORT" default:"8082"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from a local .env file (if present) and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q: must be memory or redis", c.Cache.Backend)
	}
	switch c.Cache.PriceFallback {
	case PriceFallbackZero, PriceFallbackLastKnown:
	default:
		return fmt.Errorf("invalid PRICE_FALLBACK %q: must be zero or last_known", c.Cache.PriceFallback)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: must be postgres or sqlite", c.Database.Driver)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.CoinGecko.Timeout <= 0 {
		return fmt.Errorf("COINGECKO_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the connection string for the configured driver
func (c *DatabaseConfig) DSN() string {
	if c.Driver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
