package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		CoinGecko: CoinGeckoConfig{Timeout: 10 * time.Second},
		Cache:     CacheConfig{Backend: "memory", TTL: time.Minute, PriceFallback: "zero"},
		Database:  DatabaseConfig{Driver: "postgres"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Cache.TTL != 60*time.Second {
		t.Errorf("expected cache TTL 60s, got %v", cfg.Cache.TTL)
	}
	if cfg.CoinGecko.Timeout != 10*time.Second {
		t.Errorf("expected upstream timeout 10s, got %v", cfg.CoinGecko.Timeout)
	}
	if cfg.CoinGecko.DefaultCurrency != "usd" {
		t.Errorf("expected default currency usd, got %s", cfg.CoinGecko.DefaultCurrency)
	}
	if cfg.API.EnableAdmin {
		t.Error("expected admin endpoints to be disabled by default")
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CACHE_TTL", "15s")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cache.TTL != 15*time.Second {
		t.Errorf("expected 15s, got %v", cfg.Cache.TTL)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("expected redis backend, got %s", cfg.Cache.Backend)
	}
	if cfg.Database.DSN() != cfg.Database.SQLitePath {
		t.Errorf("expected sqlite DSN to be the file path, got %s", cfg.Database.DSN())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"unknown fallback", func(c *Config) { c.Cache.PriceFallback = "average" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }, true},
		{"zero timeout", func(c *Config) { c.CoinGecko.Timeout = 0 }, true},
		{"last known fallback", func(c *Config) { c.Cache.PriceFallback = "last_known" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5432,
		User:     "u",
		Password: "p",
		Name:     "n",
		SSLMode:  "disable",
	}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
