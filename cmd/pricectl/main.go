// Command pricectl queries market data through the same cache and coalescing
// layer the API uses. Handy for checking upstream connectivity and cache keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-portfolio/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Keep stdout for command output
	cfg.Log.Format = "console"
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	logger := logging.New(cfg.Log)
	defer logger.Sync()

	store, redisCache := cache.NewStore(cfg, logger)
	if redisCache != nil {
		defer redisCache.Close()
	}

	provider := coingecko.NewClient(cfg.CoinGecko, logger)
	prices := services.NewPriceService(provider, store, cfg.CoinGecko.DefaultCurrency, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(prices, os.Stdout).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
