package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/database"
	"github.com/bimakw/coin-portfolio/internal/logging"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting coin-portfolio repricer",
		zap.String("schedule", cfg.Repricer.Schedule),
		zap.Int("workers", cfg.Repricer.WorkerCount),
	)

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	store, redisCache := cache.NewStore(cfg, logger)
	if redisCache != nil {
		defer redisCache.Close()
	}

	holdingRepo := database.NewHoldingRepo(db.DB())
	provider := coingecko.NewClient(cfg.CoinGecko, logger)
	priceService := services.NewPriceService(provider, store, cfg.CoinGecko.DefaultCurrency, logger)
	portfolioService := services.NewPortfolioService(holdingRepo, priceService, cfg.Cache, logger)

	repricer := services.NewRepricerService(portfolioService, holdingRepo, cfg.Repricer, logger)
	if err := repricer.Start(ctx); err != nil {
		logger.Fatal("Failed to start repricer", zap.Error(err))
	}

	go startMetricsServer(cfg.Repricer.MetricsPort, logger)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, stopping repricer...")
	cancel()
	repricer.Stop()

	stats := repricer.GetStats()
	logger.Info("Repricer stopped",
		zap.Int64("runs", stats.Runs),
		zap.Int64("skipped_runs", stats.SkippedRuns),
		zap.Int64("errors", stats.ErrorCount),
	)
}

func startMetricsServer(port int, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	addr := fmt.Sprintf(":%d", port)
	logger.Info("Starting metrics server", zap.String("addr", addr))

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Metrics server error", zap.Error(err))
	}
}
