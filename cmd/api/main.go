package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/coingecko"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/database"
	"github.com/bimakw/coin-portfolio/internal/logging"
	"github.com/bimakw/coin-portfolio/internal/presentation/handlers"
	"github.com/bimakw/coin-portfolio/internal/presentation/middleware"
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

	logger.Info("Starting coin-portfolio API",
		zap.Int("port", cfg.API.Port),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("db_driver", cfg.Database.Driver),
	)

	// Open holdings store
	db, err := database.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(context.Background()); err != nil {
			logger.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	store, redisCache := cache.NewStore(cfg, logger)
	if redisCache != nil {
		defer redisCache.Close()
	}

	verifier, err := middleware.NewTokenVerifier(cfg.Auth.FernetKeys, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("Failed to load auth keys", zap.Error(err))
	}

	// Create repositories
	holdingRepo := database.NewHoldingRepo(db.DB())
	watchlistRepo := database.NewWatchlistRepo(db.DB())

	// Create services
	provider := coingecko.NewClient(cfg.CoinGecko, logger)
	priceService := services.NewPriceService(provider, store, cfg.CoinGecko.DefaultCurrency, logger)
	portfolioService := services.NewPortfolioService(holdingRepo, priceService, cfg.Cache, logger)
	holdingService := services.NewHoldingService(holdingRepo, priceService, logger)
	watchlistService := services.NewWatchlistService(watchlistRepo, priceService, logger)

	// Create handlers
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, logger)
	holdingHandler := handlers.NewHoldingHandler(holdingService, portfolioService, logger)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService, logger)
	marketHandler := handlers.NewMarketHandler(priceService, logger)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(db, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORS(cfg.API.AllowedOrigins).Handler)

	// Health endpoints (no rate limiting)
	healthHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

		marketHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(verifier))
			portfolioHandler.RegisterRoutes(r)
			holdingHandler.RegisterRoutes(r)
			watchlistHandler.RegisterRoutes(r)
		})

		if cfg.API.EnableAdmin {
			logger.Warn("Admin cache endpoints enabled")
			handlers.NewAdminHandler(priceService, logger).RegisterRoutes(r)
		}
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}
