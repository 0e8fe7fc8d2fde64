package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
)

// RepricerService periodically persists live prices for every user's holdings
type RepricerService struct {
	portfolio   *PortfolioService
	holdingRepo repositories.HoldingRepository
	config      config.RepricerConfig
	logger      *zap.Logger
	scheduler   *cron.Cron
	initialRun  sync.WaitGroup
	running     atomic.Bool
	stats       RepricerStats
	statsMu     sync.RWMutex
}

// RepricerStats tracks repricer progress
type RepricerStats struct {
	Runs          int64
	SkippedRuns   int64
	UsersRepriced int64
	LastRunAt     time.Time
	LastDuration  time.Duration
	LastSummary   entities.BatchSummary
	ErrorCount    int64
}

// NewRepricerService creates a new repricer service
func NewRepricerService(
	portfolio *PortfolioService,
	holdingRepo repositories.HoldingRepository,
	cfg config.RepricerConfig,
	logger *zap.Logger,
) *RepricerService {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &RepricerService{
		portfolio:   portfolio,
		holdingRepo: holdingRepo,
		config:      cfg,
		logger:      logger,
		scheduler:   cron.New(),
	}
}

// Start schedules repricing runs and triggers one immediately
func (s *RepricerService) Start(ctx context.Context) error {
	s.logger.Info("Starting repricer service",
		zap.String("schedule", s.config.Schedule),
		zap.Int("workers", s.config.WorkerCount),
		zap.String("currency", s.config.Currency),
	)

	if _, err := s.scheduler.AddFunc(s.config.Schedule, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid repricer schedule %q: %w", s.config.Schedule, err)
	}
	s.scheduler.Start()

	s.initialRun.Add(1)
	go func() {
		defer s.initialRun.Done()
		s.RunOnce(ctx)
	}()
	return nil
}

// Stop stops scheduling new runs and waits for running ones, including the initial run, to finish
func (s *RepricerService) Stop() {
	s.logger.Info("Stopping repricer service")
	<-s.scheduler.Stop().Done()
	s.initialRun.Wait()
}

// GetStats returns current repricer stats
func (s *RepricerService) GetStats() RepricerStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

// RunOnce reprices every user's holdings with bounded concurrency.
// Overlapping runs are skipped. Per-user failures are counted, never fatal.
func (s *RepricerService) RunOnce(ctx context.Context) entities.BatchSummary {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous repricing run still in progress, skipping")
		repricerRuns.WithLabelValues("skipped").Inc()
		s.statsMu.Lock()
		s.stats.SkippedRuns++
		s.statsMu.Unlock()
		return entities.BatchSummary{}
	}
	defer s.running.Store(false)

	start := time.Now()

	users, err := s.holdingRepo.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		repricerRuns.WithLabelValues("error").Inc()
		s.statsMu.Lock()
		s.stats.ErrorCount++
		s.statsMu.Unlock()
		return entities.BatchSummary{}
	}

	var (
		mu      sync.Mutex
		total   entities.BatchSummary
		g       errgroup.Group
		userErr int64
	)
	g.SetLimit(s.config.WorkerCount)

	for _, userID := range users {
		g.Go(func() error {
			result, err := s.portfolio.RecalculateHoldings(ctx, userID, s.config.Currency)
			if err != nil {
				s.logger.Error("Failed to reprice user", zap.String("user_id", userID), zap.Error(err))
				atomic.AddInt64(&userErr, 1)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			total.Total += result.Data.Total
			total.Succeeded += result.Data.Succeeded
			total.Failed += result.Data.Failed
			total.Skipped += result.Data.Skipped
			total.Errors = append(total.Errors, result.Data.Errors...)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	repricerRuns.WithLabelValues("completed").Inc()
	repricerDuration.Observe(elapsed.Seconds())
	repricerHoldings.WithLabelValues("succeeded").Add(float64(total.Succeeded))
	repricerHoldings.WithLabelValues("failed").Add(float64(total.Failed))
	repricerHoldings.WithLabelValues("skipped").Add(float64(total.Skipped))

	s.statsMu.Lock()
	s.stats.Runs++
	s.stats.UsersRepriced += int64(len(users)) - userErr
	s.stats.ErrorCount += userErr
	s.stats.LastRunAt = time.Now()
	s.stats.LastDuration = elapsed
	s.stats.LastSummary = total
	s.statsMu.Unlock()

	s.logger.Info("Repricing run completed",
		zap.Int("users", len(users)),
		zap.Int("holdings", total.Total),
		zap.Int("succeeded", total.Succeeded),
		zap.Int("failed", total.Failed),
		zap.Int("skipped", total.Skipped),
		zap.Duration("duration", elapsed),
	)

	return total
}
