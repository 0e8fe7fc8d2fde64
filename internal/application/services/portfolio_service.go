package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
	"github.com/bimakw/coin-portfolio/internal/domain/valuation"
)

const (
	// DefaultPerformerCount is how many top and worst holdings analytics report
	DefaultPerformerCount = 5

	maxConcurrentWrites = 8
)

// PortfolioService values a user's holdings against live prices
type PortfolioService struct {
	holdingRepo   repositories.HoldingRepository
	prices        *PriceService
	priceFallback string
	logger        *zap.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(
	holdingRepo repositories.HoldingRepository,
	prices *PriceService,
	cfg config.CacheConfig,
	logger *zap.Logger,
) *PortfolioService {
	return &PortfolioService{
		holdingRepo:   holdingRepo,
		prices:        prices,
		priceFallback: cfg.PriceFallback,
		logger:        logger,
	}
}

// PortfolioResponse wraps a portfolio snapshot for API response
type PortfolioResponse struct {
	Data entities.PortfolioSnapshot `json:"data"`
}

// AnalyticsResponse wraps portfolio analytics for API response
type AnalyticsResponse struct {
	Data entities.PortfolioAnalytics `json:"data"`
}

// RecalculateResponse wraps a recalculation summary for API response
type RecalculateResponse struct {
	Data entities.BatchSummary `json:"data"`
}

// GetPortfolio values every holding of the user. Price outages degrade the valuation, never fail it.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID, currency string) (*PortfolioResponse, error) {
	snapshot, err := s.snapshot(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	return &PortfolioResponse{Data: snapshot}, nil
}

// GetAnalytics returns totals, top and worst performers and allocation breakdowns
func (s *PortfolioService) GetAnalytics(ctx context.Context, userID, currency string, performers int) (*AnalyticsResponse, error) {
	if performers <= 0 {
		performers = DefaultPerformerCount
	}

	snapshot, err := s.snapshot(ctx, userID, currency)
	if err != nil {
		return nil, err
	}

	return &AnalyticsResponse{
		Data: entities.PortfolioAnalytics{
			PortfolioTotals:      snapshot.PortfolioTotals,
			Currency:             snapshot.Currency,
			HoldingCount:         len(snapshot.Holdings),
			Performers:           valuation.RankPerformers(snapshot.Holdings, performers),
			AllocationByValue:    valuation.AllocationBreakdown(snapshot.Holdings, entities.AllocationByValue),
			AllocationByInvested: valuation.AllocationBreakdown(snapshot.Holdings, entities.AllocationByInvestment),
		},
	}, nil
}

// GetSnapshot returns the bare snapshot, used by exports
func (s *PortfolioService) GetSnapshot(ctx context.Context, userID, currency string) (*entities.PortfolioSnapshot, error) {
	snapshot, err := s.snapshot(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// RecalculateHoldings persists the live price of every holding of the user.
// Writes run in parallel and independently: a failed write never blocks or undoes the others.
// Holdings without a live quote are skipped so an outage does not overwrite known prices.
func (s *PortfolioService) RecalculateHoldings(ctx context.Context, userID, currency string) (*RecalculateResponse, error) {
	holdings, err := s.holdingRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}

	summary := entities.BatchSummary{Total: len(holdings)}
	if len(holdings) == 0 {
		return &RecalculateResponse{Data: summary}, nil
	}

	prices := s.prices.GetPricesFor(ctx, coinIDs(holdings), currency)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(maxConcurrentWrites)

	for _, h := range holdings {
		price := prices[h.CoinID]
		if price <= 0 {
			summary.Skipped++
			continue
		}

		g.Go(func() error {
			err := s.holdingRepo.UpdateCurrentPrice(ctx, h.ID, price)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors = append(summary.Errors, fmt.Sprintf("holding %s: %v", h.ID, err))
				return nil
			}
			summary.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(summary.Errors)

	if summary.Failed > 0 || summary.Skipped > 0 {
		s.logger.Warn("Holding recalculation incomplete",
			zap.String("user_id", userID),
			zap.Int("total", summary.Total),
			zap.Int("failed", summary.Failed),
			zap.Int("skipped", summary.Skipped),
		)
	}

	return &RecalculateResponse{Data: summary}, nil
}

func (s *PortfolioService) snapshot(ctx context.Context, userID, currency string) (entities.PortfolioSnapshot, error) {
	currency = s.prices.currency(currency)

	holdings, err := s.holdingRepo.FindByUser(ctx, userID)
	if err != nil {
		return entities.PortfolioSnapshot{}, fmt.Errorf("failed to get holdings: %w", err)
	}

	prices := s.prices.GetPricesFor(ctx, coinIDs(holdings), currency)

	var opts []valuation.Option
	if s.priceFallback == config.PriceFallbackLastKnown {
		opts = append(opts, valuation.WithFallbackPrice(func(h entities.Holding) float64 {
			return h.CurrentPrice
		}))
	}

	snapshot := valuation.Snapshot(holdings, prices, currency, opts...)
	if len(snapshot.MissingPrices) > 0 {
		s.logger.Warn("Portfolio valued without live prices",
			zap.String("user_id", userID),
			zap.Strings("coin_ids", snapshot.MissingPrices),
			zap.String("fallback", s.priceFallback),
		)
	}
	return snapshot, nil
}

func coinIDs(holdings []entities.Holding) []string {
	ids := make([]string, len(holdings))
	for i, h := range holdings {
		ids[i] = h.CoinID
	}
	return ids
}
