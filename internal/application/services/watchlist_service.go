package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
)

// WatchlistService manages coins a user follows
type WatchlistService struct {
	watchlistRepo repositories.WatchlistRepository
	prices        *PriceService
	logger        *zap.Logger
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(
	watchlistRepo repositories.WatchlistRepository,
	prices *PriceService,
	logger *zap.Logger,
) *WatchlistService {
	return &WatchlistService{
		watchlistRepo: watchlistRepo,
		prices:        prices,
		logger:        logger,
	}
}

// WatchlistEntryDTO is a watched coin with its live price
type WatchlistEntryDTO struct {
	entities.WatchlistItem
	Currency     string  `json:"currency"`
	CurrentPrice float64 `json:"current_price"`
}

// WatchlistResponse is the API response for watchlist queries
type WatchlistResponse struct {
	Data []WatchlistEntryDTO `json:"data"`
}

// WatchlistItemResponse wraps a single watchlist item for API response
type WatchlistItemResponse struct {
	Data entities.WatchlistItem `json:"data"`
}

// GetWatchlist returns the user's watched coins priced in currency. Prices degrade to 0 on outage.
func (s *WatchlistService) GetWatchlist(ctx context.Context, userID, currency string) (*WatchlistResponse, error) {
	currency = s.prices.currency(currency)

	items, err := s.watchlistRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.CoinID
	}
	prices := s.prices.GetPricesFor(ctx, ids, currency)

	dtos := make([]WatchlistEntryDTO, len(items))
	for i, item := range items {
		dtos[i] = WatchlistEntryDTO{
			WatchlistItem: item,
			Currency:      currency,
			CurrentPrice:  prices[item.CoinID],
		}
	}

	return &WatchlistResponse{Data: dtos}, nil
}

// AddToWatchlist verifies the coin upstream and adds it to the user's watchlist
func (s *WatchlistService) AddToWatchlist(ctx context.Context, userID, coinID string) (*WatchlistItemResponse, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if coinID == "" {
		return nil, apperrors.NewValidationError("coin_id", "is required")
	}

	exists, err := s.watchlistRepo.Exists(ctx, userID, coinID)
	if err != nil {
		return nil, fmt.Errorf("failed to check watchlist: %w", err)
	}
	if exists {
		return nil, apperrors.ErrDuplicateEntry
	}

	coin, err := s.prices.VerifyCoin(ctx, coinID)
	if err != nil {
		return nil, err
	}

	item := entities.WatchlistItem{
		ID:         uuid.NewString(),
		UserID:     userID,
		CoinID:     coin.ID,
		CoinSymbol: coin.Symbol,
		CoinName:   coin.Name,
		AddedAt:    time.Now().UTC(),
	}

	if err := s.watchlistRepo.Add(ctx, &item); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}

	return &WatchlistItemResponse{Data: item}, nil
}

// RemoveFromWatchlist removes a coin from the user's watchlist
func (s *WatchlistService) RemoveFromWatchlist(ctx context.Context, userID, coinID string) error {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	if err := s.watchlistRepo.Remove(ctx, userID, coinID); err != nil {
		return fmt.Errorf("failed to remove from watchlist: %w", err)
	}
	return nil
}
