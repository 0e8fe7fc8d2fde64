package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
)

// MaxNotesLength is the longest note a holding may carry, in characters
const MaxNotesLength = 500

// HoldingService manages a user's recorded holdings
type HoldingService struct {
	holdingRepo repositories.HoldingRepository
	prices      *PriceService
	logger      *zap.Logger
	now         func() time.Time
}

// NewHoldingService creates a new holding service
func NewHoldingService(
	holdingRepo repositories.HoldingRepository,
	prices *PriceService,
	logger *zap.Logger,
) *HoldingService {
	return &HoldingService{
		holdingRepo: holdingRepo,
		prices:      prices,
		logger:      logger,
		now:         time.Now,
	}
}

// HoldingResponse wraps a single holding for API response
type HoldingResponse struct {
	Data entities.Holding `json:"data"`
}

// GetHolding retrieves one of the user's holdings
func (s *HoldingService) GetHolding(ctx context.Context, userID, holdingID string) (*HoldingResponse, error) {
	holding, err := s.holdingRepo.GetByID(ctx, userID, holdingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return &HoldingResponse{Data: *holding}, nil
}

// CreateHolding validates the input, verifies the coin upstream and stores the holding.
// An unverifiable coin rejects the request.
func (s *HoldingService) CreateHolding(ctx context.Context, userID string, input entities.HoldingInput) (*HoldingResponse, error) {
	input, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	coin, err := s.prices.VerifyCoin(ctx, input.CoinID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	holding := entities.Holding{
		ID:           uuid.NewString(),
		UserID:       userID,
		CoinID:       coin.ID,
		CoinSymbol:   coin.Symbol,
		CoinName:     coin.Name,
		Amount:       input.Amount,
		BuyPrice:     input.BuyPrice,
		PurchaseDate: *input.PurchaseDate,
		Notes:        input.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.holdingRepo.Create(ctx, &holding); err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	s.logger.Info("Holding created",
		zap.String("user_id", userID),
		zap.String("holding_id", holding.ID),
		zap.String("coin_id", holding.CoinID),
	)

	return &HoldingResponse{Data: holding}, nil
}

// UpdateHolding replaces the editable fields of a holding. A changed coin is verified again.
func (s *HoldingService) UpdateHolding(ctx context.Context, userID, holdingID string, input entities.HoldingInput) (*HoldingResponse, error) {
	input, err := s.validate(input)
	if err != nil {
		return nil, err
	}

	holding, err := s.holdingRepo.GetByID(ctx, userID, holdingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	if input.CoinID != holding.CoinID {
		coin, err := s.prices.VerifyCoin(ctx, input.CoinID)
		if err != nil {
			return nil, err
		}
		holding.CoinID = coin.ID
		holding.CoinSymbol = coin.Symbol
		holding.CoinName = coin.Name
		holding.CurrentPrice = 0
	}

	holding.Amount = input.Amount
	holding.BuyPrice = input.BuyPrice
	holding.PurchaseDate = *input.PurchaseDate
	holding.Notes = input.Notes
	holding.UpdatedAt = s.now().UTC()

	if err := s.holdingRepo.Update(ctx, holding); err != nil {
		return nil, fmt.Errorf("failed to update holding: %w", err)
	}

	return &HoldingResponse{Data: *holding}, nil
}

// DeleteHolding removes one of the user's holdings
func (s *HoldingService) DeleteHolding(ctx context.Context, userID, holdingID string) error {
	if err := s.holdingRepo.Delete(ctx, userID, holdingID); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// validate rejects malformed input before any cache or upstream interaction
func (s *HoldingService) validate(input entities.HoldingInput) (entities.HoldingInput, error) {
	input.CoinID = strings.ToLower(strings.TrimSpace(input.CoinID))
	if input.CoinID == "" {
		return input, apperrors.NewValidationError("coin_id", "is required")
	}

	if math.IsNaN(input.Amount) || math.IsInf(input.Amount, 0) || input.Amount < entities.MinHoldingAmount {
		return input, apperrors.NewValidationError("amount", fmt.Sprintf("must be at least %g", entities.MinHoldingAmount))
	}

	if math.IsNaN(input.BuyPrice) || math.IsInf(input.BuyPrice, 0) || input.BuyPrice < 0 {
		return input, apperrors.NewValidationError("buy_price", "must be zero or positive")
	}

	now := s.now().UTC()
	if input.PurchaseDate == nil {
		input.PurchaseDate = &now
	} else if input.PurchaseDate.After(now) {
		return input, apperrors.NewValidationError("purchase_date", "must not be in the future")
	}

	input.Notes = strings.TrimSpace(input.Notes)
	if utf8.RuneCountInString(input.Notes) > MaxNotesLength {
		return input, apperrors.NewValidationError("notes", fmt.Sprintf("must be at most %d characters", MaxNotesLength))
	}

	return input, nil
}
