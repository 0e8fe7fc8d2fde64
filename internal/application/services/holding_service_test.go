package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
	"github.com/bimakw/coin-portfolio/internal/testutil"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupHoldingService() (*HoldingService, *testutil.MockHoldingRepository, *testutil.MockMarketDataProvider) {
	logger := zap.NewNop()
	repo := testutil.NewMockHoldingRepository()
	provider := testutil.NewMockMarketDataProvider()
	provider.SetPrice(testutil.BitcoinID, "usd", 65000)
	provider.SetPrice(testutil.EthereumID, "usd", 3000)
	prices := NewPriceService(provider, cache.NewMemoCache(time.Minute), "usd", logger)

	service := NewHoldingService(repo, prices, logger)
	service.now = func() time.Time { return fixedNow }
	return service, repo, provider
}

func TestHoldingService_CreateHolding(t *testing.T) {
	ctx := context.Background()

	t.Run("creates verified holding", func(t *testing.T) {
		service, repo, _ := setupHoldingService()

		result, err := service.CreateHolding(ctx, testutil.AliceUserID, entities.HoldingInput{
			CoinID:   " Bitcoin ",
			Amount:   0.5,
			BuyPrice: 30000,
			Notes:    "cold wallet",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		h := result.Data
		if h.ID == "" || h.CoinID != "bitcoin" || h.CoinName != "Bitcoin" {
			t.Errorf("unexpected holding %+v", h)
		}
		if !h.PurchaseDate.Equal(fixedNow) {
			t.Errorf("expected purchase date to default to now, got %v", h.PurchaseDate)
		}
		if _, ok := repo.Holding(h.ID); !ok {
			t.Error("expected holding to be stored")
		}
	})

	t.Run("unknown coin is rejected", func(t *testing.T) {
		service, repo, _ := setupHoldingService()

		_, err := service.CreateHolding(ctx, testutil.AliceUserID, entities.HoldingInput{CoinID: "nope", Amount: 1})
		if !apperrors.IsNotFound(err) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
		if len(repo.Calls) != 0 {
			t.Error("expected nothing to be stored")
		}
	})

	t.Run("upstream outage is rejected", func(t *testing.T) {
		service, _, provider := setupHoldingService()
		provider.GetCoinDetailFunc = func(ctx context.Context, coinID string) (*entities.CoinDetail, error) {
			return nil, &apperrors.UpstreamError{Endpoint: "/coins/{id}", Cause: errors.New("timeout")}
		}

		_, err := service.CreateHolding(ctx, testutil.AliceUserID, entities.HoldingInput{CoinID: "bitcoin", Amount: 1})
		if !apperrors.IsUpstream(err) {
			t.Errorf("expected UpstreamError, got %v", err)
		}
	})
}

func TestHoldingService_Validation(t *testing.T) {
	future := fixedNow.Add(time.Hour)

	tests := []struct {
		name  string
		input entities.HoldingInput
		field string
	}{
		{name: "missing coin", input: entities.HoldingInput{Amount: 1}, field: "coin_id"},
		{name: "amount too small", input: entities.HoldingInput{CoinID: "bitcoin", Amount: 1e-9}, field: "amount"},
		{name: "negative amount", input: entities.HoldingInput{CoinID: "bitcoin", Amount: -1}, field: "amount"},
		{name: "NaN amount", input: entities.HoldingInput{CoinID: "bitcoin", Amount: math.NaN()}, field: "amount"},
		{name: "negative buy price", input: entities.HoldingInput{CoinID: "bitcoin", Amount: 1, BuyPrice: -0.01}, field: "buy_price"},
		{name: "future purchase", input: entities.HoldingInput{CoinID: "bitcoin", Amount: 1, PurchaseDate: &future}, field: "purchase_date"},
		{name: "long notes", input: entities.HoldingInput{CoinID: "bitcoin", Amount: 1, Notes: strings.Repeat("x", MaxNotesLength+1)}, field: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, provider := setupHoldingService()

			_, err := service.CreateHolding(context.Background(), testutil.AliceUserID, tt.input)

			var verr *apperrors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
			if len(provider.Calls) != 0 {
				t.Error("expected validation to happen before any upstream call")
			}
		})
	}
}

func TestHoldingService_UpdateHolding(t *testing.T) {
	ctx := context.Background()

	t.Run("changing coin re-verifies and resets price", func(t *testing.T) {
		service, repo, provider := setupHoldingService()
		repo.AddHoldings(testutil.CreateTestHolding(testutil.WithHoldingID("h1"), testutil.WithCurrentPrice(65000)))

		result, err := service.UpdateHolding(ctx, testutil.AliceUserID, "h1", entities.HoldingInput{
			CoinID:   "ethereum",
			Amount:   3,
			BuyPrice: 2000,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Data.CoinID != "ethereum" || result.Data.Amount != 3 || result.Data.CurrentPrice != 0 {
			t.Errorf("unexpected holding %+v", result.Data)
		}
		if provider.CallCount("GetCoinDetail") != 1 {
			t.Error("expected the new coin to be verified")
		}
	})

	t.Run("same coin skips verification", func(t *testing.T) {
		service, repo, provider := setupHoldingService()
		repo.AddHoldings(testutil.CreateTestHolding(testutil.WithHoldingID("h1")))

		if _, err := service.UpdateHolding(ctx, testutil.AliceUserID, "h1", entities.HoldingInput{CoinID: "bitcoin", Amount: 4}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(provider.Calls) != 0 {
			t.Error("expected no upstream calls")
		}
	})

	t.Run("other user's holding", func(t *testing.T) {
		service, repo, _ := setupHoldingService()
		repo.AddHoldings(testutil.CreateTestHolding(testutil.WithHoldingID("h1"), testutil.WithUserID(testutil.BobUserID)))

		_, err := service.UpdateHolding(ctx, testutil.AliceUserID, "h1", entities.HoldingInput{CoinID: "bitcoin", Amount: 1})
		if !errors.Is(err, apperrors.ErrHoldingNotFound) {
			t.Errorf("expected ErrHoldingNotFound, got %v", err)
		}
	})
}

func TestHoldingService_DeleteHolding(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := setupHoldingService()
	repo.AddHoldings(testutil.CreateTestHolding(testutil.WithHoldingID("h1")))

	if err := service.DeleteHolding(ctx, testutil.AliceUserID, "h1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.DeleteHolding(ctx, testutil.AliceUserID, "h1"); !errors.Is(err, apperrors.ErrHoldingNotFound) {
		t.Errorf("expected ErrHoldingNotFound, got %v", err)
	}
}
