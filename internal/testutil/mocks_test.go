package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
)

func TestMockMarketDataProvider_GetSimplePrices(t *testing.T) {
	provider := NewMockMarketDataProvider()
	provider.SetPrice(BitcoinID, "usd", 65000)
	provider.SetPrice(EthereumID, "usd", 3000)

	ctx := context.Background()

	prices, err := provider.GetSimplePrices(ctx, []string{BitcoinID, "unknown"}, []string{"usd"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prices[BitcoinID]["usd"] != 65000 {
		t.Errorf("expected 65000, got %v", prices[BitcoinID]["usd"])
	}
	if _, ok := prices["unknown"]; ok {
		t.Error("expected unknown coin to be omitted")
	}

	if provider.CallCount("GetSimplePrices") != 1 {
		t.Errorf("expected 1 call, got %d", provider.CallCount("GetSimplePrices"))
	}
}

func TestMockMarketDataProvider_GetCoinDetail(t *testing.T) {
	provider := NewMockMarketDataProvider()
	provider.SetPrice(BitcoinID, "usd", 65000)

	detail, err := provider.GetCoinDetail(context.Background(), BitcoinID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ID != BitcoinID || detail.Symbol != "bit" {
		t.Errorf("unexpected detail %+v", detail)
	}

	_, err = provider.GetCoinDetail(context.Background(), "nope")
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestMockHoldingRepository(t *testing.T) {
	repo := NewMockHoldingRepository()
	ctx := context.Background()

	repo.AddHoldings(CreateMultipleHoldings(3)...)
	repo.AddHoldings(CreateTestHolding(WithHoldingID("bob-1"), WithUserID(BobUserID)))

	holdings, err := repo.FindByUser(ctx, AliceUserID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(holdings) != 3 {
		t.Fatalf("expected 3 holdings, got %d", len(holdings))
	}
	if holdings[0].CoinID != BitcoinID || holdings[2].CoinID != SolanaID {
		t.Errorf("expected purchase-date order, got %s..%s", holdings[0].CoinID, holdings[2].CoinID)
	}

	if _, err := repo.GetByID(ctx, AliceUserID, "bob-1"); !errors.Is(err, apperrors.ErrHoldingNotFound) {
		t.Errorf("expected ErrHoldingNotFound for another user's holding, got %v", err)
	}

	if err := repo.UpdateCurrentPrice(ctx, "bob-1", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h, _ := repo.Holding("bob-1"); h.CurrentPrice != 42 {
		t.Errorf("expected current price 42, got %v", h.CurrentPrice)
	}

	users, _ := repo.ListUserIDs(ctx)
	if len(users) != 2 || users[0] != AliceUserID {
		t.Errorf("unexpected users %v", users)
	}
}

func TestMockWatchlistRepository(t *testing.T) {
	repo := NewMockWatchlistRepository()
	ctx := context.Background()

	item := CreateTestWatchlistItem(BitcoinID)
	if err := repo.Add(ctx, &item); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Add(ctx, &item); !errors.Is(err, apperrors.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}

	exists, _ := repo.Exists(ctx, AliceUserID, BitcoinID)
	if !exists {
		t.Error("expected item to exist")
	}

	if err := repo.Remove(ctx, AliceUserID, BitcoinID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Remove(ctx, AliceUserID, BitcoinID); !errors.Is(err, apperrors.ErrWatchlistItemNotFound) {
		t.Errorf("expected ErrWatchlistItemNotFound, got %v", err)
	}
}

func TestMockHealthChecker(t *testing.T) {
	checker := NewMockHealthChecker(true)
	if err := checker.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	checker.SetHealthy(false)
	if err := checker.HealthCheck(context.Background()); err == nil {
		t.Error("expected error when unhealthy")
	}
	if len(checker.Calls) != 2 {
		t.Errorf("expected 2 calls, got %d", len(checker.Calls))
	}
}
