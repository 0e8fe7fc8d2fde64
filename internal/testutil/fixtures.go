package testutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// Common test identities
const (
	AliceUserID = "11111111-1111-1111-1111-111111111111"
	BobUserID   = "22222222-2222-2222-2222-222222222222"
	BitcoinID   = "bitcoin"
	EthereumID  = "ethereum"
	SolanaID    = "solana"
	USDCAddress = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"
)

// CreateTestHolding creates a test holding with default values
func CreateTestHolding(opts ...HoldingOption) entities.Holding {
	h := entities.Holding{
		ID:           "aaaaaaaa-0000-0000-0000-000000000001",
		UserID:       AliceUserID,
		CoinID:       BitcoinID,
		CoinSymbol:   "btc",
		CoinName:     "Bitcoin",
		Amount:       2,
		BuyPrice:     100,
		PurchaseDate: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		CreatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

type HoldingOption func(*entities.Holding)

func WithHoldingID(id string) HoldingOption {
	return func(h *entities.Holding) {
		h.ID = id
	}
}

func WithUserID(userID string) HoldingOption {
	return func(h *entities.Holding) {
		h.UserID = userID
	}
}

func WithCoin(coinID string) HoldingOption {
	return func(h *entities.Holding) {
		h.CoinID = coinID
		h.CoinSymbol = coinID[:3]
		h.CoinName = strings.ToUpper(coinID[:1]) + coinID[1:]
	}
}

func WithAmount(amount float64) HoldingOption {
	return func(h *entities.Holding) {
		h.Amount = amount
	}
}

func WithBuyPrice(price float64) HoldingOption {
	return func(h *entities.Holding) {
		h.BuyPrice = price
	}
}

func WithCurrentPrice(price float64) HoldingOption {
	return func(h *entities.Holding) {
		h.CurrentPrice = price
	}
}

func WithPurchaseDate(date time.Time) HoldingOption {
	return func(h *entities.Holding) {
		h.PurchaseDate = date
	}
}

// CreateMultipleHoldings creates count holdings for Alice across rotating coins
func CreateMultipleHoldings(count int) []entities.Holding {
	coins := []string{BitcoinID, EthereumID, SolanaID}
	holdings := make([]entities.Holding, count)
	for i := 0; i < count; i++ {
		holdings[i] = CreateTestHolding(
			WithHoldingID(fmt.Sprintf("aaaaaaaa-0000-0000-0000-%012d", i+1)),
			WithCoin(coins[i%len(coins)]),
			WithPurchaseDate(time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)),
		)
	}
	return holdings
}

// CreateTestWatchlistItem creates a watchlist entry for Alice
func CreateTestWatchlistItem(coinID string) entities.WatchlistItem {
	return entities.WatchlistItem{
		ID:         "bbbbbbbb-0000-0000-0000-" + fmt.Sprintf("%012d", len(coinID)),
		UserID:     AliceUserID,
		CoinID:     coinID,
		CoinSymbol: coinID[:3],
		CoinName:   strings.ToUpper(coinID[:1]) + coinID[1:],
		AddedAt:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

// CreateTestCoinDetail creates coin details as the provider would return them
func CreateTestCoinDetail(coinID string) *entities.CoinDetail {
	symbol := coinID
	if len(symbol) > 3 {
		symbol = symbol[:3]
	}
	return &entities.CoinDetail{
		ID:            coinID,
		Symbol:        symbol,
		Name:          strings.ToUpper(coinID[:1]) + coinID[1:],
		MarketCapRank: 1,
		CurrentPrice:  map[string]float64{},
		MarketCap:     map[string]float64{},
		TotalVolume:   map[string]float64{},
	}
}
