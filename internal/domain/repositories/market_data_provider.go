package repositories

import (
	"context"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// MarketDataProvider is the upstream market-data API.
// Every method returns *apperrors.UpstreamError on transport failure or a non-2xx response.
type MarketDataProvider interface {
	ListCoins(ctx context.Context) ([]entities.CoinListEntry, error)
	GetMarketPage(ctx context.Context, params entities.MarketPageParams) ([]entities.MarketRow, error)

	// GetCoinDetail returns *apperrors.NotFoundError when the provider has no such coin
	GetCoinDetail(ctx context.Context, coinID string) (*entities.CoinDetail, error)

	// GetSimplePrices batches coins into one call: coinID -> currency -> price.
	// Empty coinIDs returns an empty map without a request.
	GetSimplePrices(ctx context.Context, coinIDs, currencies []string) (map[string]map[string]float64, error)

	GetCoinsByIDs(ctx context.Context, coinIDs []string, currency string) ([]entities.MarketRow, error)
	GetHistory(ctx context.Context, coinID, currency string, days int) ([]entities.HistoryPoint, error)
	Search(ctx context.Context, query string) ([]entities.CoinMatch, error)
	GetTrending(ctx context.Context) ([]entities.CoinMatch, error)
	GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error)
	GetCoinByContract(ctx context.Context, platform, address string) (*entities.CoinDetail, error)
}
