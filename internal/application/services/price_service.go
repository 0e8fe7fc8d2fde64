package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
)

// PriceService is the single entry point for price and market data.
// Reads go through the cache; only the missing part of a request reaches the provider.
type PriceService struct {
	provider        repositories.MarketDataProvider
	cache           cache.Store
	defaultCurrency string
	logger          *zap.Logger
	group           singleflight.Group
}

// NewPriceService creates a new price service
func NewPriceService(
	provider repositories.MarketDataProvider,
	store cache.Store,
	defaultCurrency string,
	logger *zap.Logger,
) *PriceService {
	return &PriceService{
		provider:        provider,
		cache:           store,
		defaultCurrency: entities.NormalizeCurrency(defaultCurrency),
		logger:          logger,
	}
}

// GetPricesFor returns coin ID -> price in currency. It never fails: coins the provider
// does not quote are valued at 0, and a failed upstream call yields the cached subset.
func (s *PriceService) GetPricesFor(ctx context.Context, coinIDs []string, currency string) map[string]float64 {
	ids := entities.NormalizeCoinIDs(coinIDs)
	currency = s.currency(currency)

	result := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return result
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		var price float64
		err := s.cache.Get(ctx, priceKey(currency, id), &price)
		if err == nil {
			result[id] = price
			continue
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Price cache read failed", zap.String("coin_id", id), zap.Error(err))
		}
		missing = append(missing, id)
	}

	priceCacheLookups.WithLabelValues("hit").Add(float64(len(result)))
	priceCacheLookups.WithLabelValues("miss").Add(float64(len(missing)))

	if len(missing) == 0 {
		s.logger.Debug("Cache hit", zap.Strings("coin_ids", ids), zap.String("currency", currency))
		return result
	}

	fresh, err := s.fetchPrices(ctx, missing, currency)
	if err != nil {
		priceFetchDegraded.Inc()
		s.logger.Error("Upstream price fetch failed, serving cached prices",
			zap.Strings("coin_ids", missing),
			zap.String("currency", currency),
			zap.Int("cached", len(result)),
			zap.Error(err),
		)
		return result
	}

	var gaps []string
	for _, id := range missing {
		price, ok := fresh[id]
		if !ok {
			gaps = append(gaps, id)
		}
		result[id] = price
	}

	if len(gaps) > 0 {
		priceQuoteGaps.Add(float64(len(gaps)))
		s.logger.Warn("No quote for coins, valuing at zero",
			zap.Strings("coin_ids", gaps),
			zap.String("currency", currency),
		)
	}

	return result
}

// fetchPrices asks the provider for missing coins. Identical concurrent misses share one call.
func (s *PriceService) fetchPrices(ctx context.Context, coinIDs []string, currency string) (map[string]float64, error) {
	ctx = context.WithoutCancel(ctx)
	flightKey := priceKey(currency, strings.Join(coinIDs, ","))

	v, err, shared := s.group.Do(flightKey, func() (interface{}, error) {
		quotes, err := s.provider.GetSimplePrices(ctx, coinIDs, []string{currency})
		if err != nil {
			return nil, err
		}

		prices := make(map[string]float64, len(quotes))
		for coin, byCurrency := range quotes {
			price, ok := byCurrency[currency]
			if !ok {
				continue
			}
			prices[coin] = price
			if err := s.cache.Set(ctx, priceKey(currency, coin), price); err != nil {
				s.logger.Warn("Failed to cache price", zap.String("coin_id", coin), zap.Error(err))
			}
		}
		return prices, nil
	})
	if shared {
		coalescedFetches.Inc()
	}
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}

// VerifyCoin confirms that a coin exists. Unlike price reads it propagates
// NotFoundError and UpstreamError so write paths can reject the input.
func (s *PriceService) VerifyCoin(ctx context.Context, coinID string) (*entities.CoinDetail, error) {
	detail, err := s.GetCoinDetail(ctx, coinID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify coin %q: %w", coinID, err)
	}
	return detail, nil
}

// ListCoins returns the provider's coin catalog
func (s *PriceService) ListCoins(ctx context.Context) ([]entities.CoinListEntry, error) {
	return readThrough(ctx, s, "coins:list", func(ctx context.Context) ([]entities.CoinListEntry, error) {
		return s.provider.ListCoins(ctx)
	})
}

// GetMarketPage returns one page of market rows
func (s *PriceService) GetMarketPage(ctx context.Context, params entities.MarketPageParams) ([]entities.MarketRow, error) {
	params = params.Normalize(s.defaultCurrency)
	key := fmt.Sprintf("market:%s:%d:%d:%s:%s",
		params.Currency, params.Page, params.PerPage, params.Order, strings.Join(params.PriceChangeWindows, ","))

	return readThrough(ctx, s, key, func(ctx context.Context) ([]entities.MarketRow, error) {
		return s.provider.GetMarketPage(ctx, params)
	})
}

// GetCoinsByIDs returns market rows for a set of coins
func (s *PriceService) GetCoinsByIDs(ctx context.Context, coinIDs []string, currency string) ([]entities.MarketRow, error) {
	ids := entities.NormalizeCoinIDs(coinIDs)
	if len(ids) == 0 {
		return []entities.MarketRow{}, nil
	}
	currency = s.currency(currency)
	key := fmt.Sprintf("markets:%s:%s", currency, strings.Join(ids, ","))

	return readThrough(ctx, s, key, func(ctx context.Context) ([]entities.MarketRow, error) {
		return s.provider.GetCoinsByIDs(ctx, ids, currency)
	})
}

// GetCoinDetail returns a single coin's details
func (s *PriceService) GetCoinDetail(ctx context.Context, coinID string) (*entities.CoinDetail, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))

	return readThrough(ctx, s, "coin:"+coinID, func(ctx context.Context) (*entities.CoinDetail, error) {
		return s.provider.GetCoinDetail(ctx, coinID)
	})
}

// GetHistory returns a coin's price history
func (s *PriceService) GetHistory(ctx context.Context, coinID, currency string, days int) ([]entities.HistoryPoint, error) {
	coinID = strings.ToLower(strings.TrimSpace(coinID))
	currency = s.currency(currency)
	days = entities.ClampHistoryDays(days)
	key := fmt.Sprintf("history:%s:%s:%d", coinID, currency, days)

	return readThrough(ctx, s, key, func(ctx context.Context) ([]entities.HistoryPoint, error) {
		return s.provider.GetHistory(ctx, coinID, currency, days)
	})
}

// Search finds coins by name or symbol
func (s *PriceService) Search(ctx context.Context, query string) ([]entities.CoinMatch, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < entities.MinSearchLength {
		return []entities.CoinMatch{}, nil
	}

	return readThrough(ctx, s, "search:"+query, func(ctx context.Context) ([]entities.CoinMatch, error) {
		return s.provider.Search(ctx, query)
	})
}

// GetTrending returns trending coins
func (s *PriceService) GetTrending(ctx context.Context) ([]entities.CoinMatch, error) {
	return readThrough(ctx, s, "trending", func(ctx context.Context) ([]entities.CoinMatch, error) {
		return s.provider.GetTrending(ctx)
	})
}

// GetGlobalStats returns market-wide aggregates
func (s *PriceService) GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error) {
	return readThrough(ctx, s, "global", func(ctx context.Context) (*entities.GlobalStats, error) {
		return s.provider.GetGlobalStats(ctx)
	})
}

// GetCoinByContract resolves a token contract to a coin
func (s *PriceService) GetCoinByContract(ctx context.Context, platform, address string) (*entities.CoinDetail, error) {
	platform = strings.ToLower(strings.TrimSpace(platform))
	address = strings.ToLower(strings.TrimSpace(address))
	key := fmt.Sprintf("contract:%s:%s", platform, address)

	return readThrough(ctx, s, key, func(ctx context.Context) (*entities.CoinDetail, error) {
		return s.provider.GetCoinByContract(ctx, platform, address)
	})
}

// CacheStats reports the cache contents for operational tooling
func (s *PriceService) CacheStats(ctx context.Context) (cache.Stats, error) {
	return s.cache.Stats(ctx)
}

// ClearCache drops every cached entry
func (s *PriceService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	s.logger.Info("Price cache cleared")
	return nil
}

func (s *PriceService) currency(currency string) string {
	if strings.TrimSpace(currency) == "" {
		return s.defaultCurrency
	}
	return entities.NormalizeCurrency(currency)
}

// readThrough serves key from the cache or loads it, caching only successful loads
func readThrough[T any](ctx context.Context, s *PriceService, key string, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.logger.Debug("Cache hit", zap.String("key", key))
		return cached, nil
	}

	detached := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		value, err := load(detached)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(detached, key, value); err != nil {
			s.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
		}
		return value, nil
	})
	if shared {
		coalescedFetches.Inc()
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func priceKey(currency, coinID string) string {
	return "price:" + currency + ":" + coinID
}
