package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockMarketDataProvider is a mock implementation of MarketDataProvider
type MockMarketDataProvider struct {
	mu sync.Mutex

	// Function hooks for custom behavior
	ListCoinsFunc         func(ctx context.Context) ([]entities.CoinListEntry, error)
	GetMarketPageFunc     func(ctx context.Context, params entities.MarketPageParams) ([]entities.MarketRow, error)
	GetCoinDetailFunc     func(ctx context.Context, coinID string) (*entities.CoinDetail, error)
	GetSimplePricesFunc   func(ctx context.Context, coinIDs, currencies []string) (map[string]map[string]float64, error)
	GetCoinsByIDsFunc     func(ctx context.Context, coinIDs []string, currency string) ([]entities.MarketRow, error)
	GetHistoryFunc        func(ctx context.Context, coinID, currency string, days int) ([]entities.HistoryPoint, error)
	SearchFunc            func(ctx context.Context, query string) ([]entities.CoinMatch, error)
	GetTrendingFunc       func(ctx context.Context) ([]entities.CoinMatch, error)
	GetGlobalStatsFunc    func(ctx context.Context) (*entities.GlobalStats, error)
	GetCoinByContractFunc func(ctx context.Context, platform, address string) (*entities.CoinDetail, error)

	// Prices backs GetSimplePrices when no hook is set: coin ID -> currency -> price
	Prices map[string]map[string]float64

	// Call tracking
	Calls []MockCall
}

func NewMockMarketDataProvider() *MockMarketDataProvider {
	return &MockMarketDataProvider{
		Prices: make(map[string]map[string]float64),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockMarketDataProvider) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// CallCount returns how many times method was invoked
func (m *MockMarketDataProvider) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, c := range m.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// SetPrice registers a quote returned by the default GetSimplePrices
func (m *MockMarketDataProvider) SetPrice(coinID, currency string, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Prices[coinID] == nil {
		m.Prices[coinID] = make(map[string]float64)
	}
	m.Prices[coinID][currency] = price
}

func (m *MockMarketDataProvider) ListCoins(ctx context.Context) ([]entities.CoinListEntry, error) {
	m.record("ListCoins")
	if m.ListCoinsFunc != nil {
		return m.ListCoinsFunc(ctx)
	}
	return []entities.CoinListEntry{}, nil
}

func (m *MockMarketDataProvider) GetMarketPage(ctx context.Context, params entities.MarketPageParams) ([]entities.MarketRow, error) {
	m.record("GetMarketPage", params)
	if m.GetMarketPageFunc != nil {
		return m.GetMarketPageFunc(ctx, params)
	}
	return []entities.MarketRow{}, nil
}

func (m *MockMarketDataProvider) GetCoinDetail(ctx context.Context, coinID string) (*entities.CoinDetail, error) {
	m.record("GetCoinDetail", coinID)
	if m.GetCoinDetailFunc != nil {
		return m.GetCoinDetailFunc(ctx, coinID)
	}

	m.mu.Lock()
	_, ok := m.Prices[coinID]
	m.mu.Unlock()
	if !ok {
		return nil, &apperrors.NotFoundError{CoinID: coinID}
	}
	return CreateTestCoinDetail(coinID), nil
}

func (m *MockMarketDataProvider) GetSimplePrices(ctx context.Context, coinIDs, currencies []string) (map[string]map[string]float64, error) {
	m.record("GetSimplePrices", coinIDs, currencies)
	if m.GetSimplePricesFunc != nil {
		return m.GetSimplePricesFunc(ctx, coinIDs, currencies)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make(map[string]map[string]float64)
	for _, id := range coinIDs {
		byCurrency, ok := m.Prices[id]
		if !ok {
			continue
		}
		inner := make(map[string]float64)
		for _, cur := range currencies {
			if p, ok := byCurrency[cur]; ok {
				inner[cur] = p
			}
		}
		result[id] = inner
	}
	return result, nil
}

func (m *MockMarketDataProvider) GetCoinsByIDs(ctx context.Context, coinIDs []string, currency string) ([]entities.MarketRow, error) {
	m.record("GetCoinsByIDs", coinIDs, currency)
	if m.GetCoinsByIDsFunc != nil {
		return m.GetCoinsByIDsFunc(ctx, coinIDs, currency)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := make([]entities.MarketRow, 0, len(coinIDs))
	for _, id := range coinIDs {
		if byCurrency, ok := m.Prices[id]; ok {
			rows = append(rows, entities.MarketRow{ID: id, CurrentPrice: byCurrency[currency]})
		}
	}
	return rows, nil
}

func (m *MockMarketDataProvider) GetHistory(ctx context.Context, coinID, currency string, days int) ([]entities.HistoryPoint, error) {
	m.record("GetHistory", coinID, currency, days)
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, coinID, currency, days)
	}
	return []entities.HistoryPoint{}, nil
}

func (m *MockMarketDataProvider) Search(ctx context.Context, query string) ([]entities.CoinMatch, error) {
	m.record("Search", query)
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return []entities.CoinMatch{}, nil
}

func (m *MockMarketDataProvider) GetTrending(ctx context.Context) ([]entities.CoinMatch, error) {
	m.record("GetTrending")
	if m.GetTrendingFunc != nil {
		return m.GetTrendingFunc(ctx)
	}
	return []entities.CoinMatch{}, nil
}

func (m *MockMarketDataProvider) GetGlobalStats(ctx context.Context) (*entities.GlobalStats, error) {
	m.record("GetGlobalStats")
	if m.GetGlobalStatsFunc != nil {
		return m.GetGlobalStatsFunc(ctx)
	}
	return &entities.GlobalStats{}, nil
}

func (m *MockMarketDataProvider) GetCoinByContract(ctx context.Context, platform, address string) (*entities.CoinDetail, error) {
	m.record("GetCoinByContract", platform, address)
	if m.GetCoinByContractFunc != nil {
		return m.GetCoinByContractFunc(ctx, platform, address)
	}
	return nil, &apperrors.NotFoundError{CoinID: platform + ":" + address}
}

// MockHoldingRepository is a mock implementation of HoldingRepository
type MockHoldingRepository struct {
	mu       sync.RWMutex
	holdings map[string]entities.Holding

	// Function hooks
	FindByUserFunc         func(ctx context.Context, userID string) ([]entities.Holding, error)
	GetByIDFunc            func(ctx context.Context, userID, holdingID string) (*entities.Holding, error)
	CreateFunc             func(ctx context.Context, holding *entities.Holding) error
	UpdateFunc             func(ctx context.Context, holding *entities.Holding) error
	DeleteFunc             func(ctx context.Context, userID, holdingID string) error
	UpdateCurrentPriceFunc func(ctx context.Context, holdingID string, price float64) error
	ListUserIDsFunc        func(ctx context.Context) ([]string, error)

	Calls []MockCall
}

func NewMockHoldingRepository() *MockHoldingRepository {
	return &MockHoldingRepository{
		holdings: make(map[string]entities.Holding),
		Calls:    make([]MockCall, 0),
	}
}

func (m *MockHoldingRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

func (m *MockHoldingRepository) FindByUser(ctx context.Context, userID string) ([]entities.Holding, error) {
	m.record("FindByUser", userID)
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Holding, 0)
	for _, h := range m.holdings {
		if h.UserID == userID {
			result = append(result, h)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PurchaseDate.Equal(result[j].PurchaseDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].PurchaseDate.Before(result[j].PurchaseDate)
	})
	return result, nil
}

func (m *MockHoldingRepository) GetByID(ctx context.Context, userID, holdingID string) (*entities.Holding, error) {
	m.record("GetByID", userID, holdingID)
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, userID, holdingID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.holdings[holdingID]
	if !ok || h.UserID != userID {
		return nil, apperrors.ErrHoldingNotFound
	}
	return &h, nil
}

func (m *MockHoldingRepository) Create(ctx context.Context, holding *entities.Holding) error {
	m.record("Create", holding)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, holding)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings[holding.ID] = *holding
	return nil
}

func (m *MockHoldingRepository) Update(ctx context.Context, holding *entities.Holding) error {
	m.record("Update", holding)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, holding)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.holdings[holding.ID]
	if !ok || existing.UserID != holding.UserID {
		return apperrors.ErrHoldingNotFound
	}
	m.holdings[holding.ID] = *holding
	return nil
}

func (m *MockHoldingRepository) Delete(ctx context.Context, userID, holdingID string) error {
	m.record("Delete", userID, holdingID)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, holdingID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holdings[holdingID]
	if !ok || h.UserID != userID {
		return apperrors.ErrHoldingNotFound
	}
	delete(m.holdings, holdingID)
	return nil
}

func (m *MockHoldingRepository) UpdateCurrentPrice(ctx context.Context, holdingID string, price float64) error {
	m.record("UpdateCurrentPrice", holdingID, price)
	if m.UpdateCurrentPriceFunc != nil {
		return m.UpdateCurrentPriceFunc(ctx, holdingID, price)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holdings[holdingID]
	if !ok {
		return apperrors.ErrHoldingNotFound
	}
	h.CurrentPrice = price
	m.holdings[holdingID] = h
	return nil
}

func (m *MockHoldingRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	m.record("ListUserIDs")
	if m.ListUserIDsFunc != nil {
		return m.ListUserIDsFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	users := lo.Uniq(lo.MapToSlice(m.holdings, func(_ string, h entities.Holding) string {
		return h.UserID
	}))
	sort.Strings(users)
	return users, nil
}

// AddHoldings adds holdings to the mock store
func (m *MockHoldingRepository) AddHoldings(holdings ...entities.Holding) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range holdings {
		m.holdings[h.ID] = h
	}
}

// Holding returns the stored holding with the given ID
func (m *MockHoldingRepository) Holding(id string) (entities.Holding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.holdings[id]
	return h, ok
}

// Reset clears all stored data and calls
func (m *MockHoldingRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdings = make(map[string]entities.Holding)
	m.Calls = make([]MockCall, 0)
}

// MockWatchlistRepository is a mock implementation of WatchlistRepository
type MockWatchlistRepository struct {
	mu    sync.RWMutex
	items []entities.WatchlistItem

	// Function hooks
	FindByUserFunc func(ctx context.Context, userID string) ([]entities.WatchlistItem, error)
	AddFunc        func(ctx context.Context, item *entities.WatchlistItem) error
	RemoveFunc     func(ctx context.Context, userID, coinID string) error
	ExistsFunc     func(ctx context.Context, userID, coinID string) (bool, error)

	Calls []MockCall
}

func NewMockWatchlistRepository() *MockWatchlistRepository {
	return &MockWatchlistRepository{
		items: make([]entities.WatchlistItem, 0),
		Calls: make([]MockCall, 0),
	}
}

func (m *MockWatchlistRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

func (m *MockWatchlistRepository) FindByUser(ctx context.Context, userID string) ([]entities.WatchlistItem, error) {
	m.record("FindByUser", userID)
	if m.FindByUserFunc != nil {
		return m.FindByUserFunc(ctx, userID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.WatchlistItem, 0)
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].UserID == userID {
			result = append(result, m.items[i])
		}
	}
	return result, nil
}

func (m *MockWatchlistRepository) Add(ctx context.Context, item *entities.WatchlistItem) error {
	m.record("Add", item)
	if m.AddFunc != nil {
		return m.AddFunc(ctx, item)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.UserID == item.UserID && existing.CoinID == item.CoinID {
			return apperrors.ErrDuplicateEntry
		}
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *MockWatchlistRepository) Remove(ctx context.Context, userID, coinID string) error {
	m.record("Remove", userID, coinID)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, coinID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.items {
		if existing.UserID == userID && existing.CoinID == coinID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrWatchlistItemNotFound
}

func (m *MockWatchlistRepository) Exists(ctx context.Context, userID, coinID string) (bool, error) {
	m.record("Exists", userID, coinID)
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, userID, coinID)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, existing := range m.items {
		if existing.UserID == userID && existing.CoinID == coinID {
			return true, nil
		}
	}
	return false, nil
}

// MockStore is a cache.Store whose operations can be made to fail
type MockStore struct {
	GetFunc   func(ctx context.Context, key string, dest interface{}) error
	SetFunc   func(ctx context.Context, key string, value interface{}) error
	ClearFunc func(ctx context.Context) error
	StatsFunc func(ctx context.Context) (cache.Stats, error)
}

func (m *MockStore) Get(ctx context.Context, key string, dest interface{}) error {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key, dest)
	}
	return cache.ErrCacheMiss
}

func (m *MockStore) Set(ctx context.Context, key string, value interface{}) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	return nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx)
	}
	return nil
}

func (m *MockStore) Stats(ctx context.Context) (cache.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return cache.Stats{Backend: "mock", Keys: []string{}}, nil
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})
	m.mu.Unlock()

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
