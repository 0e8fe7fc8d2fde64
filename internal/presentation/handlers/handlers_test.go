package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/config"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/cache"
	"github.com/bimakw/coin-portfolio/internal/presentation/middleware"
	"github.com/bimakw/coin-portfolio/internal/testutil"
)

// testEnv wires every handler onto one router over in-memory mocks
type testEnv struct {
	router    chi.Router
	provider  *testutil.MockMarketDataProvider
	holdings  *testutil.MockHoldingRepository
	watchlist *testutil.MockWatchlistRepository
	cache     *cache.MemoCache
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	env := &testEnv{
		provider:  testutil.NewMockMarketDataProvider(),
		holdings:  testutil.NewMockHoldingRepository(),
		watchlist: testutil.NewMockWatchlistRepository(),
		cache:     cache.NewMemoCache(time.Minute),
	}

	prices := services.NewPriceService(env.provider, env.cache, "usd", logger)
	portfolio := services.NewPortfolioService(env.holdings, prices, config.CacheConfig{PriceFallback: config.PriceFallbackZero}, logger)
	holdingSvc := services.NewHoldingService(env.holdings, prices, logger)
	watchlistSvc := services.NewWatchlistService(env.watchlist, prices, logger)

	r := chi.NewRouter()
	NewMarketHandler(prices, logger).RegisterRoutes(r)
	NewAdminHandler(prices, logger).RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(asUser(testutil.AliceUserID, ""))
		NewPortfolioHandler(portfolio, logger).RegisterRoutes(r)
		NewHoldingHandler(holdingSvc, portfolio, logger).RegisterRoutes(r)
		NewWatchlistHandler(watchlistSvc, logger).RegisterRoutes(r)
	})
	env.router = r
	return env
}

// asUser stands in for the token authenticator
func asUser(userID, currency string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := middleware.Principal{UserID: userID, PreferredCurrency: currency}
			next.ServeHTTP(w, r.WithContext(middleware.WithPrincipal(r.Context(), p)))
		})
	}
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		buf, _ := json.Marshal(b)
		reader = bytes.NewBuffer(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dest); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
