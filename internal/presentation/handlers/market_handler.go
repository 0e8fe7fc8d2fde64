package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// MarketHandler exposes cached market data reads
type MarketHandler struct {
	prices *services.PriceService
	logger *zap.Logger
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(prices *services.PriceService, logger *zap.Logger) *MarketHandler {
	return &MarketHandler{
		prices: prices,
		logger: logger,
	}
}

// DataResponse wraps a market payload for API response
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// PricesResponse carries spot prices keyed by coin ID
type PricesResponse struct {
	Currency string             `json:"currency"`
	Data     map[string]float64 `json:"data"`
}

// RegisterRoutes registers the market routes on a chi router
func (h *MarketHandler) RegisterRoutes(r chi.Router) {
	r.Route("/market", func(r chi.Router) {
		r.Get("/coins", h.GetMarketPage)
		r.Get("/coins/list", h.ListCoins)
		r.Get("/coins/{coinId}", h.GetCoinDetail)
		r.Get("/coins/{coinId}/history", h.GetHistory)
		r.Get("/contract/{platform}/{address}", h.GetCoinByContract)
		r.Get("/prices", h.GetPrices)
		r.Get("/search", h.Search)
		r.Get("/trending", h.GetTrending)
		r.Get("/global", h.GetGlobalStats)
	})
}

// GetMarketPage handles GET /api/v1/market/coins. With ?ids= it returns exactly those coins.
func (h *MarketHandler) GetMarketPage(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	if raw := r.URL.Query().Get("ids"); raw != "" {
		rows, err := h.prices.GetCoinsByIDs(r.Context(), splitList(raw), currency)
		if err != nil {
			respondServiceError(w, h.logger, err, "Failed to get market data")
			return
		}
		respondJSON(w, http.StatusOK, DataResponse[[]entities.MarketRow]{Data: rows})
		return
	}

	page, okPage := intParam(r, "page", entities.DefaultPage)
	perPage, okPer := intParam(r, "per_page", entities.DefaultPerPage)
	if !okPage || !okPer {
		respondError(w, http.StatusBadRequest, "page and per_page must be integers")
		return
	}

	rows, err := h.prices.GetMarketPage(r.Context(), entities.MarketPageParams{
		Currency:           currency,
		Page:               page,
		PerPage:            perPage,
		Order:              r.URL.Query().Get("order"),
		PriceChangeWindows: splitList(r.URL.Query().Get("price_change_percentage")),
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get market data")
		return
	}

	respondJSON(w, http.StatusOK, DataResponse[[]entities.MarketRow]{Data: rows})
}

// ListCoins handles GET /api/v1/market/coins/list
func (h *MarketHandler) ListCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := h.prices.ListCoins(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list coins")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[[]entities.CoinListEntry]{Data: coins})
}

// GetCoinDetail handles GET /api/v1/market/coins/{coinId}
func (h *MarketHandler) GetCoinDetail(w http.ResponseWriter, r *http.Request) {
	coin, err := h.prices.GetCoinDetail(r.Context(), chi.URLParam(r, "coinId"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get coin")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[*entities.CoinDetail]{Data: coin})
}

// GetHistory handles GET /api/v1/market/coins/{coinId}/history
func (h *MarketHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	days, ok := intParam(r, "days", 7)
	if !ok {
		respondError(w, http.StatusBadRequest, "days must be an integer")
		return
	}

	points, err := h.prices.GetHistory(r.Context(), chi.URLParam(r, "coinId"), currency, days)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get price history")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[[]entities.HistoryPoint]{Data: points})
}

// GetCoinByContract handles GET /api/v1/market/contract/{platform}/{address}
func (h *MarketHandler) GetCoinByContract(w http.ResponseWriter, r *http.Request) {
	coin, err := h.prices.GetCoinByContract(r.Context(), chi.URLParam(r, "platform"), chi.URLParam(r, "address"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get coin by contract")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[*entities.CoinDetail]{Data: coin})
}

// GetPrices handles GET /api/v1/market/prices?ids=a,b. Outages degrade to cached or zero prices.
func (h *MarketHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	ids := splitList(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "ids is required")
		return
	}

	respondJSON(w, http.StatusOK, PricesResponse{
		Currency: currency,
		Data:     h.prices.GetPricesFor(r.Context(), ids, currency),
	})
}

// Search handles GET /api/v1/market/search?q=
func (h *MarketHandler) Search(w http.ResponseWriter, r *http.Request) {
	matches, err := h.prices.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to search coins")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[[]entities.CoinMatch]{Data: matches})
}

// GetTrending handles GET /api/v1/market/trending
func (h *MarketHandler) GetTrending(w http.ResponseWriter, r *http.Request) {
	matches, err := h.prices.GetTrending(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get trending coins")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[[]entities.CoinMatch]{Data: matches})
}

// GetGlobalStats handles GET /api/v1/market/global
func (h *MarketHandler) GetGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.prices.GetGlobalStats(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get global market stats")
		return
	}
	respondJSON(w, http.StatusOK, DataResponse[*entities.GlobalStats]{Data: stats})
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
