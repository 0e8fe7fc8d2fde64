package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
)

// WatchlistHandler handles HTTP requests for the caller's watchlist
type WatchlistHandler struct {
	service *services.WatchlistService
	logger  *zap.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(service *services.WatchlistService, logger *zap.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the watchlist routes on a chi router
func (h *WatchlistHandler) RegisterRoutes(r chi.Router) {
	r.Route("/watchlist", func(r chi.Router) {
		r.Get("/", h.GetWatchlist)
		r.Post("/", h.AddCoin)
		r.Delete("/{coinId}", h.RemoveCoin)
	})
}

type addWatchlistRequest struct {
	CoinID string `json:"coin_id"`
}

// GetWatchlist handles GET /api/v1/watchlist
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	response, err := h.service.GetWatchlist(r.Context(), userID(r), currency)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get watchlist")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// AddCoin handles POST /api/v1/watchlist
func (h *WatchlistHandler) AddCoin(w http.ResponseWriter, r *http.Request) {
	var req addWatchlistRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.service.AddToWatchlist(r.Context(), userID(r), req.CoinID)
	if err != nil {
		respondVerifyError(w, h.logger, err, "Failed to add coin to watchlist")
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// RemoveCoin handles DELETE /api/v1/watchlist/{coinId}
func (h *WatchlistHandler) RemoveCoin(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveFromWatchlist(r.Context(), userID(r), chi.URLParam(r, "coinId")); err != nil {
		respondServiceError(w, h.logger, err, "Failed to remove coin from watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
