package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
)

// AdminHandler exposes cache introspection for development
type AdminHandler struct {
	prices *services.PriceService
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(prices *services.PriceService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		prices: prices,
		logger: logger,
	}
}

// RegisterRoutes registers the admin routes on a chi router
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/admin/cache", func(r chi.Router) {
		r.Get("/stats", h.CacheStats)
		r.Post("/clear", h.ClearCache)
	})
}

// CacheStats handles GET /api/v1/admin/cache/stats
func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.prices.CacheStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to read cache stats", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to read cache stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": stats})
}

// ClearCache handles POST /api/v1/admin/cache/clear
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.prices.ClearCache(r.Context()); err != nil {
		h.logger.Error("Failed to clear cache", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	h.logger.Info("Cache cleared", zap.String("remote_addr", r.RemoteAddr))
	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
