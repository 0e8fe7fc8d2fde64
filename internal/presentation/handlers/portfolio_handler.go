package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/infrastructure/export"
)

// PortfolioHandler handles HTTP requests for the caller's portfolio valuation
type PortfolioHandler struct {
	service *services.PortfolioService
	logger  *zap.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(service *services.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the portfolio routes on a chi router
func (h *PortfolioHandler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Get("/", h.GetPortfolio)
		r.Get("/analytics", h.GetAnalytics)
		r.Get("/export.xlsx", h.ExportXLSX)
	})
}

// GetPortfolio handles GET /api/v1/portfolio
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	response, err := h.service.GetPortfolio(r.Context(), userID(r), currency)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get portfolio")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// GetAnalytics handles GET /api/v1/portfolio/analytics
func (h *PortfolioHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	performers, ok := intParam(r, "performers", services.DefaultPerformerCount)
	if !ok || performers < 1 {
		respondError(w, http.StatusBadRequest, "performers must be a positive integer")
		return
	}

	response, err := h.service.GetAnalytics(r.Context(), userID(r), currency, performers)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get portfolio analytics")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// ExportXLSX handles GET /api/v1/portfolio/export.xlsx
func (h *PortfolioHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	snapshot, err := h.service.GetSnapshot(r.Context(), userID(r), currency)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to export portfolio")
		return
	}

	// Render fully before writing headers so a failure can still become a JSON error
	var buf bytes.Buffer
	if err := export.WritePortfolioXLSX(&buf, snapshot); err != nil {
		h.logger.Error("Failed to render portfolio workbook", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to export portfolio")
		return
	}

	filename := fmt.Sprintf("portfolio-%s-%s.xlsx", currency, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
