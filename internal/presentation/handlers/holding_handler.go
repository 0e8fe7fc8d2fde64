package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/application/services"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// HoldingHandler handles HTTP requests for holdings CRUD and recalculation
type HoldingHandler struct {
	holdings  *services.HoldingService
	portfolio *services.PortfolioService
	logger    *zap.Logger
}

// NewHoldingHandler creates a new holding handler
func NewHoldingHandler(holdings *services.HoldingService, portfolio *services.PortfolioService, logger *zap.Logger) *HoldingHandler {
	return &HoldingHandler{
		holdings:  holdings,
		portfolio: portfolio,
		logger:    logger,
	}
}

// RegisterRoutes registers the holding routes on a chi router
func (h *HoldingHandler) RegisterRoutes(r chi.Router) {
	r.Route("/holdings", func(r chi.Router) {
		r.Post("/", h.CreateHolding)
		r.Post("/recalculate", h.Recalculate)
		r.Get("/{holdingId}", h.GetHolding)
		r.Put("/{holdingId}", h.UpdateHolding)
		r.Delete("/{holdingId}", h.DeleteHolding)
	})
}

// GetHolding handles GET /api/v1/holdings/{holdingId}
func (h *HoldingHandler) GetHolding(w http.ResponseWriter, r *http.Request) {
	holdingID, ok := holdingIDParam(w, r)
	if !ok {
		return
	}

	response, err := h.holdings.GetHolding(r.Context(), userID(r), holdingID)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get holding")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// CreateHolding handles POST /api/v1/holdings
func (h *HoldingHandler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var input entities.HoldingInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.holdings.CreateHolding(r.Context(), userID(r), input)
	if err != nil {
		respondVerifyError(w, h.logger, err, "Failed to create holding")
		return
	}

	respondJSON(w, http.StatusCreated, response)
}

// UpdateHolding handles PUT /api/v1/holdings/{holdingId}
func (h *HoldingHandler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	holdingID, ok := holdingIDParam(w, r)
	if !ok {
		return
	}

	var input entities.HoldingInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.holdings.UpdateHolding(r.Context(), userID(r), holdingID, input)
	if err != nil {
		respondVerifyError(w, h.logger, err, "Failed to update holding")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

// DeleteHolding handles DELETE /api/v1/holdings/{holdingId}
func (h *HoldingHandler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	holdingID, ok := holdingIDParam(w, r)
	if !ok {
		return
	}

	if err := h.holdings.DeleteHolding(r.Context(), userID(r), holdingID); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete holding")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Recalculate handles POST /api/v1/holdings/recalculate
func (h *HoldingHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	currency, ok := currencyParam(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "Unsupported currency")
		return
	}

	response, err := h.portfolio.RecalculateHoldings(r.Context(), userID(r), currency)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to recalculate holdings")
		return
	}

	respondJSON(w, http.StatusOK, response)
}

func holdingIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	holdingID := chi.URLParam(r, "holdingId")
	if _, err := uuid.Parse(holdingID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid holding ID format")
		return "", false
	}
	return holdingID, true
}
