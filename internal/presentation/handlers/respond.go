package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/presentation/middleware"
)

// Currencies accepted on any route
var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"btc": true,
	"eth": true,
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a typed service error to a status code.
// Unknown errors are logged and hidden behind fallback.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var validation *apperrors.ValidationError
	var notFound *apperrors.NotFoundError

	switch {
	case errors.As(err, &validation):
		respondError(w, http.StatusBadRequest, validation.Error())
	case errors.As(err, &notFound):
		respondError(w, http.StatusNotFound, notFound.Error())
	case errors.Is(err, apperrors.ErrHoldingNotFound):
		respondError(w, http.StatusNotFound, "Holding not found")
	case errors.Is(err, apperrors.ErrWatchlistItemNotFound):
		respondError(w, http.StatusNotFound, "Coin is not on the watchlist")
	case errors.Is(err, apperrors.ErrDuplicateEntry):
		respondError(w, http.StatusConflict, "Already exists")
	case apperrors.IsUpstream(err):
		logger.Warn(fallback, zap.Error(err))
		respondError(w, http.StatusBadGateway, "Market data provider unavailable")
	default:
		logger.Error(fallback, zap.Error(err))
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

// respondVerifyError handles paths that must confirm a coin exists before writing.
// An unknown coin there is a semantic error in the request body, not a missing resource.
func respondVerifyError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var notFound *apperrors.NotFoundError
	if errors.As(err, &notFound) {
		respondError(w, http.StatusUnprocessableEntity, "Invalid coin: "+notFound.CoinID)
		return
	}
	respondServiceError(w, logger, err, fallback)
}

// currencyParam reads ?currency=, falling back to the caller's preference
func currencyParam(r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("currency")
	if strings.TrimSpace(raw) == "" {
		if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
			raw = p.PreferredCurrency
		}
	}
	currency := entities.NormalizeCurrency(raw)
	return currency, supportedCurrencies[currency]
}

// intParam parses an optional integer query parameter
func intParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// userID returns the authenticated caller; routes are mounted behind the authenticator
func userID(r *http.Request) string {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p.UserID
}

func decodeJSON(r *http.Request, dest interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}
