package entities

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// DefaultCurrency is used when a caller does not name a quote currency
const DefaultCurrency = "usd"

// NormalizeCoinIDs lower-cases, trims, de-duplicates and sorts coin IDs, dropping empty ones
func NormalizeCoinIDs(ids []string) []string {
	out := lo.Uniq(lo.Compact(lo.Map(ids, func(id string, _ int) string {
		return strings.ToLower(strings.TrimSpace(id))
	})))
	sort.Strings(out)
	return out
}

// NormalizeCurrency lower-cases a currency code, falling back to DefaultCurrency
func NormalizeCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}
