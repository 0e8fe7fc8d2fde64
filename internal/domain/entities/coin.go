package entities

import (
	"strings"
	"time"
)

// Market query bounds
const (
	DefaultPage     = 1
	DefaultPerPage  = 100
	MaxPerPage      = 250
	DefaultOrder    = "market_cap_desc"
	MinHistoryDays  = 1
	MaxHistoryDays  = 365
	MinSearchLength = 2
)

var priceChangeWindows = map[string]bool{
	"1h": true, "24h": true, "7d": true, "14d": true, "30d": true, "200d": true, "1y": true,
}

// CoinListEntry is one row of the provider's full coin catalog
type CoinListEntry struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// MarketRow is one coin on a market page
type MarketRow struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	MarketCap                float64  `json:"market_cap"`
	MarketCapRank            int      `json:"market_cap_rank"`
	TotalVolume              float64  `json:"total_volume"`
	High24h                  float64  `json:"high_24h"`
	Low24h                   float64  `json:"low_24h"`
	PriceChange24h           float64  `json:"price_change_24h"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	CirculatingSupply        float64  `json:"circulating_supply"`
	TotalSupply              *float64 `json:"total_supply"`
	MaxSupply                *float64 `json:"max_supply"`
	ATH                      float64  `json:"ath"`
	ATL                      float64  `json:"atl"`
	LastUpdated              string   `json:"last_updated"`

	PriceChangePercentage1hInCurrency  *float64 `json:"price_change_percentage_1h_in_currency,omitempty"`
	PriceChangePercentage24hInCurrency *float64 `json:"price_change_percentage_24h_in_currency,omitempty"`
	PriceChangePercentage7dInCurrency  *float64 `json:"price_change_percentage_7d_in_currency,omitempty"`
	PriceChangePercentage30dInCurrency *float64 `json:"price_change_percentage_30d_in_currency,omitempty"`
}

// MarketPageParams selects a single page of market rows
type MarketPageParams struct {
	Currency           string
	Page               int
	PerPage            int
	Order              string
	PriceChangeWindows []string // e.g. "1h", "24h", "7d"
}

// Normalize applies defaults and clamps paging. Unknown change windows are dropped.
func (p MarketPageParams) Normalize(defaultCurrency string) MarketPageParams {
	if strings.TrimSpace(p.Currency) == "" {
		p.Currency = defaultCurrency
	}
	p.Currency = NormalizeCurrency(p.Currency)
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	p.Order = strings.ToLower(strings.TrimSpace(p.Order))
	if p.Order == "" {
		p.Order = DefaultOrder
	}

	windows := make([]string, 0, len(p.PriceChangeWindows))
	for _, w := range NormalizeCoinIDs(p.PriceChangeWindows) {
		if priceChangeWindows[w] {
			windows = append(windows, w)
		}
	}
	p.PriceChangeWindows = windows
	return p
}

// ClampHistoryDays bounds a history window to [MinHistoryDays, MaxHistoryDays]
func ClampHistoryDays(days int) int {
	if days < MinHistoryDays {
		return MinHistoryDays
	}
	if days > MaxHistoryDays {
		return MaxHistoryDays
	}
	return days
}

// CoinDetail is the provider's description of a single coin
type CoinDetail struct {
	ID                string             `json:"id"`
	Symbol            string             `json:"symbol"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Image             string             `json:"image"`
	Homepage          string             `json:"homepage"`
	MarketCapRank     int                `json:"market_cap_rank"`
	CurrentPrice      map[string]float64 `json:"current_price"`
	MarketCap         map[string]float64 `json:"market_cap"`
	TotalVolume       map[string]float64 `json:"total_volume"`
	PriceChange24h    float64            `json:"price_change_percentage_24h"`
	PriceChange7d     float64            `json:"price_change_percentage_7d"`
	PriceChange30d    float64            `json:"price_change_percentage_30d"`
	CirculatingSupply float64            `json:"circulating_supply"`
	LastUpdated       string             `json:"last_updated"`
}

// HistoryPoint is one sample of a coin's price history
type HistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	MarketCap float64   `json:"market_cap"`
	Volume    float64   `json:"volume"`
}

// CoinMatch is a coin returned from search or trending
type CoinMatch struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	MarketCapRank int     `json:"market_cap_rank"`
	Thumb         string  `json:"thumb"`
	Large         string  `json:"large,omitempty"`
	Score         int     `json:"score,omitempty"`
	PriceBTC      float64 `json:"price_btc,omitempty"`
}

// GlobalStats holds market-wide aggregates
type GlobalStats struct {
	ActiveCryptocurrencies       int                `json:"active_cryptocurrencies"`
	Markets                      int                `json:"markets"`
	TotalMarketCap               map[string]float64 `json:"total_market_cap"`
	TotalVolume                  map[string]float64 `json:"total_volume"`
	MarketCapPercentage          map[string]float64 `json:"market_cap_percentage"`
	MarketCapChangePercentage24h float64            `json:"market_cap_change_percentage_24h_usd"`
	UpdatedAt                    int64              `json:"updated_at"`
}
