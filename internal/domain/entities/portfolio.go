package entities

// AugmentedHolding is a holding enriched with derived valuation fields.
// The derived fields are recomputed on every valuation pass and are never authoritative.
type AugmentedHolding struct {
	Holding
	CurrentPrice         float64 `json:"current_price"`
	Investment           float64 `json:"investment"`
	CurrentValue         float64 `json:"current_value"`
	ProfitLoss           float64 `json:"profit_loss"`
	ProfitLossPercentage float64 `json:"profit_loss_percentage"`
}

// PortfolioTotals holds aggregate valuation figures
type PortfolioTotals struct {
	TotalInvestment           float64 `json:"total_investment"`
	TotalCurrentValue         float64 `json:"total_current_value"`
	TotalProfitLoss           float64 `json:"total_profit_loss"`
	TotalProfitLossPercentage float64 `json:"total_profit_loss_percentage"`
}

// PortfolioSnapshot is a freshly computed valuation of a user's holdings
type PortfolioSnapshot struct {
	PortfolioTotals
	Currency      string             `json:"currency"`
	Holdings      []AugmentedHolding `json:"holdings"`
	MissingPrices []string           `json:"missing_prices,omitempty"` // Coins valued without a live quote
}

// Performers holds the best and worst holdings by profit/loss percentage
type Performers struct {
	Top   []AugmentedHolding `json:"top"`
	Worst []AugmentedHolding `json:"worst"`
}

// AllocationBasis selects the denominator of an allocation breakdown
type AllocationBasis string

const (
	AllocationByValue      AllocationBasis = "value"
	AllocationByInvestment AllocationBasis = "investment"
)

// AllocationEntry is one holding's share of the portfolio
type AllocationEntry struct {
	CoinID     string  `json:"coin_id"`
	Amount     float64 `json:"amount"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// PortfolioAnalytics bundles the analytics view of a portfolio
type PortfolioAnalytics struct {
	PortfolioTotals
	Currency             string            `json:"currency"`
	HoldingCount         int               `json:"holding_count"`
	Performers           Performers        `json:"performers"`
	AllocationByValue    []AllocationEntry `json:"allocation_by_value"`
	AllocationByInvested []AllocationEntry `json:"allocation_by_investment"`
}

// BatchSummary reports the outcome of a best-effort fan-out of independent writes
type BatchSummary struct {
	Total     int      `json:"total"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	Skipped   int      `json:"skipped"` // No live quote, persisted price left untouched
	Errors    []string `json:"errors,omitempty"`
}
