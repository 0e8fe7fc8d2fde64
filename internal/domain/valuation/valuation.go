// Package valuation computes holding and portfolio figures from holdings and current prices.
// Every function is pure. Numeric inputs that are NaN or infinite are treated as 0,
// so outputs never carry NaN.
package valuation

import (
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// ValueHolding augments a holding with its investment, current value and profit/loss.
// A missing or zero price reports the full investment as loss.
func ValueHolding(h entities.Holding, currentPrice float64) entities.AugmentedHolding {
	amount := toDecimal(h.Amount)
	price := toPrice(currentPrice)

	investment := amount.Mul(toDecimal(h.BuyPrice))
	currentValue := amount.Mul(price)
	profitLoss := currentValue.Sub(investment)

	return entities.AugmentedHolding{
		Holding:              h,
		CurrentPrice:         price.InexactFloat64(),
		Investment:           investment.InexactFloat64(),
		CurrentValue:         currentValue.InexactFloat64(),
		ProfitLoss:           profitLoss.InexactFloat64(),
		ProfitLossPercentage: percentOf(profitLoss, investment),
	}
}

// Aggregate sums the valuation of a set of augmented holdings
func Aggregate(holdings []entities.AugmentedHolding) entities.PortfolioTotals {
	investment := lo.Reduce(holdings, func(acc decimal.Decimal, h entities.AugmentedHolding, _ int) decimal.Decimal {
		return acc.Add(toDecimal(h.Investment))
	}, decimal.Zero)

	currentValue := lo.Reduce(holdings, func(acc decimal.Decimal, h entities.AugmentedHolding, _ int) decimal.Decimal {
		return acc.Add(toDecimal(h.CurrentValue))
	}, decimal.Zero)

	profitLoss := currentValue.Sub(investment)

	return entities.PortfolioTotals{
		TotalInvestment:           investment.InexactFloat64(),
		TotalCurrentValue:         currentValue.InexactFloat64(),
		TotalProfitLoss:           profitLoss.InexactFloat64(),
		TotalProfitLossPercentage: percentOf(profitLoss, investment),
	}
}

// RankPerformers returns the n best and n worst holdings by profit/loss percentage.
// Equal percentages keep their input order. n <= 0 returns every holding.
func RankPerformers(holdings []entities.AugmentedHolding, n int) entities.Performers {
	if n <= 0 || n > len(holdings) {
		n = len(holdings)
	}

	top := make([]entities.AugmentedHolding, len(holdings))
	copy(top, holdings)
	sort.SliceStable(top, func(i, j int) bool {
		return sanitize(top[i].ProfitLossPercentage) > sanitize(top[j].ProfitLossPercentage)
	})

	worst := make([]entities.AugmentedHolding, len(holdings))
	copy(worst, holdings)
	sort.SliceStable(worst, func(i, j int) bool {
		return sanitize(worst[i].ProfitLossPercentage) < sanitize(worst[j].ProfitLossPercentage)
	})

	return entities.Performers{
		Top:   top[:n],
		Worst: worst[:n],
	}
}

// AllocationBreakdown reports each holding's share of the portfolio total on the chosen basis.
// A zero total yields 0% for every holding.
func AllocationBreakdown(holdings []entities.AugmentedHolding, by entities.AllocationBasis) []entities.AllocationEntry {
	values := lo.Map(holdings, func(h entities.AugmentedHolding, _ int) decimal.Decimal {
		if by == entities.AllocationByInvestment {
			return toDecimal(h.Investment)
		}
		return toDecimal(h.CurrentValue)
	})
	total := decimal.Sum(decimal.Zero, values...)

	return lo.Map(holdings, func(h entities.AugmentedHolding, i int) entities.AllocationEntry {
		return entities.AllocationEntry{
			CoinID:     h.CoinID,
			Amount:     sanitize(h.Amount),
			Value:      values[i].InexactFloat64(),
			Percentage: percentOf(values[i], total),
		}
	})
}

// Option customizes Snapshot
type Option func(*snapshotOptions)

type snapshotOptions struct {
	fallback func(entities.Holding) float64
}

// WithFallbackPrice values holdings whose coin has no live quote at the price fn returns
func WithFallbackPrice(fn func(entities.Holding) float64) Option {
	return func(o *snapshotOptions) {
		o.fallback = fn
	}
}

// Snapshot values every holding against prices (coin ID -> price) and aggregates the result.
// Coins without a positive quote are listed in MissingPrices.
func Snapshot(holdings []entities.Holding, prices map[string]float64, currency string, opts ...Option) entities.PortfolioSnapshot {
	var o snapshotOptions
	for _, opt := range opts {
		opt(&o)
	}

	var missing []string
	augmented := lo.Map(holdings, func(h entities.Holding, _ int) entities.AugmentedHolding {
		price := toPrice(prices[h.CoinID]).InexactFloat64()
		if price == 0 {
			missing = append(missing, h.CoinID)
			if o.fallback != nil {
				price = o.fallback(h)
			}
		}
		return ValueHolding(h, price)
	})

	return entities.PortfolioSnapshot{
		PortfolioTotals: Aggregate(augmented),
		Currency:        currency,
		Holdings:        augmented,
		MissingPrices:   lo.Uniq(missing),
	}
}

// percentOf returns part/total*100, or 0 when total is not positive
func percentOf(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Div(total).Mul(hundred).InexactFloat64()
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// toDecimal converts after sanitizing; decimal.NewFromFloat panics on NaN and Inf
func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(sanitize(v))
}

// toPrice treats negative quotes as unavailable
func toPrice(v float64) decimal.Decimal {
	d := toDecimal(v)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
