package valuation

import (
	"math"
	"testing"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func holding(coinID string, amount, buyPrice float64) entities.Holding {
	return entities.Holding{ID: coinID + "-h", CoinID: coinID, Amount: amount, BuyPrice: buyPrice}
}

func withPct(coinID string, pct float64) entities.AugmentedHolding {
	return entities.AugmentedHolding{Holding: holding(coinID, 1, 1), ProfitLossPercentage: pct}
}

func TestValueHolding(t *testing.T) {
	tests := []struct {
		name      string
		holding   entities.Holding
		price     float64
		wantInv   float64
		wantValue float64
		wantPL    float64
		wantPct   float64
	}{
		{
			name:      "gain",
			holding:   holding("btc", 2, 100),
			price:     150,
			wantInv:   200,
			wantValue: 300,
			wantPL:    100,
			wantPct:   50,
		},
		{
			name:      "price unavailable reports full loss",
			holding:   holding("eth", 1, 50),
			price:     0,
			wantInv:   50,
			wantValue: 0,
			wantPL:    -50,
			wantPct:   -100,
		},
		{
			name:      "zero investment has zero percentage",
			holding:   holding("airdrop", 10, 0),
			price:     3,
			wantInv:   0,
			wantValue: 30,
			wantPL:    30,
			wantPct:   0,
		},
		{
			name:      "NaN price coerced to zero",
			holding:   holding("sol", 4, 25),
			price:     math.NaN(),
			wantInv:   100,
			wantValue: 0,
			wantPL:    -100,
			wantPct:   -100,
		},
		{
			name:      "infinite buy price coerced to zero",
			holding:   holding("doge", 1, math.Inf(1)),
			price:     2,
			wantInv:   0,
			wantValue: 2,
			wantPL:    2,
			wantPct:   0,
		},
		{
			name:      "negative price treated as unavailable",
			holding:   holding("ada", 1, 10),
			price:     -5,
			wantInv:   10,
			wantValue: 0,
			wantPL:    -10,
			wantPct:   -100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValueHolding(tt.holding, tt.price)

			if !almostEqual(got.Investment, tt.wantInv) {
				t.Errorf("Investment = %v, want %v", got.Investment, tt.wantInv)
			}
			if !almostEqual(got.CurrentValue, tt.wantValue) {
				t.Errorf("CurrentValue = %v, want %v", got.CurrentValue, tt.wantValue)
			}
			if !almostEqual(got.ProfitLoss, tt.wantPL) {
				t.Errorf("ProfitLoss = %v, want %v", got.ProfitLoss, tt.wantPL)
			}
			if !almostEqual(got.ProfitLossPercentage, tt.wantPct) {
				t.Errorf("ProfitLossPercentage = %v, want %v", got.ProfitLossPercentage, tt.wantPct)
			}
			if !almostEqual(got.ProfitLoss, got.CurrentValue-got.Investment) {
				t.Errorf("ProfitLoss %v != CurrentValue - Investment %v", got.ProfitLoss, got.CurrentValue-got.Investment)
			}
			if got.Holding.ID != tt.holding.ID {
				t.Error("expected the input holding to be embedded unchanged")
			}
		})
	}
}

func TestValueHolding_NoNaNOutput(t *testing.T) {
	inputs := []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -1}
	for _, amount := range inputs {
		for _, price := range inputs {
			got := ValueHolding(holding("x", amount, price), price)
			for _, v := range []float64{got.Investment, got.CurrentValue, got.ProfitLoss, got.ProfitLossPercentage, got.CurrentPrice} {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("non-finite output %+v for amount=%v price=%v", got, amount, price)
				}
			}
		}
	}
}

func TestAggregate(t *testing.T) {
	t.Run("sums holdings", func(t *testing.T) {
		totals := Aggregate([]entities.AugmentedHolding{
			ValueHolding(holding("btc", 2, 100), 150),
			ValueHolding(holding("eth", 1, 50), 0),
		})

		if !almostEqual(totals.TotalInvestment, 250) {
			t.Errorf("TotalInvestment = %v, want 250", totals.TotalInvestment)
		}
		if !almostEqual(totals.TotalCurrentValue, 300) {
			t.Errorf("TotalCurrentValue = %v, want 300", totals.TotalCurrentValue)
		}
		if !almostEqual(totals.TotalProfitLoss, 50) {
			t.Errorf("TotalProfitLoss = %v, want 50", totals.TotalProfitLoss)
		}
		if !almostEqual(totals.TotalProfitLossPercentage, 20) {
			t.Errorf("TotalProfitLossPercentage = %v, want 20", totals.TotalProfitLossPercentage)
		}
	})

	t.Run("empty portfolio", func(t *testing.T) {
		totals := Aggregate(nil)
		if totals != (entities.PortfolioTotals{}) {
			t.Errorf("expected zero totals, got %+v", totals)
		}
	})

	t.Run("zero investment guard", func(t *testing.T) {
		totals := Aggregate([]entities.AugmentedHolding{ValueHolding(holding("airdrop", 5, 0), 2)})
		if totals.TotalProfitLossPercentage != 0 {
			t.Errorf("expected 0%% with zero investment, got %v", totals.TotalProfitLossPercentage)
		}
	})
}

func TestRankPerformers(t *testing.T) {
	holdings := []entities.AugmentedHolding{
		withPct("a", 10),
		withPct("b", -5),
		withPct("c", 30),
		withPct("d", 0),
	}

	got := RankPerformers(holdings, 2)

	assertOrder(t, "top", got.Top, []string{"c", "a"})
	assertOrder(t, "worst", got.Worst, []string{"b", "d"})

	if holdings[0].CoinID != "a" || holdings[2].CoinID != "c" {
		t.Error("expected input slice to be left untouched")
	}
}

func TestRankPerformers_StableTies(t *testing.T) {
	holdings := []entities.AugmentedHolding{
		withPct("first", 5),
		withPct("second", 5),
		withPct("third", 5),
	}

	got := RankPerformers(holdings, 0)

	assertOrder(t, "top", got.Top, []string{"first", "second", "third"})
	assertOrder(t, "worst", got.Worst, []string{"first", "second", "third"})
}

func TestRankPerformers_NLargerThanInput(t *testing.T) {
	got := RankPerformers([]entities.AugmentedHolding{withPct("a", 1)}, 10)
	if len(got.Top) != 1 || len(got.Worst) != 1 {
		t.Errorf("expected one holding in each list, got %+v", got)
	}

	empty := RankPerformers(nil, 3)
	if len(empty.Top) != 0 || len(empty.Worst) != 0 {
		t.Errorf("expected empty lists, got %+v", empty)
	}
}

func assertOrder(t *testing.T, label string, got []entities.AugmentedHolding, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d holdings, want %d", label, len(got), len(want))
	}
	for i := range want {
		if got[i].CoinID != want[i] {
			t.Errorf("%s[%d] = %s, want %s", label, i, got[i].CoinID, want[i])
		}
	}
}

func TestAllocationBreakdown(t *testing.T) {
	holdings := []entities.AugmentedHolding{
		ValueHolding(holding("btc", 1, 100), 300),
		ValueHolding(holding("eth", 2, 50), 50),
		ValueHolding(holding("dead", 3, 100), 0),
	}

	t.Run("by value", func(t *testing.T) {
		entries := AllocationBreakdown(holdings, entities.AllocationByValue)
		want := []float64{75, 25, 0}
		assertPercentages(t, entries, want)
		assertSum(t, entries, 100)
		if entries[1].Amount != 2 {
			t.Errorf("expected amount to be carried, got %v", entries[1].Amount)
		}
	})

	t.Run("by investment", func(t *testing.T) {
		entries := AllocationBreakdown(holdings, entities.AllocationByInvestment)
		want := []float64{20, 20, 60}
		assertPercentages(t, entries, want)
		assertSum(t, entries, 100)
	})

	t.Run("zero total", func(t *testing.T) {
		worthless := []entities.AugmentedHolding{
			ValueHolding(holding("a", 1, 10), 0),
			ValueHolding(holding("b", 1, 10), 0),
		}
		entries := AllocationBreakdown(worthless, entities.AllocationByValue)
		assertPercentages(t, entries, []float64{0, 0})
		assertSum(t, entries, 0)
	})
}

func assertPercentages(t *testing.T, entries []entities.AllocationEntry, want []float64) {
	t.Helper()
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d", len(entries), len(want))
	}
	for i := range want {
		if math.IsNaN(entries[i].Percentage) {
			t.Fatalf("entry %d has NaN percentage", i)
		}
		if !almostEqual(entries[i].Percentage, want[i]) {
			t.Errorf("entry %d (%s) = %v%%, want %v%%", i, entries[i].CoinID, entries[i].Percentage, want[i])
		}
	}
}

func assertSum(t *testing.T, entries []entities.AllocationEntry, want float64) {
	t.Helper()
	var sum float64
	for _, e := range entries {
		sum += e.Percentage
	}
	if math.Abs(sum-want) > 1e-6 {
		t.Errorf("percentages sum to %v, want %v", sum, want)
	}
}

func TestSnapshot(t *testing.T) {
	holdings := []entities.Holding{
		holding("bitcoin", 2, 100),
		holding("ethereum", 1, 50),
	}

	t.Run("missing quote valued at zero", func(t *testing.T) {
		snap := Snapshot(holdings, map[string]float64{"bitcoin": 150}, "usd")

		if snap.Currency != "usd" || len(snap.Holdings) != 2 {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
		if !almostEqual(snap.TotalCurrentValue, 300) || !almostEqual(snap.TotalInvestment, 250) {
			t.Errorf("unexpected totals %+v", snap.PortfolioTotals)
		}
		if len(snap.MissingPrices) != 1 || snap.MissingPrices[0] != "ethereum" {
			t.Errorf("expected ethereum to be reported missing, got %v", snap.MissingPrices)
		}
	})

	t.Run("fallback price", func(t *testing.T) {
		snap := Snapshot(holdings, map[string]float64{"bitcoin": 150}, "usd",
			WithFallbackPrice(func(h entities.Holding) float64 { return 40 }))

		if !almostEqual(snap.Holdings[1].CurrentValue, 40) {
			t.Errorf("expected fallback value 40, got %v", snap.Holdings[1].CurrentValue)
		}
		if len(snap.MissingPrices) != 1 {
			t.Errorf("expected the coin to stay reported as missing, got %v", snap.MissingPrices)
		}
	})

	t.Run("no holdings", func(t *testing.T) {
		snap := Snapshot(nil, nil, "eur")
		if len(snap.Holdings) != 0 || snap.TotalCurrentValue != 0 || len(snap.MissingPrices) != 0 {
			t.Errorf("expected empty snapshot, got %+v", snap)
		}
	})
}
