package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/testutil"
)

func TestWritePortfolioXLSX(t *testing.T) {
	holding := testutil.CreateTestHolding()
	snapshot := &entities.PortfolioSnapshot{
		PortfolioTotals: entities.PortfolioTotals{
			TotalInvestment:   200,
			TotalCurrentValue: 300,
			TotalProfitLoss:   100,
		},
		Currency: "usd",
		Holdings: []entities.AugmentedHolding{{
			Holding:      holding,
			CurrentPrice: 150,
			Investment:   200,
			CurrentValue: 300,
			ProfitLoss:   100,
		}},
		MissingPrices: []string{"solana"},
	}

	var buf bytes.Buffer
	if err := WritePortfolioXLSX(&buf, snapshot); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to read workbook back: %v", err)
	}
	defer f.Close()

	t.Run("holdings sheet", func(t *testing.T) {
		rows, err := f.GetRows(holdingsSheet)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected header plus 1 row, got %d", len(rows))
		}
		if rows[0][0] != "Coin" || rows[1][0] != holding.CoinName {
			t.Errorf("unexpected rows: %v", rows)
		}
		if rows[1][4] != "2024-01-15" {
			t.Errorf("expected purchase date 2024-01-15, got %s", rows[1][4])
		}
	})

	t.Run("summary sheet", func(t *testing.T) {
		currency, _ := f.GetCellValue(summarySheet, "B1")
		if currency != "usd" {
			t.Errorf("expected usd, got %s", currency)
		}
		value, _ := f.GetCellValue(summarySheet, "B3")
		if value != "300" {
			t.Errorf("expected total value 300, got %s", value)
		}
		missing, _ := f.GetCellValue(summarySheet, "B7")
		if missing != "solana" {
			t.Errorf("expected missing prices listed, got %s", missing)
		}
	})
}

func TestWritePortfolioXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := WritePortfolioXLSX(&buf, &entities.PortfolioSnapshot{Currency: "eur", Holdings: []entities.AugmentedHolding{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("expected a workbook even without holdings")
	}
}
