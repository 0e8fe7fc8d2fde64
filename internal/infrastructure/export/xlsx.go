package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

const (
	holdingsSheet = "Holdings"
	summarySheet  = "Summary"
)

var holdingHeader = []interface{}{
	"Coin", "Symbol", "Amount", "Buy Price", "Purchase Date",
	"Current Price", "Investment", "Current Value", "Profit/Loss", "Profit/Loss %", "Notes",
}

// WritePortfolioXLSX renders a snapshot as a two-sheet workbook
func WritePortfolioXLSX(w io.Writer, snapshot *entities.PortfolioSnapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", holdingsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetRow(holdingsSheet, "A1", &holdingHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(holdingHeader), 1)
	if err := f.SetCellStyle(holdingsSheet, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, h := range snapshot.Holdings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			h.CoinName, h.CoinSymbol, h.Amount, h.BuyPrice, h.PurchaseDate.Format("2006-01-02"),
			h.CurrentPrice, h.Investment, h.CurrentValue, h.ProfitLoss, h.ProfitLossPercentage, h.Notes,
		}
		if err := f.SetSheetRow(holdingsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write holding row: %w", err)
		}
	}

	summary := [][]interface{}{
		{"Currency", snapshot.Currency},
		{"Total Investment", snapshot.TotalInvestment},
		{"Total Current Value", snapshot.TotalCurrentValue},
		{"Total Profit/Loss", snapshot.TotalProfitLoss},
		{"Total Profit/Loss %", snapshot.TotalProfitLossPercentage},
		{"Holdings", len(snapshot.Holdings)},
	}
	if len(snapshot.MissingPrices) > 0 {
		summary = append(summary, []interface{}{"Missing Prices", strings.Join(snapshot.MissingPrices, ", ")})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
