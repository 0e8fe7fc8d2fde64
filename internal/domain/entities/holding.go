package entities

import (
	"time"
)

// MinHoldingAmount is the smallest amount of a coin a holding may record
const MinHoldingAmount = 1e-8

// Holding is a user's recorded position in a coin
type Holding struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	CoinID       string    `db:"coin_id" json:"coin_id"`
	CoinSymbol   string    `db:"coin_symbol" json:"coin_symbol"`
	CoinName     string    `db:"coin_name" json:"coin_name"`
	Amount       float64   `db:"amount" json:"amount"`
	BuyPrice     float64   `db:"buy_price" json:"buy_price"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchase_date"`
	Notes        string    `db:"notes" json:"notes"`
	CurrentPrice float64   `db:"current_price" json:"current_price"` // Last persisted recalculation
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// HoldingInput carries caller-supplied fields for creating or updating a holding
type HoldingInput struct {
	CoinID       string     `json:"coin_id"`
	Amount       float64    `json:"amount"`
	BuyPrice     float64    `json:"buy_price"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        string     `json:"notes"`
}
