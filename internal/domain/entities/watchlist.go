package entities

import "time"

// WatchlistItem is a coin a user follows without holding it
type WatchlistItem struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CoinID     string    `db:"coin_id" json:"coin_id"`
	CoinSymbol string    `db:"coin_symbol" json:"coin_symbol"`
	CoinName   string    `db:"coin_name" json:"coin_name"`
	AddedAt    time.Time `db:"added_at" json:"added_at"`
}
