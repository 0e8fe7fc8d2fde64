package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
)

// Ensure WatchlistRepo implements WatchlistRepository
var _ repositories.WatchlistRepository = (*WatchlistRepo)(nil)

// WatchlistRepo implements WatchlistRepository on top of sqlx
type WatchlistRepo struct {
	db *sqlx.DB
}

// NewWatchlistRepo creates a new watchlist repository
func NewWatchlistRepo(db *sqlx.DB) *WatchlistRepo {
	return &WatchlistRepo{db: db}
}

// FindByUser retrieves the user's watchlist, most recently added first
func (r *WatchlistRepo) FindByUser(ctx context.Context, userID string) ([]entities.WatchlistItem, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, coin_id, coin_symbol, coin_name, added_at
		FROM watchlist
		WHERE user_id = ?
		ORDER BY added_at DESC, id ASC
	`)

	items := []entities.WatchlistItem{}
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	for i := range items {
		items[i].AddedAt = items[i].AddedAt.UTC()
	}
	return items, nil
}

// Add inserts an item
func (r *WatchlistRepo) Add(ctx context.Context, item *entities.WatchlistItem) error {
	query := `
		INSERT INTO watchlist (id, user_id, coin_id, coin_symbol, coin_name, added_at)
		VALUES (:id, :user_id, :coin_id, :coin_symbol, :coin_name, :added_at)
	`

	row := *item
	row.AddedAt = row.AddedAt.UTC()
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to add watchlist item: %w", err)
	}
	return nil
}

// Remove deletes a coin from the watchlist
func (r *WatchlistRepo) Remove(ctx context.Context, userID, coinID string) error {
	query := r.db.Rebind(`DELETE FROM watchlist WHERE user_id = ? AND coin_id = ?`)

	result, err := r.db.ExecContext(ctx, query, userID, coinID)
	if err != nil {
		return fmt.Errorf("failed to remove watchlist item: %w", err)
	}
	return expectOne(result, apperrors.ErrWatchlistItemNotFound)
}

// Exists reports whether the user already watches the coin
func (r *WatchlistRepo) Exists(ctx context.Context, userID, coinID string) (bool, error) {
	query := r.db.Rebind(`SELECT EXISTS(SELECT 1 FROM watchlist WHERE user_id = ? AND coin_id = ?)`)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, coinID); err != nil {
		return false, fmt.Errorf("failed to check watchlist: %w", err)
	}
	return exists, nil
}
