package repositories

import (
	"context"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// WatchlistRepository defines interface for watchlist data operations
type WatchlistRepository interface {
	// FindByUser retrieves the user's watchlist, most recently added first
	FindByUser(ctx context.Context, userID string) ([]entities.WatchlistItem, error)

	// Add inserts an item. Returns apperrors.ErrDuplicateEntry if the coin is already watched.
	Add(ctx context.Context, item *entities.WatchlistItem) error

	// Remove deletes a coin from the watchlist.
	// Returns apperrors.ErrWatchlistItemNotFound when it was not watched.
	Remove(ctx context.Context, userID, coinID string) error

	// Exists reports whether the user already watches the coin
	Exists(ctx context.Context, userID, coinID string) (bool, error)
}
