package repositories

import (
	"context"

	"github.com/bimakw/coin-portfolio/internal/domain/entities"
)

// HoldingRepository defines interface for holding data operations
type HoldingRepository interface {
	// FindByUser retrieves all holdings of a user, oldest purchase first
	FindByUser(ctx context.Context, userID string) ([]entities.Holding, error)

	// GetByID retrieves a single holding owned by the user.
	// Returns apperrors.ErrHoldingNotFound when it does not exist.
	GetByID(ctx context.Context, userID, holdingID string) (*entities.Holding, error)

	// Create inserts a new holding
	Create(ctx context.Context, holding *entities.Holding) error

	// Update overwrites the editable fields of a holding
	Update(ctx context.Context, holding *entities.Holding) error

	// Delete removes a holding owned by the user
	Delete(ctx context.Context, userID, holdingID string) error

	// UpdateCurrentPrice persists a recalculated price for one holding
	UpdateCurrentPrice(ctx context.Context, holdingID string, price float64) error

	// ListUserIDs returns every user that has at least one holding
	ListUserIDs(ctx context.Context) ([]string, error)
}
