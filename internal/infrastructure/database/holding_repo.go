package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bimakw/coin-portfolio/internal/domain/apperrors"
	"github.com/bimakw/coin-portfolio/internal/domain/entities"
	"github.com/bimakw/coin-portfolio/internal/domain/repositories"
)

// Ensure HoldingRepo implements HoldingRepository
var _ repositories.HoldingRepository = (*HoldingRepo)(nil)

const holdingColumns = `id, user_id, coin_id, coin_symbol, coin_name, amount, buy_price,
	purchase_date, notes, current_price, created_at, updated_at`

// HoldingRepo implements HoldingRepository on top of sqlx
type HoldingRepo struct {
	db *sqlx.DB
}

// NewHoldingRepo creates a new holding repository
func NewHoldingRepo(db *sqlx.DB) *HoldingRepo {
	return &HoldingRepo{db: db}
}

// FindByUser retrieves all holdings of a user, oldest purchase first
func (r *HoldingRepo) FindByUser(ctx context.Context, userID string) ([]entities.Holding, error) {
	query := r.db.Rebind(`SELECT ` + holdingColumns + ` FROM holdings
		WHERE user_id = ?
		ORDER BY purchase_date ASC, id ASC`)

	holdings := []entities.Holding{}
	if err := r.db.SelectContext(ctx, &holdings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get holdings: %w", err)
	}
	for i := range holdings {
		utc(&holdings[i])
	}
	return holdings, nil
}

// GetByID retrieves a single holding owned by the user
func (r *HoldingRepo) GetByID(ctx context.Context, userID, holdingID string) (*entities.Holding, error) {
	query := r.db.Rebind(`SELECT ` + holdingColumns + ` FROM holdings WHERE id = ? AND user_id = ?`)

	var holding entities.Holding
	err := r.db.GetContext(ctx, &holding, query, holdingID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	utc(&holding)
	return &holding, nil
}

// Create inserts a new holding
func (r *HoldingRepo) Create(ctx context.Context, holding *entities.Holding) error {
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES (:id, :user_id, :coin_id, :coin_symbol, :coin_name, :amount, :buy_price,
			:purchase_date, :notes, :current_price, :created_at, :updated_at)
	`

	row := *holding
	utc(&row)
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a holding
func (r *HoldingRepo) Update(ctx context.Context, holding *entities.Holding) error {
	query := `
		UPDATE holdings SET
			coin_id = :coin_id,
			coin_symbol = :coin_symbol,
			coin_name = :coin_name,
			amount = :amount,
			buy_price = :buy_price,
			purchase_date = :purchase_date,
			notes = :notes,
			current_price = :current_price,
			updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`

	row := *holding
	utc(&row)
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to update holding: %w", err)
	}
	return expectOne(result, apperrors.ErrHoldingNotFound)
}

// Delete removes a holding owned by the user
func (r *HoldingRepo) Delete(ctx context.Context, userID, holdingID string) error {
	query := r.db.Rebind(`DELETE FROM holdings WHERE id = ? AND user_id = ?`)

	result, err := r.db.ExecContext(ctx, query, holdingID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return expectOne(result, apperrors.ErrHoldingNotFound)
}

// UpdateCurrentPrice persists a recalculated price for one holding
func (r *HoldingRepo) UpdateCurrentPrice(ctx context.Context, holdingID string, price float64) error {
	query := r.db.Rebind(`UPDATE holdings SET current_price = ? WHERE id = ?`)

	result, err := r.db.ExecContext(ctx, query, price, holdingID)
	if err != nil {
		return fmt.Errorf("failed to update current price: %w", err)
	}
	return expectOne(result, apperrors.ErrHoldingNotFound)
}

// ListUserIDs returns every user that has at least one holding
func (r *HoldingRepo) ListUserIDs(ctx context.Context) ([]string, error) {
	userIDs := []string{}
	if err := r.db.SelectContext(ctx, &userIDs, `SELECT DISTINCT user_id FROM holdings ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return userIDs, nil
}

func expectOne(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

// TIMESTAMP columns carry no zone
func utc(h *entities.Holding) {
	h.PurchaseDate = h.PurchaseDate.UTC()
	h.CreatedAt = h.CreatedAt.UTC()
	h.UpdatedAt = h.UpdatedAt.UTC()
}
