package repository

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// SupplyRepository adjusts consumable stock. Quantities only change through
// Decrement and Increment.
type SupplyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Supply, error)
	// Decrement subtracts qty when enough stock exists, otherwise ErrInsufficientStock.
	Decrement(ctx context.Context, id string, qty int) (*domain.Supply, error)
	Increment(ctx context.Context, id string, qty int) (*domain.Supply, error)
}

type supplyRepository struct {
	db DBTX
}

// NewSupplyRepository builds repository.
func NewSupplyRepository(db DBTX) SupplyRepository {
	return &supplyRepository{db: db}
}

func (r *supplyRepository) GetByID(ctx context.Context, id string) (*domain.Supply, error) {
	const query = `SELECT id, name, unit, quantity, unit_cost FROM supplies WHERE id=$1`
	return r.fetch(ctx, query, id)
}

func (r *supplyRepository) Decrement(ctx context.Context, id string, qty int) (*domain.Supply, error) {
	const query = `
        UPDATE supplies SET quantity = quantity - $2, updated_at=NOW()
        WHERE id=$1 AND quantity >= $2
        RETURNING id, name, unit, quantity, unit_cost`
	supply, err := r.fetch(ctx, query, id, qty)
	if err == ErrNotFound {
		// distinguish a missing supply from a short one
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrInsufficientStock
	}
	return supply, err
}

func (r *supplyRepository) Increment(ctx context.Context, id string, qty int) (*domain.Supply, error) {
	const query = `
        UPDATE supplies SET quantity = quantity + $2, updated_at=NOW()
        WHERE id=$1
        RETURNING id, name, unit, quantity, unit_cost`
	return r.fetch(ctx, query, id, qty)
}

func (r *supplyRepository) fetch(ctx context.Context, query string, args ...any) (*domain.Supply, error) {
	var s domain.Supply
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&s.ID,
		&s.Name,
		&s.Unit,
		&s.Quantity,
		&s.UnitCost,
	); err != nil {
		return nil, translateErr(err)
	}
	return &s, nil
}
