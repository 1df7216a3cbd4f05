package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// SupplySnapshot is the price and name captured when stock is consumed.
type SupplySnapshot struct {
	SupplyID  string
	Name      string
	UnitCost  int64
	Remaining int
}

// Ledger moves consumable stock. It always runs on the caller's transaction
// so a failing line aborts every earlier line of the same operation.
type Ledger struct {
	logger *zap.Logger
}

// NewLedger builds a ledger.
func NewLedger(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{logger: logger}
}

// Consume decrements stock or fails with INSUFFICIENT_STOCK.
func (l *Ledger) Consume(ctx context.Context, supplies repository.SupplyRepository, supplyID string, qty int) (*SupplySnapshot, error) {
	if qty <= 0 {
		return nil, apperrors.NewValidationError("quantity must be positive", map[string]any{"supply_id": supplyID})
	}
	supply, err := supplies.Decrement(ctx, supplyID, qty)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apperrors.NewNotFound("supply", map[string]any{"supply_id": supplyID})
		case errors.Is(err, repository.ErrInsufficientStock):
			available := 0
			if current, getErr := supplies.GetByID(ctx, supplyID); getErr == nil {
				available = current.Quantity
			}
			return nil, apperrors.NewInsufficientStock(supplyID, qty, available)
		}
		return nil, apperrors.MapError(err)
	}
	return &SupplySnapshot{
		SupplyID:  supply.ID,
		Name:      supply.Name,
		UnitCost:  supply.UnitCost,
		Remaining: supply.Quantity,
	}, nil
}

// Restore returns stock from a removed ticket line.
func (l *Ledger) Restore(ctx context.Context, supplies repository.SupplyRepository, supplyID string, qty int) error {
	if qty <= 0 {
		return apperrors.NewValidationError("quantity must be positive", map[string]any{"supply_id": supplyID})
	}
	if _, err := supplies.Increment(ctx, supplyID, qty); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("supply", map[string]any{"supply_id": supplyID})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ReduceCost subtracts a removed line from the ticket cost, clamping at zero.
// A clamp means the cost had been overridden below the supply total and is
// logged for reconciliation.
func (l *Ledger) ReduceCost(ticket *domain.Ticket, line domain.SupplyLine) {
	next := ticket.Cost - line.LineCost()
	if next < 0 {
		l.logger.Warn("ticket cost clamped to zero",
			zap.String("ticket_id", ticket.ID),
			zap.String("supply_line_id", line.ID),
			zap.Int64("cost", ticket.Cost),
			zap.Int64("line_cost", line.LineCost()))
		next = 0
	}
	ticket.Cost = next
}
