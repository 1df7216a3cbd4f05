package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// SyncResult reports what the synchronizer wrote. AssignmentUpdated is false
// when no assignment row was in the expected prior status.
type SyncResult struct {
	AssetID           string
	AssetStatus       domain.AssetStatus
	AssignmentStatus  domain.AssignmentStatus
	AssignmentID      string
	AssignmentUpdated bool
}

// Synchronizer applies the asset and assignment status implied by a ticket status.
type Synchronizer struct {
	logger *zap.Logger
}

// NewSynchronizer builds a synchronizer.
func NewSynchronizer(logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{logger: logger}
}

// Apply writes Asset.status and moves the single assignment row in the
// opposite status. The asset must exist; the assignment is advisory.
func (s *Synchronizer) Apply(ctx context.Context, repos repository.Repositories, assetID string, status domain.TicketStatus) (SyncResult, error) {
	effects := domain.DeriveSideEffects(status)
	result := SyncResult{
		AssetID:          assetID,
		AssetStatus:      effects.AssetStatus,
		AssignmentStatus: effects.AssignmentStatus,
	}

	if err := repos.Assets.UpdateStatus(ctx, assetID, effects.AssetStatus); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return result, apperrors.NewNotFound("asset", map[string]any{"asset_id": assetID})
		}
		return result, apperrors.MapError(err)
	}

	from := effects.AssignmentStatus.Opposite()
	row, err := repos.Assignments.FindByAssetAndStatus(ctx, assetID, from)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("assignment sync skipped",
				zap.String("asset_id", assetID),
				zap.String("ticket_status", string(status)),
				zap.String("expected_assignment_status", string(from)))
			return result, nil
		}
		return result, apperrors.MapError(err)
	}
	if err := repos.Assignments.UpdateStatus(ctx, row.ID, effects.AssignmentStatus); err != nil {
		return result, apperrors.MapError(err)
	}
	result.AssignmentID = row.ID
	result.AssignmentUpdated = true
	return result, nil
}
