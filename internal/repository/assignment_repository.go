package repository

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// AssignmentRepository reads and updates asset-to-holder bindings.
type AssignmentRepository interface {
	// FindByAssetAndStatus returns the most recent row for the pair, or ErrNotFound.
	FindByAssetAndStatus(ctx context.Context, assetID string, status domain.AssignmentStatus) (*domain.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus) error
}

type assignmentRepository struct {
	db DBTX
}

// NewAssignmentRepository builds repository.
func NewAssignmentRepository(db DBTX) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) FindByAssetAndStatus(ctx context.Context, assetID string, status domain.AssignmentStatus) (*domain.Assignment, error) {
	const query = `
        SELECT id, asset_id, user_id, status, updated_at
        FROM asset_assignments WHERE asset_id=$1 AND status=$2
        ORDER BY updated_at DESC LIMIT 1`
	var a domain.Assignment
	if err := r.db.QueryRow(ctx, query, assetID, status).Scan(
		&a.ID,
		&a.AssetID,
		&a.UserID,
		&a.Status,
		&a.UpdatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &a, nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AssignmentStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE asset_assignments SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
