package repository

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// AssetRepository exposes the asset fields this service shares with the asset registry.
// Only status and maintenance history are ever written.
type AssetRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Asset, error)
	UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error
	AppendMaintenanceRecord(ctx context.Context, record *domain.MaintenanceRecord) error
	ListMaintenanceRecords(ctx context.Context, assetID string) ([]domain.MaintenanceRecord, error)
}

type assetRepository struct {
	db DBTX
}

// NewAssetRepository builds repository.
func NewAssetRepository(db DBTX) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) GetByID(ctx context.Context, id string) (*domain.Asset, error) {
	const query = `
        SELECT id, name, serial_number, department_id, status, updated_at
        FROM assets WHERE id=$1`
	var asset domain.Asset
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&asset.ID,
		&asset.Name,
		&asset.SerialNumber,
		&asset.DepartmentID,
		&asset.Status,
		&asset.UpdatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &asset, nil
}

func (r *assetRepository) UpdateStatus(ctx context.Context, id string, status domain.AssetStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE assets SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *assetRepository) AppendMaintenanceRecord(ctx context.Context, record *domain.MaintenanceRecord) error {
	const query = `
        INSERT INTO asset_maintenance_history (asset_id, ticket_id, ticket_number, description, completed_by, cost, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id`
	return translateErr(r.db.QueryRow(ctx, query,
		record.AssetID,
		record.TicketID,
		record.TicketNumber,
		record.Description,
		record.CompletedBy,
		record.Cost,
		record.CompletedAt,
	).Scan(&record.ID))
}

func (r *assetRepository) ListMaintenanceRecords(ctx context.Context, assetID string) ([]domain.MaintenanceRecord, error) {
	const query = `
        SELECT id, asset_id, ticket_id, ticket_number, description, completed_by, cost, completed_at
        FROM asset_maintenance_history WHERE asset_id=$1 ORDER BY completed_at ASC`
	rows, err := r.db.Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MaintenanceRecord
	for rows.Next() {
		var rec domain.MaintenanceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.AssetID,
			&rec.TicketID,
			&rec.TicketNumber,
			&rec.Description,
			&rec.CompletedBy,
			&rec.Cost,
			&rec.CompletedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}
