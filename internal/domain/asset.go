package domain

import "time"

// Asset is owned by the asset registry. This service only reads it and
// writes Status and the maintenance history.
type Asset struct {
	ID           string
	Name         string
	SerialNumber string
	DepartmentID *string
	Status       AssetStatus
	UpdatedAt    time.Time
}

// MaintenanceRecord summarises a completed ticket on the asset.
type MaintenanceRecord struct {
	ID           string
	AssetID      string
	TicketID     string
	TicketNumber string
	Description  string
	CompletedBy  string
	Cost         int64
	CompletedAt  time.Time
}

// Assignment binds an asset to the user currently holding it.
type Assignment struct {
	ID        string
	AssetID   string
	UserID    string
	Status    AssignmentStatus
	UpdatedAt time.Time
}
