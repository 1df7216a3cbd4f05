package dto

import (
	"time"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	AssetID      string              `json:"asset_id"`
	Type         string              `json:"type"`
	Description  string              `json:"description"`
	BeforePhotos []string            `json:"before_photos"`
	Status       domain.TicketStatus `json:"status,omitempty"`
	TechnicianID *string             `json:"technician_id,omitempty"`
	Note         string              `json:"note,omitempty"`
}

// AcceptTicketRequest payload.
type AcceptTicketRequest struct {
	TechnicianID string  `json:"technician_id"`
	Type         *string `json:"type,omitempty"`
	Note         string  `json:"note,omitempty"`
}

// EscalateTicketRequest payload.
type EscalateTicketRequest struct {
	DepartmentID string `json:"department_id"`
	Note         string `json:"note,omitempty"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Note   string              `json:"note,omitempty"`
}

// RejectTicketRequest payload.
type RejectTicketRequest struct {
	Reason string `json:"reason"`
}

// SupplyLineRequest is one consumed supply.
type SupplyLineRequest struct {
	SupplyID string `json:"supply_id"`
	Quantity int    `json:"quantity"`
}

// UpdateWorkRequest payload.
type UpdateWorkRequest struct {
	BeforePhotos []string             `json:"before_photos"`
	AfterPhotos  []string             `json:"after_photos"`
	Supplies     []SupplyLineRequest  `json:"supplies"`
	Status       *domain.TicketStatus `json:"status,omitempty"`
	StatusNote   string               `json:"status_note,omitempty"`
	Notes        []string             `json:"notes"`
	Cost         *int64               `json:"cost,omitempty"`
}

// NoteRequest payload for adding or editing a note.
type NoteRequest struct {
	Content string `json:"content"`
}

// TicketSummary response.
type TicketSummary struct {
	ID                   string              `json:"id"`
	TicketNumber         string              `json:"ticket_number"`
	AssetID              string              `json:"asset_id"`
	RequestedBy          string              `json:"requested_by"`
	TechnicianID         *string             `json:"technician_id"`
	AssignedDepartmentID *string             `json:"assigned_department_id"`
	Status               domain.TicketStatus `json:"status"`
	Type                 string              `json:"type"`
	Cost                 int64               `json:"cost"`
	RequestedAt          time.Time           `json:"requested_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	ProcessedBy     *string                `json:"processed_by"`
	ProcessedAt     *time.Time             `json:"processed_at"`
	Description     string                 `json:"description"`
	BeforePhotos    []string               `json:"before_photos"`
	AfterPhotos     []string               `json:"after_photos"`
	SuppliesUsed    []SupplyLineResponse   `json:"supplies_used"`
	RejectionReason *string                `json:"rejection_reason"`
	PendingNote     *string                `json:"pending_note"`
	Notes           []NoteResponse         `json:"notes"`
	History         []HistoryEntryResponse `json:"history"`
}

// SupplyLineResponse is a consumed supply with its price snapshot.
type SupplyLineResponse struct {
	ID       string    `json:"id"`
	SupplyID string    `json:"supply_id"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	UnitCost int64     `json:"unit_cost"`
	AddedBy  string    `json:"added_by"`
	AddedAt  time.Time `json:"added_at"`
}

// NoteResponse represents a ticket note.
type NoteResponse struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	AddedBy   string     `json:"added_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HistoryEntryResponse is one audit trail row.
type HistoryEntryResponse struct {
	Status    domain.TicketStatus `json:"status"`
	ChangedBy string              `json:"changed_by"`
	ChangedAt time.Time           `json:"changed_at"`
	Note      string              `json:"note"`
}

// UploadResponse lists stored photo references.
type UploadResponse struct {
	Paths []string `json:"paths"`
}
