package service

import (
	"strings"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// CreateTicketInput describes ticket creation payload. Status and
// TechnicianID are honoured only for privileged direct creation.
type CreateTicketInput struct {
	AssetID      string
	Type         string
	Description  string
	BeforePhotos []string
	Status       domain.TicketStatus
	TechnicianID *string
	Note         string
}

// Validate checks required fields.
func (in CreateTicketInput) Validate() error {
	if strings.TrimSpace(in.AssetID) == "" {
		return apperrors.NewValidationError("asset_id required", nil)
	}
	if in.Status != "" && !in.Status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": in.Status})
	}
	return nil
}

// AcceptTicketInput describes a manager accepting a sent request.
type AcceptTicketInput struct {
	TechnicianID string
	Type         *string
	Note         string
}

// Validate checks required fields.
func (in AcceptTicketInput) Validate() error {
	if strings.TrimSpace(in.TechnicianID) == "" {
		return apperrors.NewValidationError("technician_id required", nil)
	}
	return nil
}

// EscalateTicketInput moves a ticket to another department.
type EscalateTicketInput struct {
	DepartmentID string
	Note         string
}

// Validate checks required fields.
func (in EscalateTicketInput) Validate() error {
	if strings.TrimSpace(in.DepartmentID) == "" {
		return apperrors.NewValidationError("department_id required", nil)
	}
	return nil
}

// UpdateStatusInput is a generic status change.
type UpdateStatusInput struct {
	Status domain.TicketStatus
	Note   string
}

// Validate checks required fields.
func (in UpdateStatusInput) Validate() error {
	return validateTargetStatus(in.Status, in.Note)
}

// RejectTicketInput carries the mandatory rejection reason.
type RejectTicketInput struct {
	Reason string
}

// Validate checks required fields.
func (in RejectTicketInput) Validate() error {
	if strings.TrimSpace(in.Reason) == "" {
		return apperrors.NewValidationError("reason required", nil)
	}
	return nil
}

// SupplyLineInput requests stock for a ticket.
type SupplyLineInput struct {
	SupplyID string
	Quantity int
}

// UpdateWorkInput records technician progress. Supplies are consumed all or nothing.
type UpdateWorkInput struct {
	BeforePhotos []string
	AfterPhotos  []string
	Supplies     []SupplyLineInput
	Status       *domain.TicketStatus
	StatusNote   string
	Notes        []string
	Cost         *int64
}

// Validate checks required fields.
func (in UpdateWorkInput) Validate() error {
	for i, line := range in.Supplies {
		if strings.TrimSpace(line.SupplyID) == "" {
			return apperrors.NewValidationError("supply_id required", map[string]any{"line": i})
		}
		if line.Quantity <= 0 {
			return apperrors.NewValidationError("quantity must be positive", map[string]any{"line": i})
		}
	}
	if in.Cost != nil && *in.Cost < 0 {
		return apperrors.NewValidationError("cost must not be negative", nil)
	}
	if in.Status != nil {
		if err := validateTargetStatus(*in.Status, in.StatusNote); err != nil {
			return err
		}
	}
	return nil
}

func validateTargetStatus(status domain.TicketStatus, note string) error {
	if !status.Valid() {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	if status == domain.TicketStatusRejected && strings.TrimSpace(note) == "" {
		return apperrors.NewValidationError("note required when rejecting", nil)
	}
	return nil
}

// ListScopeName selects which tickets a listing returns.
type ListScopeName string

const (
	ListAll      ListScopeName = "all"
	ListMine     ListScopeName = "mine"
	ListAssigned ListScopeName = "assigned"
)

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Scope    ListScopeName
	Statuses []domain.TicketStatus
	Limit    int
	Offset   int
}
