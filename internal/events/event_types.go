package events

import (
	"time"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketWorkUpdated   EventType = "ticket_work_updated"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventAssetSynced         EventType = "asset_synced"
)

// AllEventTypes lists every published event type.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketWorkUpdated,
	EventTicketDeleted,
	EventAssetSynced,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted after a ticket transaction commits.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string              `json:"ticket_number"`
	AssetID      string              `json:"asset_id"`
	Status       domain.TicketStatus `json:"status"`
	Type         string              `json:"type"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Note      string              `json:"note,omitempty"`
}

// TicketWorkUpdatedPayload payload.
type TicketWorkUpdatedPayload struct {
	SupplyLinesAdded   int   `json:"supply_lines_added"`
	SupplyLinesRemoved int   `json:"supply_lines_removed"`
	PhotosAdded        int   `json:"photos_added"`
	Cost               int64 `json:"cost"`
}

// AssetSyncedPayload reports the asset/assignment side-effects of a transition.
// AssignmentUpdated is false when no assignment row was in the expected status.
type AssetSyncedPayload struct {
	AssetID           string                  `json:"asset_id"`
	AssetStatus       domain.AssetStatus      `json:"asset_status"`
	AssignmentStatus  domain.AssignmentStatus `json:"assignment_status"`
	AssignmentID      string                  `json:"assignment_id,omitempty"`
	AssignmentUpdated bool                    `json:"assignment_updated"`
}
