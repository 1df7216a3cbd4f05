package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusDraft           TicketStatus = "Draft"
	TicketStatusSent            TicketStatus = "Sent"
	TicketStatusAccepted        TicketStatus = "Accepted"
	TicketStatusEscalated       TicketStatus = "Escalated"
	TicketStatusPending         TicketStatus = "Pending"
	TicketStatusInProgress      TicketStatus = "In Progress"
	TicketStatusExternalService TicketStatus = "External Service"
	TicketStatusDone            TicketStatus = "Done"
	TicketStatusClosed          TicketStatus = "Closed"
	TicketStatusRejected        TicketStatus = "Rejected"
	TicketStatusCancelled       TicketStatus = "Cancelled"
)

// AllTicketStatuses lists every status in lifecycle order.
var AllTicketStatuses = []TicketStatus{
	TicketStatusDraft,
	TicketStatusSent,
	TicketStatusAccepted,
	TicketStatusEscalated,
	TicketStatusPending,
	TicketStatusInProgress,
	TicketStatusExternalService,
	TicketStatusDone,
	TicketStatusClosed,
	TicketStatusRejected,
	TicketStatusCancelled,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range AllTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether the ticket no longer holds the asset in maintenance.
func (s TicketStatus) Terminal() bool {
	switch s {
	case TicketStatusDone, TicketStatusClosed, TicketStatusRejected, TicketStatusCancelled:
		return true
	}
	return false
}

// OpenTicketStatuses are the statuses that count against the one-open-ticket-per-asset rule.
func OpenTicketStatuses() []TicketStatus {
	open := make([]TicketStatus, 0, len(AllTicketStatuses))
	for _, s := range AllTicketStatuses {
		if !s.Terminal() {
			open = append(open, s)
		}
	}
	return open
}

// SupplyLine is one consumable charged to a ticket. Name and UnitCost are
// snapshots taken when the stock was consumed.
type SupplyLine struct {
	ID       string
	TicketID string
	SupplyID string
	Name     string
	Quantity int
	UnitCost int64
	AddedBy  string
	AddedAt  time.Time
}

// LineCost returns quantity times unit cost.
func (l SupplyLine) LineCost() int64 {
	return int64(l.Quantity) * l.UnitCost
}

// Ticket is the maintenance request aggregate.
type Ticket struct {
	ID                   string
	TicketNumber         string
	AssetID              string
	RequestedBy          string
	TechnicianID         *string
	ProcessedBy          *string
	AssignedDepartmentID *string
	Status               TicketStatus
	Type                 string
	Description          string
	SuppliesUsed         []SupplyLine
	Cost                 int64
	BeforePhotos         []string
	AfterPhotos          []string
	RejectionReason      *string
	PendingNote          *string
	RequestedAt          time.Time
	ProcessedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time

	Notes   []Note
	History []HistoryEntry
}

// SuppliesCost sums the supply lines.
func (t *Ticket) SuppliesCost() int64 {
	var total int64
	for _, line := range t.SuppliesUsed {
		total += line.LineCost()
	}
	return total
}

// HasTechnician reports whether a technician has claimed the ticket.
func (t *Ticket) HasTechnician() bool {
	return t.TechnicianID != nil && *t.TechnicianID != ""
}

// IsTechnician reports whether userID is the assigned technician.
func (t *Ticket) IsTechnician(userID string) bool {
	return t.HasTechnician() && *t.TechnicianID == userID
}

// Clone returns a deep copy so stores never share slices with callers.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.TechnicianID = cloneString(t.TechnicianID)
	cp.ProcessedBy = cloneString(t.ProcessedBy)
	cp.AssignedDepartmentID = cloneString(t.AssignedDepartmentID)
	cp.RejectionReason = cloneString(t.RejectionReason)
	cp.PendingNote = cloneString(t.PendingNote)
	if t.ProcessedAt != nil {
		at := *t.ProcessedAt
		cp.ProcessedAt = &at
	}
	cp.SuppliesUsed = append([]SupplyLine(nil), t.SuppliesUsed...)
	cp.BeforePhotos = append([]string(nil), t.BeforePhotos...)
	cp.AfterPhotos = append([]string(nil), t.AfterPhotos...)
	cp.Notes = append([]Note(nil), t.Notes...)
	cp.History = append([]HistoryEntry(nil), t.History...)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
