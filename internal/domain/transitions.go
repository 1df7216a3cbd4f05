package domain

// allowedTransitions is the generic graph used by status updates that do not
// go through a dedicated operation.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusDraft:           {TicketStatusSent, TicketStatusCancelled},
	TicketStatusSent:            {TicketStatusAccepted, TicketStatusPending, TicketStatusInProgress, TicketStatusRejected, TicketStatusCancelled},
	TicketStatusAccepted:        {TicketStatusInProgress, TicketStatusPending, TicketStatusEscalated, TicketStatusExternalService, TicketStatusCancelled},
	TicketStatusEscalated:       {TicketStatusAccepted, TicketStatusInProgress, TicketStatusPending, TicketStatusExternalService, TicketStatusCancelled},
	TicketStatusPending:         {TicketStatusAccepted, TicketStatusInProgress, TicketStatusExternalService, TicketStatusRejected, TicketStatusCancelled},
	TicketStatusInProgress:      {TicketStatusPending, TicketStatusEscalated, TicketStatusExternalService, TicketStatusDone, TicketStatusCancelled},
	TicketStatusExternalService: {TicketStatusInProgress, TicketStatusPending, TicketStatusDone, TicketStatusCancelled},
	TicketStatusDone:            {TicketStatusClosed},
	TicketStatusClosed:          {},
	TicketStatusRejected:        {},
	TicketStatusCancelled:       {},
}

// CanTransition reports whether the generic graph allows current -> next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AssetStatus enumerates the asset states this service writes. Other modules
// may use further values; they are preserved untouched.
type AssetStatus string

const (
	AssetStatusActive             AssetStatus = "active"
	AssetStatusMaintenance        AssetStatus = "maintenance"
	AssetStatusRequestMaintenance AssetStatus = "request-maintenance"
	AssetStatusStorage            AssetStatus = "storage"
	AssetStatusAssigned           AssetStatus = "assigned"
	AssetStatusRetired            AssetStatus = "retired"
	AssetStatusDisposed           AssetStatus = "disposed"
)

// AssignmentStatus enumerates states of the asset-to-holder binding.
type AssignmentStatus string

const (
	AssignmentStatusAssigned    AssignmentStatus = "assigned"
	AssignmentStatusMaintenance AssignmentStatus = "maintenance"
	AssignmentStatusReturned    AssignmentStatus = "returned"
)

// Opposite returns the assignment status a row must currently hold to be
// moved into s, or "" when no sync target exists.
func (s AssignmentStatus) Opposite() AssignmentStatus {
	switch s {
	case AssignmentStatusMaintenance:
		return AssignmentStatusAssigned
	case AssignmentStatusAssigned:
		return AssignmentStatusMaintenance
	}
	return ""
}

// SideEffects is the asset/assignment state implied by a ticket status.
type SideEffects struct {
	AssetStatus      AssetStatus
	AssignmentStatus AssignmentStatus
}

// DeriveSideEffects maps a ticket status onto asset and assignment status.
func DeriveSideEffects(status TicketStatus) SideEffects {
	switch status {
	case TicketStatusDraft, TicketStatusSent:
		return SideEffects{AssetStatus: AssetStatusRequestMaintenance, AssignmentStatus: AssignmentStatusMaintenance}
	case TicketStatusDone, TicketStatusClosed, TicketStatusCancelled, TicketStatusRejected:
		return SideEffects{AssetStatus: AssetStatusActive, AssignmentStatus: AssignmentStatusAssigned}
	default:
		return SideEffects{AssetStatus: AssetStatusMaintenance, AssignmentStatus: AssignmentStatusMaintenance}
	}
}
