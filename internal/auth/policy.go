package auth

import "github.com/spec-kit/asset-maintenance/internal/domain"

// Operation names a gated ticket action.
type Operation string

const (
	OpView         Operation = "view"
	OpCreate       Operation = "create"
	OpDirectCreate Operation = "direct_create"
	OpSend         Operation = "send"
	OpAccept       Operation = "accept"
	OpStart        Operation = "start"
	OpEscalate     Operation = "escalate"
	OpUpdateStatus Operation = "update_status"
	OpReject       Operation = "reject"
	OpComplete     Operation = "complete"
	OpCancel       Operation = "cancel"
	OpUpdateWork   Operation = "update_work"
	OpAddNote      Operation = "add_note"
	OpEditNote     Operation = "edit_note"
	OpDeleteNote   Operation = "delete_note"
	OpDeleteTicket Operation = "delete_ticket"
)

// Target is the ticket an operation applies to, with the department facts
// needed to evaluate manager scope.
type Target struct {
	Ticket                *domain.Ticket
	RequesterDepartmentID *string
	AssetDepartmentID     *string
	// NextStatus is the requested status of a generic status change.
	NextStatus domain.TicketStatus
	// NoteAuthorID is set for note edits and deletes.
	NoteAuthorID string
}

// statusGates maps generic status targets to the operation whose rule they
// must satisfy, so a generic update never reaches what the dedicated
// operation forbids.
var statusGates = map[domain.TicketStatus]Operation{
	domain.TicketStatusAccepted:  OpAccept,
	domain.TicketStatusEscalated: OpEscalate,
	domain.TicketStatusRejected:  OpReject,
	domain.TicketStatusDone:      OpComplete,
}

// InDepartment reports whether the ticket belongs to dept through its
// requester, its asset, or an escalation.
func (t Target) InDepartment(dept string) bool {
	if dept == "" {
		return false
	}
	if t.Ticket != nil && t.Ticket.AssignedDepartmentID != nil && *t.Ticket.AssignedDepartmentID == dept {
		return true
	}
	if t.RequesterDepartmentID != nil && *t.RequesterDepartmentID == dept {
		return true
	}
	return t.AssetDepartmentID != nil && *t.AssetDepartmentID == dept
}

// CanPerform is the single authorization decision for ticket operations.
// Callers must re-check it on every mutation even if the ticket came from a
// scoped listing.
func CanPerform(actor domain.Actor, op Operation, target Target) bool {
	if actor.ID == "" {
		return false
	}
	ticket := target.Ticket
	if op == OpSend || op == OpCancel {
		return ticket != nil && ticket.RequestedBy == actor.ID
	}
	if actor.Privileged() {
		return true
	}

	switch op {
	case OpCreate:
		return true
	case OpDirectCreate, OpDeleteTicket:
		return false
	}
	if ticket == nil {
		return false
	}

	switch op {
	case OpView, OpAddNote:
		return canView(actor, target)
	case OpStart:
		return ticket.IsTechnician(actor.ID)
	case OpAccept, OpReject, OpComplete:
		return managerInScope(actor, target)
	case OpEscalate:
		return ticket.IsTechnician(actor.ID) || managerInScope(actor, target)
	case OpUpdateWork, OpUpdateStatus:
		if gate, ok := statusGates[target.NextStatus]; ok && !CanPerform(actor, gate, target) {
			return false
		}
		return ticket.IsTechnician(actor.ID) || (actor.IsManager() && actor.HasDepartment())
	case OpEditNote, OpDeleteNote:
		return target.NoteAuthorID != "" && target.NoteAuthorID == actor.ID
	}
	return false
}

func canView(actor domain.Actor, target Target) bool {
	ticket := target.Ticket
	if ticket.RequestedBy == actor.ID || ticket.IsTechnician(actor.ID) {
		return true
	}
	if actor.IsManager() {
		return managerInScope(actor, target)
	}
	return ticket.HasTechnician()
}

func managerInScope(actor domain.Actor, target Target) bool {
	return actor.IsManager() && actor.HasDepartment() && target.InDepartment(*actor.DepartmentID)
}

// ScopeKind classifies how much of the ticket table an actor may list.
type ScopeKind int

const (
	// ScopeNone yields an empty result without querying.
	ScopeNone ScopeKind = iota
	ScopeGlobal
	ScopeDepartment
	ScopeClaimed
)

// ListScope describes the "all tickets" view for an actor.
type ListScope struct {
	Kind         ScopeKind
	DepartmentID string
}

// ScopeFor returns the list-all scope: global for admin/superuser, the own
// department for managers (none without one), otherwise only tickets that
// already have a technician.
func ScopeFor(actor domain.Actor) ListScope {
	switch {
	case actor.Privileged():
		return ListScope{Kind: ScopeGlobal}
	case actor.IsManager():
		if !actor.HasDepartment() {
			return ListScope{Kind: ScopeNone}
		}
		return ListScope{Kind: ScopeDepartment, DepartmentID: *actor.DepartmentID}
	default:
		return ListScope{Kind: ScopeClaimed}
	}
}
