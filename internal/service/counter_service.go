package service

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// Counters are the per-actor queue badges.
type Counters struct {
	PendingDeptTickets int `json:"pendingDeptTickets"`
	AssignedTickets    int `json:"assignedTickets"`
	ActiveTickets      int `json:"activeTickets"`
	PendingUserAction  int `json:"pendingUserAction"`
}

// CounterService derives queue counters from the ticket table on every call.
type CounterService struct {
	store repository.Store
}

// NewCounterService constructs the service.
func NewCounterService(store repository.Store) *CounterService {
	return &CounterService{store: store}
}

var activeStatuses = []domain.TicketStatus{
	domain.TicketStatusInProgress,
	domain.TicketStatusExternalService,
	domain.TicketStatusEscalated,
}

// Counters returns the queue sizes visible to actor.
func (c *CounterService) Counters(ctx context.Context, actor domain.Actor) (Counters, error) {
	tickets := c.store.Repos().Tickets
	var out Counters

	// Department queue: sent requests waiting for a manager decision.
	if scoped, ok := departmentFilter(actor); ok {
		scoped.Statuses = []domain.TicketStatus{domain.TicketStatusSent}
		n, err := count(ctx, tickets, scoped)
		if err != nil {
			return out, err
		}
		out.PendingDeptTickets = n
	}

	assigned := repository.TicketFilter{
		TechnicianID: &actor.ID,
		Statuses:     []domain.TicketStatus{domain.TicketStatusAccepted, domain.TicketStatusPending},
	}
	n, err := count(ctx, tickets, assigned)
	if err != nil {
		return out, err
	}
	out.AssignedTickets = n

	active := repository.TicketFilter{TechnicianID: &actor.ID}
	if scoped, ok := departmentFilter(actor); ok {
		active = scoped
	}
	active.Statuses = activeStatuses
	if out.ActiveTickets, err = count(ctx, tickets, active); err != nil {
		return out, err
	}

	drafts := repository.TicketFilter{
		RequesterID: &actor.ID,
		Statuses:    []domain.TicketStatus{domain.TicketStatusDraft},
	}
	if out.PendingUserAction, err = count(ctx, tickets, drafts); err != nil {
		return out, err
	}
	return out, nil
}

// departmentFilter returns the list scope for managers and privileged users.
func departmentFilter(actor domain.Actor) (repository.TicketFilter, bool) {
	var filter repository.TicketFilter
	scope := auth.ScopeFor(actor)
	switch scope.Kind {
	case auth.ScopeGlobal:
		return filter, true
	case auth.ScopeDepartment:
		return filter, applyListScope(&filter, scope)
	}
	return filter, false
}

func count(ctx context.Context, tickets repository.TicketRepository, filter repository.TicketFilter) (int, error) {
	byStatus, err := tickets.CountByStatus(ctx, filter)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	total := 0
	for _, n := range byStatus {
		total += n
	}
	return total, nil
}
