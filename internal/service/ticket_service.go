package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/events"
	"github.com/spec-kit/asset-maintenance/internal/repository"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// TicketService is the maintenance workflow engine. Every operation runs in a
// single store transaction covering the ticket, its history, the asset, the
// assignment and supply stock.
type TicketService struct {
	store      repository.Store
	sync       *Synchronizer
	ledger     *Ledger
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Store        repository.Store
	Synchronizer *Synchronizer
	Ledger       *Ledger
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
	Clock        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TicketService{
		store:      deps.Store,
		sync:       deps.Synchronizer,
		ledger:     deps.Ledger,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        deps.Clock,
	}
	if svc.sync == nil {
		svc.sync = NewSynchronizer(logger)
	}
	if svc.ledger == nil {
		svc.ledger = NewLedger(logger)
	}
	if svc.now == nil {
		svc.now = func() time.Time { return time.Now().UTC() }
	}
	return svc
}

type statusChange struct {
	from domain.TicketStatus
	to   domain.TicketStatus
	note string
}

// ticketTx is the state of one workflow operation inside its transaction.
type ticketTx struct {
	repos  repository.Repositories
	actor  domain.Actor
	op     auth.Operation
	target auth.Target
	ticket *domain.Ticket
	change *statusChange
	work   *events.TicketWorkUpdatedPayload
	// noop skips persistence; used for transitions that request the current status.
	noop bool
}

func (tx *ticketTx) moveTo(status domain.TicketStatus, note string) {
	tx.change = &statusChange{from: tx.ticket.Status, to: status, note: strings.TrimSpace(note)}
	tx.ticket.Status = status
}

func (tx *ticketTx) requireStatus(to domain.TicketStatus, allowed ...domain.TicketStatus) error {
	for _, s := range allowed {
		if tx.ticket.Status == s {
			return nil
		}
	}
	return apperrors.NewInvalidTransition(string(tx.ticket.Status), string(to))
}

// CreateTicket opens a maintenance request. Non-privileged requesters must
// currently hold the asset; privileged callers may create directly in any status.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if !auth.CanPerform(actor, auth.OpCreate, auth.Target{}) {
		return nil, apperrors.NewForbidden("not allowed to create tickets")
	}
	status := domain.TicketStatusDraft
	direct := input.Status != "" && input.Status != domain.TicketStatusDraft
	if direct || input.TechnicianID != nil {
		if !auth.CanPerform(actor, auth.OpDirectCreate, auth.Target{}) {
			return nil, apperrors.NewForbidden("direct creation requires admin or superuser")
		}
	}
	if direct {
		status = input.Status
	}

	var (
		ticket  *domain.Ticket
		pending []events.Event
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Assets.GetByID(ctx, input.AssetID); err != nil {
			return notFound("asset", input.AssetID, err)
		}
		if !actor.Privileged() {
			holding, err := repos.Assignments.FindByAssetAndStatus(ctx, input.AssetID, domain.AssignmentStatusAssigned)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return apperrors.MapError(err)
			}
			if holding == nil || holding.UserID != actor.ID {
				return apperrors.NewForbidden("asset is not assigned to the requester")
			}
		}
		open, err := repos.Tickets.FindOpenByAsset(ctx, input.AssetID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.MapError(err)
		}
		if open != nil {
			return apperrors.NewConflict("asset already has an open ticket", map[string]any{
				"asset_id":  input.AssetID,
				"ticket_id": open.ID,
			})
		}

		now := s.now()
		ticket = &domain.Ticket{
			TicketNumber: generateTicketNumber(now),
			AssetID:      input.AssetID,
			RequestedBy:  actor.ID,
			Status:       status,
			Type:         strings.TrimSpace(input.Type),
			Description:  strings.TrimSpace(input.Description),
			BeforePhotos: append([]string(nil), input.BeforePhotos...),
			RequestedAt:  now,
		}
		if input.TechnicianID != nil {
			if err := requireActiveUser(ctx, repos, "technician", *input.TechnicianID); err != nil {
				return err
			}
			tech := *input.TechnicianID
			ticket.TechnicianID = &tech
		}
		if err := repos.Tickets.Create(ctx, ticket); err != nil {
			return storeErr(err)
		}

		evs, err := s.recordTransition(ctx, repos, actor, ticket, statusChange{to: status, note: input.Note})
		if err != nil {
			return err
		}
		created := s.event(events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			AssetID:      ticket.AssetID,
			Status:       ticket.Status,
			Type:         ticket.Type,
		})
		pending = append([]events.Event{created}, evs...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return ticket, nil
}

// SendTicket submits a draft. Only the requester may send.
func (s *TicketService) SendTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return s.mutate(ctx, actor, ticketID, auth.OpSend, func(ctx context.Context, tx *ticketTx) error {
		if err := tx.requireStatus(domain.TicketStatusSent, domain.TicketStatusDraft); err != nil {
			return err
		}
		tx.moveTo(domain.TicketStatusSent, "")
		return nil
	})
}

// AcceptTicket assigns a technician to a sent request.
func (s *TicketService) AcceptTicket(ctx context.Context, actor domain.Actor, ticketID string, input AcceptTicketInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, ticketID, auth.OpAccept, func(ctx context.Context, tx *ticketTx) error {
		if err := tx.requireStatus(domain.TicketStatusAccepted, domain.TicketStatusSent); err != nil {
			return err
		}
		if err := requireActiveUser(ctx, tx.repos, "technician", input.TechnicianID); err != nil {
			return err
		}
		now := s.now()
		tech := input.TechnicianID
		processedBy := tx.actor.ID
		tx.ticket.TechnicianID = &tech
		tx.ticket.ProcessedBy = &processedBy
		tx.ticket.ProcessedAt = &now
		if input.Type != nil && strings.TrimSpace(*input.Type) != "" {
			tx.ticket.Type = strings.TrimSpace(*input.Type)
		}
		tx.moveTo(domain.TicketStatusAccepted, input.Note)
		return nil
	})
}

// StartTicket moves a ticket into progress. Starting a ticket that is
// already in progress is a no-op.
func (s *TicketService) StartTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return s.mutate(ctx, actor, ticketID, auth.OpStart, func(ctx context.Context, tx *ticketTx) error {
		if tx.ticket.Status == domain.TicketStatusInProgress {
			tx.noop = true
			return nil
		}
		if err := tx.requireStatus(domain.TicketStatusInProgress,
			domain.TicketStatusAccepted, domain.TicketStatusPending, domain.TicketStatusDraft, domain.TicketStatusSent); err != nil {
			return err
		}
		tx.moveTo(domain.TicketStatusInProgress, "")
		return nil
	})
}

// EscalateTicket hands a ticket to another department and releases the technician.
func (s *TicketService) EscalateTicket(ctx context.Context, actor domain.Actor, ticketID string, input EscalateTicketInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, ticketID, auth.OpEscalate, func(ctx context.Context, tx *ticketTx) error {
		if tx.ticket.Status.Terminal() {
			return apperrors.NewInvalidTransition(string(tx.ticket.Status), string(domain.TicketStatusEscalated))
		}
		dept, err := tx.repos.Departments.GetByID(ctx, input.DepartmentID)
		if err != nil {
			return notFound("department", input.DepartmentID, err)
		}
		if !dept.IsActive {
			return apperrors.NewValidationError("department inactive", map[string]any{"department_id": dept.ID})
		}
		deptID := dept.ID
		tx.ticket.AssignedDepartmentID = &deptID
		tx.ticket.TechnicianID = nil
		tx.moveTo(domain.TicketStatusEscalated, input.Note)
		return nil
	})
}

// UpdateStatus applies a generic transition. Requesting the current status
// is a no-op and appends nothing.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Actor, ticketID string, input UpdateStatusInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, ticketID, auth.OpUpdateStatus, func(ctx context.Context, tx *ticketTx) error {
		if tx.ticket.Status == input.Status {
			tx.noop = true
			return nil
		}
		return s.applyGenericStatus(tx, input.Status, input.Note)
	})
}

func (s *TicketService) applyGenericStatus(tx *ticketTx, next domain.TicketStatus, note string) error {
	if !domain.CanTransition(tx.ticket.Status, next) {
		return apperrors.NewInvalidTransition(string(tx.ticket.Status), string(next))
	}
	target := tx.target
	target.NextStatus = next
	if !auth.CanPerform(tx.actor, tx.op, target) {
		return apperrors.NewForbidden("not allowed to move this ticket to " + string(next))
	}
	trimmed := strings.TrimSpace(note)
	switch next {
	case domain.TicketStatusPending:
		if trimmed != "" {
			tx.ticket.PendingNote = &trimmed
		}
	case domain.TicketStatusRejected:
		tx.ticket.RejectionReason = &trimmed
	}
	tx.moveTo(next, note)
	return nil
}

// RejectTicket declines a pending request.
func (s *TicketService) RejectTicket(ctx context.Context, actor domain.Actor, ticketID string, input RejectTicketInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, ticketID, auth.OpReject, func(ctx context.Context, tx *ticketTx) error {
		if err := tx.requireStatus(domain.TicketStatusRejected, domain.TicketStatusPending); err != nil {
			return err
		}
		now := s.now()
		reason := strings.TrimSpace(input.Reason)
		processedBy := tx.actor.ID
		tx.ticket.RejectionReason = &reason
		tx.ticket.ProcessedBy = &processedBy
		tx.ticket.ProcessedAt = &now
		tx.moveTo(domain.TicketStatusRejected, reason)
		return nil
	})
}

// CompleteTicket finishes work in progress and records it on the asset.
func (s *TicketService) CompleteTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return s.mutate(ctx, actor, ticketID, auth.OpComplete, func(ctx context.Context, tx *ticketTx) error {
		if err := tx.requireStatus(domain.TicketStatusDone, domain.TicketStatusInProgress); err != nil {
			return err
		}
		tx.moveTo(domain.TicketStatusDone, "")
		return nil
	})
}

// CancelTicket withdraws a draft or pending request. Only the requester may cancel.
func (s *TicketService) CancelTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	return s.mutate(ctx, actor, ticketID, auth.OpCancel, func(ctx context.Context, tx *ticketTx) error {
		if err := tx.requireStatus(domain.TicketStatusCancelled, domain.TicketStatusDraft, domain.TicketStatusPending); err != nil {
			return err
		}
		tx.moveTo(domain.TicketStatusCancelled, "")
		return nil
	})
}

// UpdateWork records photos, consumed supplies, notes and an optional status
// change. Any failing supply line aborts the whole update.
func (s *TicketService) UpdateWork(ctx context.Context, actor domain.Actor, ticketID string, input UpdateWorkInput) (*domain.Ticket, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, actor, ticketID, auth.OpUpdateWork, func(ctx context.Context, tx *ticketTx) error {
		ticket := tx.ticket
		if len(input.Supplies) > 0 && ticket.Status.Terminal() {
			return apperrors.NewConflict("supplies cannot change on a finished ticket", map[string]any{"status": ticket.Status})
		}

		ticket.BeforePhotos = append(ticket.BeforePhotos, input.BeforePhotos...)
		ticket.AfterPhotos = append(ticket.AfterPhotos, input.AfterPhotos...)

		for _, req := range input.Supplies {
			snap, err := s.ledger.Consume(ctx, tx.repos.Supplies, req.SupplyID, req.Quantity)
			if err != nil {
				return err
			}
			line := domain.SupplyLine{
				TicketID: ticket.ID,
				SupplyID: snap.SupplyID,
				Name:     snap.Name,
				Quantity: req.Quantity,
				UnitCost: snap.UnitCost,
				AddedBy:  tx.actor.ID,
			}
			if err := tx.repos.Tickets.AddSupplyLine(ctx, &line); err != nil {
				return storeErr(err)
			}
			ticket.SuppliesUsed = append(ticket.SuppliesUsed, line)
			ticket.Cost += line.LineCost()
		}
		if input.Cost != nil {
			ticket.Cost = *input.Cost
		}

		for _, content := range input.Notes {
			if strings.TrimSpace(content) == "" {
				continue
			}
			note := &domain.Note{TicketID: ticket.ID, Content: strings.TrimSpace(content), AddedBy: tx.actor.ID}
			if err := tx.repos.Notes.Create(ctx, note); err != nil {
				return storeErr(err)
			}
		}

		if input.Status != nil && *input.Status != ticket.Status {
			if err := s.applyGenericStatus(tx, *input.Status, input.StatusNote); err != nil {
				return err
			}
		}

		tx.work = &events.TicketWorkUpdatedPayload{
			SupplyLinesAdded: len(input.Supplies),
			PhotosAdded:      len(input.BeforePhotos) + len(input.AfterPhotos),
			Cost:             ticket.Cost,
		}
		return nil
	})
}

// RemoveSupply deletes a supply line from a ticket and returns the stock.
func (s *TicketService) RemoveSupply(ctx context.Context, actor domain.Actor, ticketID, lineID string) (*domain.Ticket, error) {
	return s.mutate(ctx, actor, ticketID, auth.OpUpdateWork, func(ctx context.Context, tx *ticketTx) error {
		ticket := tx.ticket
		if ticket.Status.Terminal() {
			return apperrors.NewConflict("supplies cannot change on a finished ticket", map[string]any{"status": ticket.Status})
		}
		line, err := tx.repos.Tickets.RemoveSupplyLine(ctx, ticket.ID, lineID)
		if err != nil {
			return notFound("supply line", lineID, err)
		}
		if err := s.ledger.Restore(ctx, tx.repos.Supplies, line.SupplyID, line.Quantity); err != nil {
			return err
		}
		s.ledger.ReduceCost(ticket, *line)
		kept := ticket.SuppliesUsed[:0]
		for _, l := range ticket.SuppliesUsed {
			if l.ID != line.ID {
				kept = append(kept, l)
			}
		}
		ticket.SuppliesUsed = kept
		tx.work = &events.TicketWorkUpdatedPayload{SupplyLinesRemoved: 1, Cost: ticket.Cost}
		return nil
	})
}

// DeleteTicket removes a ticket outright. It bypasses the state machine and
// writes no history; asset and assignment are left as they are.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error {
	if !auth.CanPerform(actor, auth.OpDeleteTicket, auth.Target{}) {
		return apperrors.NewForbidden("only admin or superuser may delete tickets")
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Tickets.Delete(ctx, ticketID); err != nil {
			return notFound("ticket", ticketID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.publish(ctx, []events.Event{s.event(events.EventTicketDeleted, ticketID, actor, nil)})
	return nil
}

// GetTicket returns a ticket with its notes and history.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	repos := s.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFound("ticket", ticketID, err)
	}
	if _, err := s.authorize(ctx, repos, actor, auth.OpView, ticket, ""); err != nil {
		return nil, err
	}
	if err := loadThread(ctx, repos, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

// loadThread fills in the notes and full history of ticket.
func loadThread(ctx context.Context, repos repository.Repositories, ticket *domain.Ticket) error {
	var err error
	if ticket.Notes, err = repos.Notes.ListByTicket(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	if ticket.History, err = repos.History.ListByTicket(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ListTickets returns the tickets visible to actor for the requested scope.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses: filter.Statuses,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	}
	switch filter.Scope {
	case ListMine:
		repoFilter.RequesterID = &actor.ID
	case ListAssigned:
		repoFilter.TechnicianID = &actor.ID
	case ListAll, "":
		if !applyListScope(&repoFilter, auth.ScopeFor(actor)) {
			return []domain.Ticket{}, nil
		}
	default:
		return nil, apperrors.NewValidationError("unknown scope", map[string]any{"scope": filter.Scope})
	}
	tickets, err := s.store.Repos().Tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// applyListScope narrows filter to scope and reports whether a query is needed at all.
func applyListScope(filter *repository.TicketFilter, scope auth.ListScope) bool {
	switch scope.Kind {
	case auth.ScopeGlobal:
		return true
	case auth.ScopeDepartment:
		dept := scope.DepartmentID
		filter.ScopeDepartmentID = &dept
		return true
	case auth.ScopeClaimed:
		claimed := true
		filter.HasTechnician = &claimed
		return true
	}
	return false
}

// mutate loads, authorizes, changes and persists one ticket in a transaction,
// then publishes the resulting events.
func (s *TicketService) mutate(ctx context.Context, actor domain.Actor, ticketID string, op auth.Operation, fn func(ctx context.Context, tx *ticketTx) error) (*domain.Ticket, error) {
	var (
		result  *domain.Ticket
		pending []events.Event
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetForUpdate(ctx, ticketID)
		if err != nil {
			return notFound("ticket", ticketID, err)
		}
		target, err := s.authorize(ctx, repos, actor, op, ticket, "")
		if err != nil {
			return err
		}

		previous := ticket.Status
		tx := &ticketTx{repos: repos, actor: actor, op: op, target: target, ticket: ticket}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		result = ticket
		if tx.noop {
			return nil
		}
		if err := repos.Tickets.Update(ctx, ticket, previous); err != nil {
			return storeErr(err)
		}
		if tx.change != nil {
			evs, err := s.recordTransition(ctx, repos, actor, ticket, *tx.change)
			if err != nil {
				return err
			}
			pending = append(pending, evs...)
		}
		if tx.work != nil {
			pending = append(pending, s.event(events.EventTicketWorkUpdated, ticket.ID, actor, *tx.work))
		}
		return loadThread(ctx, repos, ticket)
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, pending)
	return result, nil
}

// recordTransition appends the history entry and applies asset/assignment
// side-effects for a status change that has already been written.
func (s *TicketService) recordTransition(ctx context.Context, repos repository.Repositories, actor domain.Actor, ticket *domain.Ticket, change statusChange) ([]events.Event, error) {
	now := s.now()
	note := strings.TrimSpace(change.note)
	if note == "" {
		note = defaultHistoryNote(change.to)
	}
	entry := &domain.HistoryEntry{
		TicketID:  ticket.ID,
		Status:    change.to,
		ChangedBy: actor.ID,
		ChangedAt: now,
		Note:      note,
	}
	if err := repos.History.Create(ctx, entry); err != nil {
		return nil, storeErr(err)
	}
	ticket.History = append(ticket.History, *entry)

	statusEvent := s.event(events.EventTicketStatusChanged, ticket.ID, actor, events.TicketStatusChangedPayload{
		OldStatus: change.from,
		NewStatus: change.to,
		Note:      note,
	})
	// Once a ticket has finished, the asset may already belong to a newer ticket.
	if change.from.Terminal() && change.to.Terminal() {
		return []events.Event{statusEvent}, nil
	}

	synced, err := s.sync.Apply(ctx, repos, ticket.AssetID, change.to)
	if err != nil {
		return nil, err
	}

	if change.to == domain.TicketStatusDone {
		record := &domain.MaintenanceRecord{
			AssetID:      ticket.AssetID,
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketNumber,
			Description:  ticket.Description,
			CompletedBy:  actor.ID,
			Cost:         ticket.Cost,
			CompletedAt:  now,
		}
		if err := repos.Assets.AppendMaintenanceRecord(ctx, record); err != nil {
			return nil, notFound("asset", ticket.AssetID, err)
		}
	}

	return []events.Event{
		statusEvent,
		s.event(events.EventAssetSynced, ticket.ID, actor, events.AssetSyncedPayload{
			AssetID:           synced.AssetID,
			AssetStatus:       synced.AssetStatus,
			AssignmentStatus:  synced.AssignmentStatus,
			AssignmentID:      synced.AssignmentID,
			AssignmentUpdated: synced.AssignmentUpdated,
		}),
	}, nil
}

// authorize resolves the department facts for ticket and applies the policy.
// The resolved target is returned for follow-up checks in the same operation.
func (s *TicketService) authorize(ctx context.Context, repos repository.Repositories, actor domain.Actor, op auth.Operation, ticket *domain.Ticket, noteAuthor string) (auth.Target, error) {
	target := auth.Target{Ticket: ticket, NoteAuthorID: noteAuthor}
	if actor.IsManager() && actor.HasDepartment() {
		requester, err := repos.Users.GetByID(ctx, ticket.RequestedBy)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return target, apperrors.MapError(err)
		}
		if requester != nil {
			target.RequesterDepartmentID = requester.DepartmentID
		}
		asset, err := repos.Assets.GetByID(ctx, ticket.AssetID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return target, apperrors.MapError(err)
		}
		if asset != nil {
			target.AssetDepartmentID = asset.DepartmentID
		}
	}
	if !auth.CanPerform(actor, op, target) {
		return target, apperrors.NewForbidden("not allowed to " + strings.ReplaceAll(string(op), "_", " ") + " this ticket")
	}
	return target, nil
}

func (s *TicketService) event(eventType events.EventType, ticketID string, actor domain.Actor, payload interface{}) events.Event {
	return events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticketID,
		Actor:     events.Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: s.now(),
		Payload:   payload,
	}
}

func (s *TicketService) publish(ctx context.Context, pending []events.Event) {
	if s.dispatcher == nil {
		return
	}
	for _, event := range pending {
		if err := s.dispatcher.Publish(ctx, event); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("ticket_id", event.TicketID),
				zap.Error(err))
		}
	}
}

func requireActiveUser(ctx context.Context, repos repository.Repositories, resource, userID string) error {
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return notFound(resource, userID, err)
	}
	if !user.Active {
		return apperrors.NewValidationError(resource+" inactive", map[string]any{"user_id": userID})
	}
	return nil
}

func notFound(resource, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.MapError(err)
}

func storeErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrStaleTicket):
		return apperrors.NewConflict("ticket was modified concurrently", nil)
	case errors.Is(err, repository.ErrOpenTicketExists):
		return apperrors.NewConflict("asset already has an open ticket", nil)
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("resource", nil)
	}
	return apperrors.MapError(err)
}

func generateTicketNumber(now time.Time) string {
	return "MT-" + now.Format("20060102") + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

var defaultHistoryNotes = map[domain.TicketStatus]string{
	domain.TicketStatusDraft:           "Maintenance request created",
	domain.TicketStatusSent:            "Request sent for approval",
	domain.TicketStatusAccepted:        "Request accepted and technician assigned",
	domain.TicketStatusEscalated:       "Ticket escalated to another department",
	domain.TicketStatusPending:         "Ticket put on hold",
	domain.TicketStatusInProgress:      "Work started",
	domain.TicketStatusExternalService: "Sent to external service",
	domain.TicketStatusDone:            "Maintenance completed",
	domain.TicketStatusClosed:          "Ticket closed",
	domain.TicketStatusRejected:        "Request rejected",
	domain.TicketStatusCancelled:       "Request cancelled",
}

func defaultHistoryNote(status domain.TicketStatus) string {
	if note, ok := defaultHistoryNotes[status]; ok {
		return note
	}
	return "Status changed to " + string(status)
}
