package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-maintenance/internal/api/dto"
	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/service"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// TicketsHandler exposes the maintenance workflow.
type TicketsHandler struct {
	service  *service.TicketService
	counters *service.CounterService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, counters *service.CounterService) *TicketsHandler {
	return &TicketsHandler{service: ticketService, counters: counters}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), actor, service.CreateTicketInput{
		AssetID:      req.AssetID,
		Type:         req.Type,
		Description:  req.Description,
		BeforePhotos: req.BeforePhotos,
		Status:       req.Status,
		TechnicianID: req.TechnicianID,
		Note:         req.Note,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// ListTickets GET /tickets?scope=all|mine|assigned&status=a,b&page=&page_size=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SendTicket POST /tickets/:id/send.
func (h *TicketsHandler) SendTicket(c *fiber.Ctx) error {
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.SendTicket(c.UserContext(), actor, id)
	})
}

// AcceptTicket POST /tickets/:id/accept.
func (h *TicketsHandler) AcceptTicket(c *fiber.Ctx) error {
	var req dto.AcceptTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.AcceptTicket(c.UserContext(), actor, id, service.AcceptTicketInput{
			TechnicianID: req.TechnicianID,
			Type:         req.Type,
			Note:         req.Note,
		})
	})
}

// StartTicket POST /tickets/:id/start.
func (h *TicketsHandler) StartTicket(c *fiber.Ctx) error {
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.StartTicket(c.UserContext(), actor, id)
	})
}

// EscalateTicket POST /tickets/:id/escalate.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	var req dto.EscalateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.EscalateTicket(c.UserContext(), actor, id, service.EscalateTicketInput{
			DepartmentID: req.DepartmentID,
			Note:         req.Note,
		})
	})
}

// UpdateStatus POST /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.UpdateStatus(c.UserContext(), actor, id, service.UpdateStatusInput{Status: req.Status, Note: req.Note})
	})
}

// RejectTicket POST /tickets/:id/reject.
func (h *TicketsHandler) RejectTicket(c *fiber.Ctx) error {
	var req dto.RejectTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.RejectTicket(c.UserContext(), actor, id, service.RejectTicketInput{Reason: req.Reason})
	})
}

// CompleteTicket POST /tickets/:id/complete.
func (h *TicketsHandler) CompleteTicket(c *fiber.Ctx) error {
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.CompleteTicket(c.UserContext(), actor, id)
	})
}

// CancelTicket POST /tickets/:id/cancel.
func (h *TicketsHandler) CancelTicket(c *fiber.Ctx) error {
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.CancelTicket(c.UserContext(), actor, id)
	})
}

// UpdateWork PATCH /tickets/:id/work.
func (h *TicketsHandler) UpdateWork(c *fiber.Ctx) error {
	var req dto.UpdateWorkRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	supplies := make([]service.SupplyLineInput, 0, len(req.Supplies))
	for _, s := range req.Supplies {
		supplies = append(supplies, service.SupplyLineInput{SupplyID: s.SupplyID, Quantity: s.Quantity})
	}
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.UpdateWork(c.UserContext(), actor, id, service.UpdateWorkInput{
			BeforePhotos: req.BeforePhotos,
			AfterPhotos:  req.AfterPhotos,
			Supplies:     supplies,
			Status:       req.Status,
			StatusNote:   req.StatusNote,
			Notes:        req.Notes,
			Cost:         req.Cost,
		})
	})
}

// RemoveSupply DELETE /tickets/:id/supplies/:lineId.
func (h *TicketsHandler) RemoveSupply(c *fiber.Ctx) error {
	return h.transition(c, func(actor domain.Actor, id string) (*domain.Ticket, error) {
		return h.service.RemoveSupply(c.UserContext(), actor, id, c.Params("lineId"))
	})
}

// AddNote POST /tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.service.AddNote(c.UserContext(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": noteResponse(note)})
}

// UpdateNote PATCH /tickets/:id/notes/:noteId.
func (h *TicketsHandler) UpdateNote(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	note, err := h.service.UpdateNote(c.UserContext(), actor, c.Params("id"), c.Params("noteId"), req.Content)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": noteResponse(note)})
}

// DeleteNote DELETE /tickets/:id/notes/:noteId.
func (h *TicketsHandler) DeleteNote(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteNote(c.UserContext(), actor, c.Params("id"), c.Params("noteId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Counters GET /tickets/counters.
func (h *TicketsHandler) Counters(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	counters, err := h.counters.Counters(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": counters})
}

func (h *TicketsHandler) transition(c *fiber.Ctx, fn func(actor domain.Actor, id string) (*domain.Ticket, error)) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	ticket, err := fn(actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

func actorFrom(c *fiber.Ctx) (domain.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return domain.Actor{}, apperrors.NewUnauthorized("user required")
	}
	return principal.Actor, nil
}

// maxListPage bounds the page number so the offset cannot overflow.
const maxListPage = 10000

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{Scope: service.ListScopeName(c.Query("scope", string(service.ListAll)))}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.TicketStatus(part))
			}
		}
	}
	page := parseInt(c.Query("page"), 1)
	if page > maxListPage {
		page = maxListPage
	}
	pageSize := parseInt(c.Query("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                   ticket.ID,
		TicketNumber:         ticket.TicketNumber,
		AssetID:              ticket.AssetID,
		RequestedBy:          ticket.RequestedBy,
		TechnicianID:         ticket.TechnicianID,
		AssignedDepartmentID: ticket.AssignedDepartmentID,
		Status:               ticket.Status,
		Type:                 ticket.Type,
		Cost:                 ticket.Cost,
		RequestedAt:          ticket.RequestedAt,
		UpdatedAt:            ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	supplies := make([]dto.SupplyLineResponse, 0, len(ticket.SuppliesUsed))
	for _, l := range ticket.SuppliesUsed {
		supplies = append(supplies, dto.SupplyLineResponse{
			ID:       l.ID,
			SupplyID: l.SupplyID,
			Name:     l.Name,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
			AddedBy:  l.AddedBy,
			AddedAt:  l.AddedAt,
		})
	}
	notes := make([]dto.NoteResponse, 0, len(ticket.Notes))
	for i := range ticket.Notes {
		notes = append(notes, noteResponse(&ticket.Notes[i]))
	}
	history := make([]dto.HistoryEntryResponse, 0, len(ticket.History))
	for _, h := range ticket.History {
		history = append(history, dto.HistoryEntryResponse{
			Status:    h.Status,
			ChangedBy: h.ChangedBy,
			ChangedAt: h.ChangedAt,
			Note:      h.Note,
		})
	}
	return dto.TicketDetailResponse{
		TicketSummary:   ticketSummary(ticket),
		ProcessedBy:     ticket.ProcessedBy,
		ProcessedAt:     ticket.ProcessedAt,
		Description:     ticket.Description,
		BeforePhotos:    nonNilStrings(ticket.BeforePhotos),
		AfterPhotos:     nonNilStrings(ticket.AfterPhotos),
		SuppliesUsed:    supplies,
		RejectionReason: ticket.RejectionReason,
		PendingNote:     ticket.PendingNote,
		Notes:           notes,
		History:         history,
	}
}

func noteResponse(note *domain.Note) dto.NoteResponse {
	return dto.NoteResponse{
		ID:        note.ID,
		Content:   note.Content,
		AddedBy:   note.AddedBy,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
