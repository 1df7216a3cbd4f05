package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/asset-maintenance/internal/config"
	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/events"
	"github.com/spec-kit/asset-maintenance/internal/repository"
)

// NotificationService resolves who should hear about a ticket event and
// hands the message to the configured channels.
type NotificationService struct {
	dispatcher events.Dispatcher
	store      repository.Store
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, store repository.Store, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	recipients, err := n.Recipients(ctx, event.TicketID, payload.NewStatus)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.String("status", string(payload.NewStatus)),
		zap.Strings("recipients", recipients))
	n.sendEmailNotificationStub(ctx, event, recipients)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// Recipients lists the users to notify when a ticket enters status: the
// owning department for new and escalated work, the technician when work is
// assigned, and the requester when a decision is made.
func (n *NotificationService) Recipients(ctx context.Context, ticketID string, status domain.TicketStatus) ([]string, error) {
	repos := n.store.Repos()
	ticket, err := repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	var ids []string
	switch status {
	case domain.TicketStatusSent:
		requester, err := repos.Users.GetByID(ctx, ticket.RequestedBy)
		if err != nil || requester.DepartmentID == nil {
			return nil, nil
		}
		if ids, err = repos.Users.ListIDsByDepartment(ctx, *requester.DepartmentID); err != nil {
			return nil, err
		}
	case domain.TicketStatusEscalated:
		if ticket.AssignedDepartmentID == nil {
			return nil, nil
		}
		if ids, err = repos.Users.ListIDsByDepartment(ctx, *ticket.AssignedDepartmentID); err != nil {
			return nil, err
		}
	case domain.TicketStatusAccepted:
		if ticket.TechnicianID != nil {
			ids = []string{*ticket.TechnicianID}
		}
	case domain.TicketStatusRejected, domain.TicketStatusDone, domain.TicketStatusPending:
		ids = []string{ticket.RequestedBy}
	}
	return ids, nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, recipients []string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.Strings("to", recipients),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
}
