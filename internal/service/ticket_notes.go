package service

import (
	"context"
	"strings"

	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

// AddNote attaches commentary to a ticket. Notes never touch status or history.
func (s *TicketService) AddNote(ctx context.Context, actor domain.Actor, ticketID, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("note content required", nil)
	}
	var note *domain.Note
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return notFound("ticket", ticketID, err)
		}
		if _, err := s.authorize(ctx, repos, actor, auth.OpAddNote, ticket, ""); err != nil {
			return err
		}
		note = &domain.Note{TicketID: ticket.ID, Content: content, AddedBy: actor.ID}
		return storeErr(repos.Notes.Create(ctx, note))
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// UpdateNote rewrites a note. Only its author or a privileged user may edit it.
func (s *TicketService) UpdateNote(ctx context.Context, actor domain.Actor, ticketID, noteID, content string) (*domain.Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("note content required", nil)
	}
	var note *domain.Note
	err := s.withNote(ctx, actor, ticketID, noteID, auth.OpEditNote, func(ctx context.Context, repos repository.Repositories, n *domain.Note) error {
		now := s.now()
		n.Content = content
		n.UpdatedAt = &now
		if err := repos.Notes.Update(ctx, n); err != nil {
			return notFound("note", noteID, err)
		}
		note = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

// DeleteNote removes a note. Only its author or a privileged user may delete it.
func (s *TicketService) DeleteNote(ctx context.Context, actor domain.Actor, ticketID, noteID string) error {
	return s.withNote(ctx, actor, ticketID, noteID, auth.OpDeleteNote, func(ctx context.Context, repos repository.Repositories, _ *domain.Note) error {
		if err := repos.Notes.Delete(ctx, ticketID, noteID); err != nil {
			return notFound("note", noteID, err)
		}
		return nil
	})
}

func (s *TicketService) withNote(ctx context.Context, actor domain.Actor, ticketID, noteID string, op auth.Operation, fn func(context.Context, repository.Repositories, *domain.Note) error) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.Tickets.GetByID(ctx, ticketID)
		if err != nil {
			return notFound("ticket", ticketID, err)
		}
		note, err := repos.Notes.GetByID(ctx, ticket.ID, noteID)
		if err != nil {
			return notFound("note", noteID, err)
		}
		if _, err := s.authorize(ctx, repos, actor, op, ticket, note.AddedBy); err != nil {
			return err
		}
		return fn(ctx, repos, note)
	})
}
