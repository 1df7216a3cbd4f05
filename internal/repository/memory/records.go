package memory

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
)

type historyRepo struct {
	h *handle
}

func (r *historyRepo) Create(_ context.Context, entry *domain.HistoryEntry) error {
	return r.h.write(func(st *state) error {
		entry.ID = newID()
		st.history[entry.TicketID] = append(st.history[entry.TicketID], *entry)
		return nil
	})
}

func (r *historyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := r.h.read(func(st *state) error {
		out = append(out, st.history[ticketID]...)
		return nil
	})
	return out, err
}

type noteRepo struct {
	h *handle
}

func (r *noteRepo) Create(_ context.Context, note *domain.Note) error {
	return r.h.write(func(st *state) error {
		note.ID = newID()
		note.CreatedAt = r.h.now()
		st.notes[note.TicketID] = append(st.notes[note.TicketID], *note)
		return nil
	})
}

func (r *noteRepo) Update(_ context.Context, note *domain.Note) error {
	return r.h.write(func(st *state) error {
		notes := st.notes[note.TicketID]
		for i := range notes {
			if notes[i].ID == note.ID {
				now := r.h.now()
				notes[i].Content = note.Content
				notes[i].UpdatedAt = &now
				note.UpdatedAt = &now
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

func (r *noteRepo) Delete(_ context.Context, ticketID, noteID string) error {
	return r.h.write(func(st *state) error {
		notes := st.notes[ticketID]
		for i := range notes {
			if notes[i].ID == noteID {
				st.notes[ticketID] = append(notes[:i:i], notes[i+1:]...)
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

func (r *noteRepo) GetByID(_ context.Context, ticketID, noteID string) (*domain.Note, error) {
	var out *domain.Note
	err := r.h.read(func(st *state) error {
		for _, n := range st.notes[ticketID] {
			if n.ID == noteID {
				note := n
				out = &note
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r *noteRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Note, error) {
	var out []domain.Note
	err := r.h.read(func(st *state) error {
		out = append(out, st.notes[ticketID]...)
		return nil
	})
	return out, err
}
