package repository

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// TicketNoteRepository manages ticket commentary.
type TicketNoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, ticketID, noteID string) error
	GetByID(ctx context.Context, ticketID, noteID string) (*domain.Note, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Note, error)
}

type ticketNoteRepository struct {
	db DBTX
}

// NewTicketNoteRepository builds repository.
func NewTicketNoteRepository(db DBTX) TicketNoteRepository {
	return &ticketNoteRepository{db: db}
}

func (r *ticketNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	const query = `
        INSERT INTO maintenance_ticket_notes (ticket_id, content, added_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return translateErr(r.db.QueryRow(ctx, query,
		note.TicketID,
		note.Content,
		note.AddedBy,
	).Scan(&note.ID, &note.CreatedAt))
}

func (r *ticketNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	const query = `
        UPDATE maintenance_ticket_notes SET content=$1, updated_at=NOW()
        WHERE ticket_id=$2 AND id=$3
        RETURNING updated_at`
	return translateErr(r.db.QueryRow(ctx, query, note.Content, note.TicketID, note.ID).Scan(&note.UpdatedAt))
}

func (r *ticketNoteRepository) Delete(ctx context.Context, ticketID, noteID string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM maintenance_ticket_notes WHERE ticket_id=$1 AND id=$2`, ticketID, noteID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketNoteRepository) GetByID(ctx context.Context, ticketID, noteID string) (*domain.Note, error) {
	const query = `
        SELECT id, ticket_id, content, added_by, created_at, updated_at
        FROM maintenance_ticket_notes WHERE ticket_id=$1 AND id=$2`
	var note domain.Note
	if err := r.db.QueryRow(ctx, query, ticketID, noteID).Scan(
		&note.ID,
		&note.TicketID,
		&note.Content,
		&note.AddedBy,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &note, nil
}

func (r *ticketNoteRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Note, error) {
	const query = `
        SELECT id, ticket_id, content, added_by, created_at, updated_at
        FROM maintenance_ticket_notes WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Note
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(
			&note.ID,
			&note.TicketID,
			&note.Content,
			&note.AddedBy,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
