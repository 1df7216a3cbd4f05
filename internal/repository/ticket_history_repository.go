package repository

import (
	"context"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// TicketHistoryRepository stores audit entries. Entries are never updated or deleted.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error)
}

type ticketHistoryRepository struct {
	db DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO maintenance_ticket_history (ticket_id, status, changed_by, changed_at, note)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id`
	return translateErr(r.db.QueryRow(ctx, query,
		entry.TicketID,
		entry.Status,
		entry.ChangedBy,
		entry.ChangedAt,
		entry.Note,
	).Scan(&entry.ID))
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, status, changed_by, changed_at, note
        FROM maintenance_ticket_history WHERE ticket_id=$1 ORDER BY changed_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Status,
			&entry.ChangedBy,
			&entry.ChangedAt,
			&entry.Note,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
