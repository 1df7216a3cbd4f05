package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// TicketFilter captures listing and counting parameters.
type TicketFilter struct {
	RequesterID   *string
	TechnicianID  *string
	AssetID       *string
	HasTechnician *bool
	// ScopeDepartmentID restricts to tickets whose requester or asset belongs
	// to the department, or which were escalated to it.
	ScopeDepartmentID *string
	Statuses          []domain.TicketStatus
	Limit             int
	Offset            int
}

// TicketRepository encapsulates ticket persistence, including supply lines.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	// Update writes the mutable columns only if the stored status still equals expected.
	Update(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	// GetForUpdate reads the ticket and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error)
	FindOpenByAsset(ctx context.Context, assetID string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	CountByStatus(ctx context.Context, filter TicketFilter) (map[domain.TicketStatus]int, error)
	Delete(ctx context.Context, id string) error
	AddSupplyLine(ctx context.Context, line *domain.SupplyLine) error
	RemoveSupplyLine(ctx context.Context, ticketID, lineID string) (*domain.SupplyLine, error)
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

const ticketColumns = `id, ticket_number, asset_id, requested_by, technician_id, processed_by, assigned_department_id,
               status, type, description, cost, before_photos, after_photos, rejection_reason, pending_note,
               requested_at, processed_at, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO maintenance_tickets (ticket_number, asset_id, requested_by, technician_id, processed_by,
            assigned_department_id, status, type, description, cost, before_photos, after_photos,
            rejection_reason, pending_note, requested_at, processed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.AssetID,
		ticket.RequestedBy,
		ticket.TechnicianID,
		ticket.ProcessedBy,
		ticket.AssignedDepartmentID,
		ticket.Status,
		ticket.Type,
		ticket.Description,
		ticket.Cost,
		nonNil(ticket.BeforePhotos),
		nonNil(ticket.AfterPhotos),
		ticket.RejectionReason,
		ticket.PendingNote,
		ticket.RequestedAt,
		ticket.ProcessedAt,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return translateErr(err)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	const query = `
        UPDATE maintenance_tickets SET technician_id=$1, processed_by=$2, assigned_department_id=$3, status=$4,
            type=$5, description=$6, cost=$7, before_photos=$8, after_photos=$9, rejection_reason=$10,
            pending_note=$11, processed_at=$12, updated_at=NOW()
        WHERE id=$13 AND status=$14
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.TechnicianID,
		ticket.ProcessedBy,
		ticket.AssignedDepartmentID,
		ticket.Status,
		ticket.Type,
		ticket.Description,
		ticket.Cost,
		nonNil(ticket.BeforePhotos),
		nonNil(ticket.AfterPhotos),
		ticket.RejectionReason,
		ticket.PendingNote,
		ticket.ProcessedAt,
		ticket.ID,
		expected,
	).Scan(&ticket.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrStaleTicket
		}
		return translateErr(err)
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.get(ctx, `SELECT `+ticketColumns+` FROM maintenance_tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.get(ctx, `SELECT `+ticketColumns+` FROM maintenance_tickets WHERE id=$1 FOR UPDATE`, id)
}

func (r *ticketRepository) get(ctx context.Context, query, id string) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateErr(err)
	}
	lines, err := r.supplyLines(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.SuppliesUsed = lines
	return ticket, nil
}

func (r *ticketRepository) FindOpenByAsset(ctx context.Context, assetID string) (*domain.Ticket, error) {
	open := domain.OpenTicketStatuses()
	filter := TicketFilter{AssetID: &assetID, Statuses: open, Limit: 1}
	tickets, err := r.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNotFound
	}
	return &tickets[0], nil
}

func (r *ticketRepository) supplyLines(ctx context.Context, ticketID string) ([]domain.SupplyLine, error) {
	const query = `
        SELECT id, ticket_id, supply_id, name, quantity, unit_cost, added_by, added_at
        FROM maintenance_ticket_supplies WHERE ticket_id=$1 ORDER BY added_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SupplyLine
	for rows.Next() {
		var line domain.SupplyLine
		if err := rows.Scan(
			&line.ID,
			&line.TicketID,
			&line.SupplyID,
			&line.Name,
			&line.Quantity,
			&line.UnitCost,
			&line.AddedBy,
			&line.AddedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, line)
	}
	return result, rows.Err()
}

func (r *ticketRepository) AddSupplyLine(ctx context.Context, line *domain.SupplyLine) error {
	const query = `
        INSERT INTO maintenance_ticket_supplies (ticket_id, supply_id, name, quantity, unit_cost, added_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, added_at`
	return translateErr(r.db.QueryRow(ctx, query,
		line.TicketID,
		line.SupplyID,
		line.Name,
		line.Quantity,
		line.UnitCost,
		line.AddedBy,
	).Scan(&line.ID, &line.AddedAt))
}

func (r *ticketRepository) RemoveSupplyLine(ctx context.Context, ticketID, lineID string) (*domain.SupplyLine, error) {
	const query = `
        DELETE FROM maintenance_ticket_supplies WHERE ticket_id=$1 AND id=$2
        RETURNING id, ticket_id, supply_id, name, quantity, unit_cost, added_by, added_at`
	var line domain.SupplyLine
	if err := r.db.QueryRow(ctx, query, ticketID, lineID).Scan(
		&line.ID,
		&line.TicketID,
		&line.SupplyID,
		&line.Name,
		&line.Quantity,
		&line.UnitCost,
		&line.AddedBy,
		&line.AddedAt,
	); err != nil {
		return nil, translateErr(err)
	}
	return &line, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM maintenance_tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	where, args := buildTicketWhere(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM maintenance_tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, where, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) CountByStatus(ctx context.Context, filter TicketFilter) (map[domain.TicketStatus]int, error) {
	where, args := buildTicketWhere(filter)
	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM maintenance_tickets WHERE %s GROUP BY status`, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int)
	for rows.Next() {
		var (
			status domain.TicketStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func buildTicketWhere(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requested_by=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.AssetID != nil {
		args = append(args, *filter.AssetID)
		clauses = append(clauses, fmt.Sprintf("asset_id=$%d", len(args)))
	}
	if filter.HasTechnician != nil {
		if *filter.HasTechnician {
			clauses = append(clauses, "technician_id IS NOT NULL")
		} else {
			clauses = append(clauses, "technician_id IS NULL")
		}
	}
	if filter.ScopeDepartmentID != nil {
		args = append(args, *filter.ScopeDepartmentID)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(requested_by IN (SELECT id FROM users WHERE department_id=%s) OR assigned_department_id=%s OR asset_id IN (SELECT id FROM assets WHERE department_id=%s))",
			p, p, p))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.AssetID,
		&ticket.RequestedBy,
		&ticket.TechnicianID,
		&ticket.ProcessedBy,
		&ticket.AssignedDepartmentID,
		&ticket.Status,
		&ticket.Type,
		&ticket.Description,
		&ticket.Cost,
		&ticket.BeforePhotos,
		&ticket.AfterPhotos,
		&ticket.RejectionReason,
		&ticket.PendingNote,
		&ticket.RequestedAt,
		&ticket.ProcessedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
