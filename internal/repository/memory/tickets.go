package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
)

type ticketRepo struct {
	h *handle
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	return r.h.write(func(st *state) error {
		if !ticket.Status.Terminal() && openTicketFor(st, ticket.AssetID, "") != nil {
			return repository.ErrOpenTicketExists
		}
		now := r.h.now()
		ticket.ID = newID()
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		stored := ticket.Clone()
		stored.SuppliesUsed = nil
		stored.Notes = nil
		stored.History = nil
		st.tickets[ticket.ID] = stored
		return nil
	})
}

func (r *ticketRepo) Update(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	return r.h.write(func(st *state) error {
		stored, ok := st.tickets[ticket.ID]
		if !ok || stored.Status != expected {
			return repository.ErrStaleTicket
		}
		if !ticket.Status.Terminal() && openTicketFor(st, ticket.AssetID, ticket.ID) != nil {
			return repository.ErrOpenTicketExists
		}
		ticket.UpdatedAt = r.h.now()
		next := ticket.Clone()
		next.TicketNumber = stored.TicketNumber
		next.AssetID = stored.AssetID
		next.RequestedBy = stored.RequestedBy
		next.RequestedAt = stored.RequestedAt
		next.CreatedAt = stored.CreatedAt
		next.SuppliesUsed = nil
		next.Notes = nil
		next.History = nil
		st.tickets[ticket.ID] = next
		return nil
	})
}

func (r *ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := r.h.read(func(st *state) error {
		stored, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = stored.Clone()
		out.SuppliesUsed = append([]domain.SupplyLine(nil), st.lines[id]...)
		return nil
	})
	return out, err
}

// GetForUpdate needs no lock of its own: transactions already run one at a time.
func (r *ticketRepo) GetForUpdate(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepo) FindOpenByAsset(_ context.Context, assetID string) (*domain.Ticket, error) {
	var out *domain.Ticket
	err := r.h.read(func(st *state) error {
		open := openTicketFor(st, assetID, "")
		if open == nil {
			return repository.ErrNotFound
		}
		out = open.Clone()
		return nil
	})
	return out, err
}

func openTicketFor(st *state, assetID, exceptID string) *domain.Ticket {
	for id, t := range st.tickets {
		if id == exceptID || t.AssetID != assetID {
			continue
		}
		if !t.Status.Terminal() {
			return t
		}
	}
	return nil
}

func (r *ticketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	err := r.h.read(func(st *state) error {
		for _, t := range st.tickets {
			if matches(st, t, filter) {
				result = append(result, *t.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].TicketNumber > result[j].TicketNumber
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *ticketRepo) CountByStatus(_ context.Context, filter repository.TicketFilter) (map[domain.TicketStatus]int, error) {
	counts := make(map[domain.TicketStatus]int)
	err := r.h.read(func(st *state) error {
		for _, t := range st.tickets {
			if matches(st, t, filter) {
				counts[t.Status]++
			}
		}
		return nil
	})
	return counts, err
}

func matches(st *state, t *domain.Ticket, f repository.TicketFilter) bool {
	if f.RequesterID != nil && t.RequestedBy != *f.RequesterID {
		return false
	}
	if f.TechnicianID != nil && !t.IsTechnician(*f.TechnicianID) {
		return false
	}
	if f.AssetID != nil && t.AssetID != *f.AssetID {
		return false
	}
	if f.HasTechnician != nil && t.HasTechnician() != *f.HasTechnician {
		return false
	}
	if f.ScopeDepartmentID != nil && !inDepartment(st, t, *f.ScopeDepartmentID) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if s == t.Status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func inDepartment(st *state, t *domain.Ticket, dept string) bool {
	if t.AssignedDepartmentID != nil && *t.AssignedDepartmentID == dept {
		return true
	}
	if u, ok := st.users[t.RequestedBy]; ok && u.DepartmentID != nil && *u.DepartmentID == dept {
		return true
	}
	if a, ok := st.assets[t.AssetID]; ok && a.DepartmentID != nil && *a.DepartmentID == dept {
		return true
	}
	return false
}

func (r *ticketRepo) Delete(_ context.Context, id string) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.tickets[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.tickets, id)
		delete(st.lines, id)
		delete(st.history, id)
		delete(st.notes, id)
		return nil
	})
}

func (r *ticketRepo) AddSupplyLine(_ context.Context, line *domain.SupplyLine) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.tickets[line.TicketID]; !ok {
			return repository.ErrNotFound
		}
		line.ID = newID()
		line.AddedAt = r.h.now()
		st.lines[line.TicketID] = append(st.lines[line.TicketID], *line)
		return nil
	})
}

func (r *ticketRepo) RemoveSupplyLine(_ context.Context, ticketID, lineID string) (*domain.SupplyLine, error) {
	var removed *domain.SupplyLine
	err := r.h.write(func(st *state) error {
		lines := st.lines[ticketID]
		for i, line := range lines {
			if line.ID != lineID {
				continue
			}
			l := line
			removed = &l
			st.lines[ticketID] = append(lines[:i:i], lines[i+1:]...)
			return nil
		}
		return repository.ErrNotFound
	})
	return removed, err
}
