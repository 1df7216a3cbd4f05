package memory

import (
	"context"
	"sort"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
)

type assetRepo struct {
	h *handle
}

func (r *assetRepo) GetByID(_ context.Context, id string) (*domain.Asset, error) {
	var out *domain.Asset
	err := r.h.read(func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *a
		out = &cp
		return nil
	})
	return out, err
}

func (r *assetRepo) UpdateStatus(_ context.Context, id string, status domain.AssetStatus) error {
	return r.h.write(func(st *state) error {
		a, ok := st.assets[id]
		if !ok {
			return repository.ErrNotFound
		}
		a.Status = status
		a.UpdatedAt = r.h.now()
		return nil
	})
}

func (r *assetRepo) AppendMaintenanceRecord(_ context.Context, record *domain.MaintenanceRecord) error {
	return r.h.write(func(st *state) error {
		if _, ok := st.assets[record.AssetID]; !ok {
			return repository.ErrNotFound
		}
		record.ID = newID()
		st.records[record.AssetID] = append(st.records[record.AssetID], *record)
		return nil
	})
}

func (r *assetRepo) ListMaintenanceRecords(_ context.Context, assetID string) ([]domain.MaintenanceRecord, error) {
	var out []domain.MaintenanceRecord
	err := r.h.read(func(st *state) error {
		out = append(out, st.records[assetID]...)
		return nil
	})
	return out, err
}

type assignmentRepo struct {
	h *handle
}

func (r *assignmentRepo) FindByAssetAndStatus(_ context.Context, assetID string, status domain.AssignmentStatus) (*domain.Assignment, error) {
	var out *domain.Assignment
	err := r.h.read(func(st *state) error {
		var candidates []domain.Assignment
		for _, a := range st.assignments {
			if a.AssetID == assetID && a.Status == status {
				candidates = append(candidates, *a)
			}
		}
		if len(candidates) == 0 {
			return repository.ErrNotFound
		}
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
		})
		out = &candidates[0]
		return nil
	})
	return out, err
}

func (r *assignmentRepo) UpdateStatus(_ context.Context, id string, status domain.AssignmentStatus) error {
	return r.h.write(func(st *state) error {
		a, ok := st.assignments[id]
		if !ok {
			return repository.ErrNotFound
		}
		a.Status = status
		a.UpdatedAt = r.h.now()
		return nil
	})
}

type supplyRepo struct {
	h *handle
}

func (r *supplyRepo) GetByID(_ context.Context, id string) (*domain.Supply, error) {
	var out *domain.Supply
	err := r.h.read(func(st *state) error {
		s, ok := st.supplies[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *s
		out = &cp
		return nil
	})
	return out, err
}

func (r *supplyRepo) Decrement(_ context.Context, id string, qty int) (*domain.Supply, error) {
	var out *domain.Supply
	err := r.h.write(func(st *state) error {
		s, ok := st.supplies[id]
		if !ok {
			return repository.ErrNotFound
		}
		if s.Quantity < qty {
			return repository.ErrInsufficientStock
		}
		s.Quantity -= qty
		cp := *s
		out = &cp
		return nil
	})
	return out, err
}

func (r *supplyRepo) Increment(_ context.Context, id string, qty int) (*domain.Supply, error) {
	var out *domain.Supply
	err := r.h.write(func(st *state) error {
		s, ok := st.supplies[id]
		if !ok {
			return repository.ErrNotFound
		}
		s.Quantity += qty
		cp := *s
		out = &cp
		return nil
	})
	return out, err
}

type userRepo struct {
	h *handle
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.h.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

func (r *userRepo) ListIDsByDepartment(_ context.Context, departmentID string) ([]string, error) {
	var ids []string
	err := r.h.read(func(st *state) error {
		for id, u := range st.users {
			if u.DepartmentID != nil && *u.DepartmentID == departmentID {
				ids = append(ids, id)
			}
		}
		return nil
	})
	sort.Strings(ids)
	return ids, err
}

type departmentRepo struct {
	h *handle
}

func (r *departmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	var out *domain.Department
	err := r.h.read(func(st *state) error {
		d, ok := st.departments[id]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *d
		out = &cp
		return nil
	})
	return out, err
}
