// Package memory is an in-process repository.Store used for local runs
// without Postgres and by the service and HTTP tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/repository"
)

type state struct {
	tickets     map[string]*domain.Ticket
	lines       map[string][]domain.SupplyLine
	history     map[string][]domain.HistoryEntry
	notes       map[string][]domain.Note
	assets      map[string]*domain.Asset
	records     map[string][]domain.MaintenanceRecord
	assignments map[string]*domain.Assignment
	supplies    map[string]*domain.Supply
	users       map[string]*domain.User
	departments map[string]*domain.Department
}

func newState() *state {
	return &state{
		tickets:     make(map[string]*domain.Ticket),
		lines:       make(map[string][]domain.SupplyLine),
		history:     make(map[string][]domain.HistoryEntry),
		notes:       make(map[string][]domain.Note),
		assets:      make(map[string]*domain.Asset),
		records:     make(map[string][]domain.MaintenanceRecord),
		assignments: make(map[string]*domain.Assignment),
		supplies:    make(map[string]*domain.Supply),
		users:       make(map[string]*domain.User),
		departments: make(map[string]*domain.Department),
	}
}

func (s *state) clone() *state {
	cp := newState()
	for k, v := range s.tickets {
		cp.tickets[k] = v.Clone()
	}
	for k, v := range s.lines {
		cp.lines[k] = append([]domain.SupplyLine(nil), v...)
	}
	for k, v := range s.history {
		cp.history[k] = append([]domain.HistoryEntry(nil), v...)
	}
	for k, v := range s.notes {
		cp.notes[k] = append([]domain.Note(nil), v...)
	}
	for k, v := range s.assets {
		a := *v
		cp.assets[k] = &a
	}
	for k, v := range s.records {
		cp.records[k] = append([]domain.MaintenanceRecord(nil), v...)
	}
	for k, v := range s.assignments {
		a := *v
		cp.assignments[k] = &a
	}
	for k, v := range s.supplies {
		sp := *v
		cp.supplies[k] = &sp
	}
	for k, v := range s.users {
		u := *v
		cp.users[k] = &u
	}
	for k, v := range s.departments {
		d := *v
		cp.departments[k] = &d
	}
	return cp
}

// Store is a mutex-guarded repository.Store. Transactions run serially on a
// snapshot that replaces the live state only when fn succeeds.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

type handle struct {
	store *Store
	tx    *state
}

func (h *handle) read(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.RLock()
	defer h.store.mu.RUnlock()
	return fn(h.store.st)
}

func (h *handle) write(fn func(st *state) error) error {
	if h.tx != nil {
		return fn(h.tx)
	}
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return fn(h.store.st)
}

func (h *handle) now() time.Time {
	return h.store.now()
}

func (s *Store) repos(h *handle) repository.Repositories {
	return repository.Repositories{
		Tickets:     &ticketRepo{h: h},
		History:     &historyRepo{h: h},
		Notes:       &noteRepo{h: h},
		Assets:      &assetRepo{h: h},
		Assignments: &assignmentRepo{h: h},
		Supplies:    &supplyRepo{h: h},
		Users:       &userRepo{h: h},
		Departments: &departmentRepo{h: h},
	}
}

// Repos returns repositories operating directly on the live state.
func (s *Store) Repos() repository.Repositories {
	return s.repos(&handle{store: s})
}

// WithinTx runs fn against a snapshot. fn must only use the repositories it
// is given; calling Repos() from inside fn deadlocks.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	if err := fn(ctx, s.repos(&handle{store: s, tx: snapshot})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = snapshot
	return nil
}

// PutUser seeds a directory user.
func (s *Store) PutUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.users[u.ID] = &u
}

// PutDepartment seeds a department.
func (s *Store) PutDepartment(d domain.Department) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.departments[d.ID] = &d
}

// PutAsset seeds an asset.
func (s *Store) PutAsset(a domain.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.assets[a.ID] = &a
}

// PutAssignment seeds an assignment row.
func (s *Store) PutAssignment(a domain.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.assignments[a.ID] = &a
}

// PutSupply seeds a supply.
func (s *Store) PutSupply(sp domain.Supply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.supplies[sp.ID] = &sp
}

// Assignment returns a copy of the assignment row, if present.
func (s *Store) Assignment(id string) (domain.Assignment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.st.assignments[id]
	if !ok {
		return domain.Assignment{}, false
	}
	return *a, true
}

func newID() string {
	return uuid.NewString()
}
