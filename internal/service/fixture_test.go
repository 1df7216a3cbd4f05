package service

import (
	"context"
	"sync"
	"testing"

	"github.com/spec-kit/asset-maintenance/internal/domain"
	"github.com/spec-kit/asset-maintenance/internal/events"
	"github.com/spec-kit/asset-maintenance/internal/repository/memory"
	apperrors "github.com/spec-kit/asset-maintenance/pkg/util/errorutil"
)

const (
	deptOps = "d-ops"
	deptIT  = "d-it"

	assetHeld   = "a-printer"
	assetLoose  = "a-spare"
	assignment  = "as-printer"
	supplySmall = "s-fuse"
	supplyBulk  = "s-screw"
	supplyPump  = "s-pump"
)

type fixture struct {
	store    *memory.Store
	svc      *TicketService
	counters *CounterService

	mu        sync.Mutex
	published []events.Event

	requester  domain.Actor
	technician domain.Actor
	manager    domain.Actor
	itManager  domain.Actor
	loneMgr    domain.Actor
	admin      domain.Actor
	outsider   domain.Actor
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.PutDepartment(domain.Department{ID: deptOps, Name: "Operations", IsActive: true})
	store.PutDepartment(domain.Department{ID: deptIT, Name: "IT", IsActive: true})
	store.PutDepartment(domain.Department{ID: "d-closed", Name: "Closed", IsActive: false})

	users := []domain.User{
		{ID: "u-req", Name: "Requester", Role: domain.RoleUser, DepartmentID: strPtr(deptOps), Active: true},
		{ID: "u-tech", Name: "Technician", Role: domain.RoleTechnician, DepartmentID: strPtr(deptOps), Active: true},
		{ID: "u-mgr", Name: "Ops manager", Role: domain.RoleManager, DepartmentID: strPtr(deptOps), Active: true},
		{ID: "u-it", Name: "IT manager", Role: domain.RoleManager, DepartmentID: strPtr(deptIT), Active: true},
		{ID: "u-lone", Name: "Floating manager", Role: domain.RoleManager, Active: true},
		{ID: "u-admin", Name: "Admin", Role: domain.RoleAdmin, Active: true},
		{ID: "u-out", Name: "Outsider", Role: domain.RoleUser, DepartmentID: strPtr(deptIT), Active: true},
		{ID: "u-gone", Name: "Former", Role: domain.RoleTechnician, Active: false},
	}
	for _, u := range users {
		store.PutUser(u)
	}

	store.PutAsset(domain.Asset{ID: assetHeld, Name: "Printer", SerialNumber: "P-1", DepartmentID: strPtr(deptOps), Status: domain.AssetStatusAssigned})
	store.PutAsset(domain.Asset{ID: assetLoose, Name: "Spare laptop", SerialNumber: "L-9", Status: domain.AssetStatusStorage})
	store.PutAssignment(domain.Assignment{ID: assignment, AssetID: assetHeld, UserID: "u-req", Status: domain.AssignmentStatusAssigned})

	store.PutSupply(domain.Supply{ID: supplySmall, Name: "Fuse", Unit: "pcs", Quantity: 5, UnitCost: 1000})
	store.PutSupply(domain.Supply{ID: supplyBulk, Name: "Screw", Unit: "pcs", Quantity: 20, UnitCost: 250})
	store.PutSupply(domain.Supply{ID: supplyPump, Name: "Pump", Unit: "pcs", Quantity: 3, UnitCost: 75000})

	f := &fixture{
		store:      store,
		requester:  domain.Actor{ID: "u-req", Role: domain.RoleUser, DepartmentID: strPtr(deptOps)},
		technician: domain.Actor{ID: "u-tech", Role: domain.RoleTechnician, DepartmentID: strPtr(deptOps)},
		manager:    domain.Actor{ID: "u-mgr", Role: domain.RoleManager, DepartmentID: strPtr(deptOps)},
		itManager:  domain.Actor{ID: "u-it", Role: domain.RoleManager, DepartmentID: strPtr(deptIT)},
		loneMgr:    domain.Actor{ID: "u-lone", Role: domain.RoleManager},
		admin:      domain.Actor{ID: "u-admin", Role: domain.RoleAdmin},
		outsider:   domain.Actor{ID: "u-out", Role: domain.RoleUser, DepartmentID: strPtr(deptIT)},
	}

	dispatcher := events.NewInMemoryDispatcher()
	for _, et := range events.AllEventTypes {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, e)
			return nil
		})
	}

	f.svc = NewTicketService(TicketDependencies{Store: store, Dispatcher: dispatcher})
	f.counters = NewCounterService(store)
	return f
}

func (f *fixture) events(eventType events.EventType) []events.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []events.Event
	for _, e := range f.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func (f *fixture) draft(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), f.requester, CreateTicketInput{
		AssetID:     assetHeld,
		Type:        "Repair",
		Description: "Paper jam on every print",
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	return ticket
}

func (f *fixture) sent(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := f.draft(t)
	if _, err := f.svc.SendTicket(context.Background(), f.requester, ticket.ID); err != nil {
		t.Fatalf("SendTicket() error = %v", err)
	}
	return ticket
}

func (f *fixture) accepted(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := f.sent(t)
	if _, err := f.svc.AcceptTicket(context.Background(), f.manager, ticket.ID, AcceptTicketInput{TechnicianID: "u-tech"}); err != nil {
		t.Fatalf("AcceptTicket() error = %v", err)
	}
	return ticket
}

func (f *fixture) inProgress(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := f.accepted(t)
	if _, err := f.svc.StartTicket(context.Background(), f.technician, ticket.ID); err != nil {
		t.Fatalf("StartTicket() error = %v", err)
	}
	return ticket
}

func (f *fixture) pending(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket := f.sent(t)
	if _, err := f.svc.UpdateStatus(context.Background(), f.manager, ticket.ID, UpdateStatusInput{Status: domain.TicketStatusPending, Note: "waiting for parts"}); err != nil {
		t.Fatalf("UpdateStatus(Pending) error = %v", err)
	}
	return ticket
}

func (f *fixture) ticket(t *testing.T, id string) *domain.Ticket {
	t.Helper()
	ticket, err := f.store.Repos().Tickets.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s) error = %v", id, err)
	}
	ticket.History, _ = f.store.Repos().History.ListByTicket(context.Background(), id)
	return ticket
}

func (f *fixture) asset(t *testing.T, id string) *domain.Asset {
	t.Helper()
	asset, err := f.store.Repos().Assets.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("asset %s: %v", id, err)
	}
	return asset
}

func (f *fixture) assignmentStatus(t *testing.T) domain.AssignmentStatus {
	t.Helper()
	a, ok := f.store.Assignment(assignment)
	if !ok {
		t.Fatalf("assignment %s missing", assignment)
	}
	return a.Status
}

func (f *fixture) stock(t *testing.T, id string) int {
	t.Helper()
	s, err := f.store.Repos().Supplies.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("supply %s: %v", id, err)
	}
	return s.Quantity
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("error = nil, want %s", code)
	}
	if !apperrors.HasCode(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}
