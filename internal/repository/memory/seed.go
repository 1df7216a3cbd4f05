package memory

import (
	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// Demo identifiers created by SeedDemo.
const (
	DemoDepartmentID = "dept-facilities"
	DemoRequesterID  = "user-requester"
	DemoTechnicianID = "user-technician"
	DemoManagerID    = "user-manager"
	DemoAdminID      = "user-admin"
	DemoAssetID      = "asset-printer-01"
	DemoSupplyID     = "supply-toner"
)

// SeedDemo fills the store with one department, a user per role, an asset
// held by the requester and a stocked supply, for local runs without Postgres.
func SeedDemo(s *Store) {
	dept := DemoDepartmentID
	s.PutDepartment(domain.Department{ID: dept, Name: "Facilities", IsActive: true})
	s.PutUser(domain.User{ID: DemoRequesterID, Name: "Requester", Email: "requester@example.com", Role: domain.RoleUser, DepartmentID: &dept, Active: true})
	s.PutUser(domain.User{ID: DemoTechnicianID, Name: "Technician", Email: "tech@example.com", Role: domain.RoleTechnician, DepartmentID: &dept, Active: true})
	s.PutUser(domain.User{ID: DemoManagerID, Name: "Manager", Email: "manager@example.com", Role: domain.RoleManager, DepartmentID: &dept, Active: true})
	s.PutUser(domain.User{ID: DemoAdminID, Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin, Active: true})
	s.PutAsset(domain.Asset{ID: DemoAssetID, Name: "Office printer", SerialNumber: "PR-0001", DepartmentID: &dept, Status: domain.AssetStatusAssigned})
	s.PutAssignment(domain.Assignment{ID: "assign-printer-01", AssetID: DemoAssetID, UserID: DemoRequesterID, Status: domain.AssignmentStatusAssigned})
	s.PutSupply(domain.Supply{ID: DemoSupplyID, Name: "Toner cartridge", Unit: "pcs", Quantity: 25, UnitCost: 4500})
}
