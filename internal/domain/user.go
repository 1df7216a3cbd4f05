package domain

// Role enumerates caller roles.
type Role string

const (
	RoleUser       Role = "user"
	RoleTechnician Role = "technician"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperuser  Role = "superuser"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTechnician, RoleManager, RoleAdmin, RoleSuperuser:
		return true
	}
	return false
}

// User is a directory entry resolved from the user service.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         Role
	DepartmentID *string
	Active       bool
}

// Actor is the caller of a ticket operation.
type Actor struct {
	ID           string
	Role         Role
	DepartmentID *string
}

// ActorFromUser builds the actor for an authenticated user.
func ActorFromUser(u *User) Actor {
	return Actor{ID: u.ID, Role: u.Role, DepartmentID: cloneString(u.DepartmentID)}
}

// Privileged reports whether the actor is admin or superuser.
func (a Actor) Privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperuser
}

// IsManager reports whether the actor has the manager role.
func (a Actor) IsManager() bool {
	return a.Role == RoleManager
}

// HasDepartment reports whether the actor belongs to a department.
func (a Actor) HasDepartment() bool {
	return a.DepartmentID != nil && *a.DepartmentID != ""
}
