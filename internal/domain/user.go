package domain

import "time"

// UserRole enumerates staff roles for stored accounts.
type UserRole string

const (
	UserRoleTechnician UserRole = "technician"
	UserRoleAdmin      UserRole = "admin"
)

// ValidUserRole reports whether r is a known staff role.
func ValidUserRole(r UserRole) bool {
	return r == UserRoleTechnician || r == UserRoleAdmin
}

// ActorRole is the permission class of a caller. Unlike UserRole it includes
// the unauthenticated requester ("user").
type ActorRole string

const (
	ActorRoleUser       ActorRole = "user"
	ActorRoleTechnician ActorRole = "technician"
	ActorRoleAdmin      ActorRole = "admin"
)

// ValidActorRole reports whether r is a known actor role.
func ValidActorRole(r ActorRole) bool {
	switch r {
	case ActorRoleUser, ActorRoleTechnician, ActorRoleAdmin:
		return true
	}
	return false
}

// ActorRoleOf maps a stored staff role to its actor role.
func ActorRoleOf(r UserRole) ActorRole {
	if r == UserRoleAdmin {
		return ActorRoleAdmin
	}
	return ActorRoleTechnician
}

// User is the domain model for technician and admin accounts. Password holds
// either a bcrypt hash or, for legacy rows, the plain-text credential that is
// migrated on the next successful login.
type User struct {
	ID        string
	Username  string
	Password  string
	Name      string
	Email     *string
	Role      UserRole
	CreatedAt time.Time
}
