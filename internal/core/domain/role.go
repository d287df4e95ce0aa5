package domain

import "fmt"

// Role is the closed set of authorization roles.
type Role string

const (
	RoleClient     Role = "client"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// StaffRoles are the roles allowed on administrative routes.
var StaffRoles = []Role{RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r grants administrative access.
func (r Role) IsStaff() bool {
	return IsAuthorized(r, StaffRoles)
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidRole, s)
	}
	return r, nil
}

// IsAuthorized reports whether role is a member of allowed.
// An empty allow-list authorizes nobody.
func IsAuthorized(role Role, allowed []Role) bool {
	if !role.Valid() {
		return false
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}
