package models

// Identity is the (id, role, username) triple asserted by a verified session token
type Identity struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Username string `json:"username"`
}

// IsAdministrator reports whether the identity holds the administrator role
func (i Identity) IsAdministrator() bool {
	return i.Role == RoleAdministrator
}

// RoleSet is a set of roles allowed to perform an operation
type RoleSet map[Role]struct{}

// NewRoleSet creates a role set from the given roles
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Authorize is the capability check used by the access gate and by the services.
// An empty set allows any authenticated identity.
func Authorize(identity Identity, required RoleSet) bool {
	if len(required) == 0 {
		return true
	}
	_, ok := required[identity.Role]
	return ok
}
