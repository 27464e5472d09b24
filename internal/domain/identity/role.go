package identity

import "strings"

// Role is the caller's business role. Roles are plain strings on the wire
// ("Territory Sales Associate") and compared case-insensitively.
type Role string

const (
	RoleSuperAdmin              Role = "Super Admin"
	RoleAdmin                   Role = "Admin"
	RoleManager                 Role = "Manager"
	RoleTerritorySalesManager   Role = "Territory Sales Manager"
	RoleTerritorySalesAssociate Role = "Territory Sales Associate"
	RoleStaff                   Role = "Staff"
)

// AllRoles lists the known roles, most privileged first.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleManager,
	RoleTerritorySalesManager,
	RoleTerritorySalesAssociate,
	RoleStaff,
}

// ParseRole normalizes s to a known role. Unknown roles are returned as-is
// and fail IsValid.
func ParseRole(s string) Role {
	trimmed := strings.TrimSpace(s)
	for _, r := range AllRoles {
		if strings.EqualFold(string(r), trimmed) {
			return r
		}
	}
	return Role(trimmed)
}

// IsValid checks if the role is one of AllRoles
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsAdministrative reports whether the role sees every record.
func (r Role) IsAdministrative() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// Is reports whether r is one of roles.
func (r Role) Is(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
