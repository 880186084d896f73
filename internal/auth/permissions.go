package auth

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermStateRead    Permission = "state:read"
	PermStateWrite   Permission = "state:write"
	PermPageNavigate Permission = "page:navigate"
	PermPageReload   Permission = "page:reload"
)

// rolePermissions maps each role to its granted permissions.
var rolePermissions = map[Role][]Permission{
	RoleViewer: {
		PermStateRead,
	},
	RolePanel: {
		PermStateRead,
		PermStateWrite,
		PermPageNavigate,
	},
	RoleAdmin: {
		PermStateRead,
		PermStateWrite,
		PermPageNavigate,
		PermPageReload,
	},
}

// HasPermission returns true if the given role has the specified permission.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}
