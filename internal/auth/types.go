package auth

import (
	"errors"
	"slices"
)

// Role represents an authorisation tier.
type Role string

const (
	// RoleViewer can only look.
	RoleViewer Role = "viewer"

	// RolePanel is a wall-mounted display. It can operate tiles.
	RolePanel Role = "panel"

	// RoleAdmin can also reload the page configuration.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of roles a token may carry.
var ValidRoles = []Role{RoleViewer, RolePanel, RoleAdmin}

// IsValidRole returns true if r is one of ValidRoles.
func IsValidRole(r Role) bool {
	return slices.Contains(ValidRoles, r)
}

// Domain errors.
var (
	ErrTokenInvalid   = errors.New("auth: invalid token")
	ErrSecretRequired = errors.New("auth: signing secret is required")
	ErrInvalidRole    = errors.New("auth: invalid role")
	ErrSubjectMissing = errors.New("auth: subject is required")
)
