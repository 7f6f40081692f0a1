package domain

import (
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

// Role is the staff role attached to an actor by the auth subsystem.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleGuardia    Role = "guardia"
)

// ParseRole validates a role string coming from a token or request.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleSuperadmin, RoleAdmin, RoleGuardia:
		return Role(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role "+raw)
	}
}

// Actor is the staff member performing an operation, as established by the
// external auth subsystem. The core reads it, never mutates it, and every
// service entry point takes it explicitly rather than pulling it from ambient
// session state.
type Actor struct {
	ID              EmployeeID
	Role            Role
	EstablishmentID EstablishmentID
}

// Valid reports whether the actor carries the fields the pipeline depends on.
func (a Actor) Valid() error {
	if a.ID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is not authenticated")
	}
	if a.EstablishmentID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor has no establishment scope")
	}
	if _, err := ParseRole(string(a.Role)); err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "actor role is not recognized")
	}
	return nil
}
