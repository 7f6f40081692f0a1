// Package domain defines the typed identifiers and actor model shared by every
// feature package. IDs are distinct types over uuid.UUID so a ClientID can
// never be passed where an EstablishmentID is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

type (
	// ClientID identifies a client (visitor) record.
	ClientID uuid.UUID
	// VisitID identifies a single entry event.
	VisitID uuid.UUID
	// IncidentID identifies an audit incident created alongside a ban.
	IncidentID uuid.UUID
	// EstablishmentID identifies the venue (tenant) scope.
	EstablishmentID uuid.UUID
	// EmployeeID identifies a staff member acting on the system.
	EmployeeID uuid.UUID
)

func (id ClientID) String() string        { return uuid.UUID(id).String() }
func (id VisitID) String() string         { return uuid.UUID(id).String() }
func (id IncidentID) String() string      { return uuid.UUID(id).String() }
func (id EstablishmentID) String() string { return uuid.UUID(id).String() }
func (id EmployeeID) String() string      { return uuid.UUID(id).String() }

func (id ClientID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id EstablishmentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EmployeeID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the shared invariant for all typed IDs: a valid,
// non-empty, non-nil UUID.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return parsed, nil
}

// ParseClientID parses a client ID from its string form.
func ParseClientID(raw string) (ClientID, error) {
	parsed, err := parseUUID(raw, "client ID")
	return ClientID(parsed), err
}

// ParseEstablishmentID parses an establishment ID from its string form.
func ParseEstablishmentID(raw string) (EstablishmentID, error) {
	parsed, err := parseUUID(raw, "establishment ID")
	return EstablishmentID(parsed), err
}

// ParseEmployeeID parses an employee ID from its string form.
func ParseEmployeeID(raw string) (EmployeeID, error) {
	parsed, err := parseUUID(raw, "employee ID")
	return EmployeeID(parsed), err
}
