// Package incident is the append-only audit ledger for ban actions. A ban is
// treated as a closed action: every incident is created already RESOLVED,
// never reopened.
package incident

import (
	"time"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

const (
	// TypeFalseDocument is the incident type recorded for ban actions.
	TypeFalseDocument = "DOCUMENTO_FALSO"

	// StatusResolved is the only status an incident ever has.
	StatusResolved = "RESOLVED"
)

// Incident is one audit record created alongside a ban. Severity mirrors the
// ban level at creation time.
type Incident struct {
	ID              domain.IncidentID
	ClientID        domain.ClientID
	Type            string
	Description     string
	Status          string
	Severity        int
	Location        string
	ResolvedAt      time.Time
	ResolutionNotes string
	CreatedAt       time.Time
}
