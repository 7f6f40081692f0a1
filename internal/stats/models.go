// Package stats aggregates the per-establishment daily counters shown on the
// venue dashboard. Counts are derived from the ledgers at query time; nothing
// here owns writable state.
package stats

import (
	"context"
	"time"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// DailyStats are the counters for one establishment over one UTC day. The
// by-sex maps are keyed by the sex recorded on the client document ("F",
// "M"); sexes with a zero count are absent.
type DailyStats struct {
	EstablishmentID domain.EstablishmentID
	Day             time.Time
	Visits          int
	Incidents       int
	NewClients      int
	VisitsBySex     map[string]int
	ClientsBySex    map[string]int
}

// Store counts ledger rows for an establishment inside a half-open
// [from, to) window.
type Store interface {
	CountVisits(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error)
	CountIncidents(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error)
	CountNewClients(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error)
	CountVisitsBySex(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error)
	CountNewClientsBySex(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error)
}
