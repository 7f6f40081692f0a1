// Package store persists client records. Lookups are scoped to an
// establishment; uniqueness on (national_id, establishment_id) is enforced by
// both implementations, eliminating the duplicate rows the reference design
// tolerated.
package store

import (
	"context"

	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// Store is the client persistence contract. Implementations return
// sentinel.ErrNotFound / sentinel.ErrConflict for factual states.
type Store interface {
	// FindByNationalID returns the single client for a rut within an
	// establishment.
	FindByNationalID(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (*models.Client, error)

	// Create inserts a new client. Fails with ErrConflict when the
	// (national_id, establishment_id) pair already exists.
	Create(ctx context.Context, client *models.Client) error

	// Update rewrites an existing client by ID.
	Update(ctx context.Context, client *models.Client) error

	// Upsert inserts or, on a (national_id, establishment_id) conflict,
	// updates the existing row in one statement. Used by the ban flow so a
	// concurrent first scan cannot race it into duplicates.
	Upsert(ctx context.Context, client *models.Client) error
}
