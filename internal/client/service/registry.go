// Package service implements the client registry: resolution of client
// records by national ID, creation from validated identity fields, and the
// mutations the access engine drives.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	clientmetrics "github.com/Escana/app-escana01-production-sub000/internal/client/metrics"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/internal/client/store"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/retry"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/sentinel"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// Registry resolves and mutates client records.
type Registry struct {
	clients   store.Store
	readRetry retry.Policy
	metrics   *clientmetrics.Metrics
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *clientmetrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithReadRetry overrides the retry policy for lookups. Tests use a
// single-attempt policy.
func WithReadRetry(p retry.Policy) Option {
	return func(r *Registry) { r.readRetry = p }
}

// NewRegistry constructs the registry over a client store.
func NewRegistry(clients store.Store, opts ...Option) *Registry {
	r := &Registry{
		clients:   clients,
		readRetry: retry.DefaultReads,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	// Factual absence is an answer, not a transient fault.
	base := r.readRetry.RetryIf
	r.readRetry.RetryIf = func(err error) bool {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false
		}
		if base != nil {
			return base(err)
		}
		return true
	}
	return r
}

// Resolve returns the client for a rut within an establishment, or a
// CodeNotFound error when no record exists. The read goes through the shared
// retry policy; writes never do.
func (r *Registry) Resolve(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (*models.Client, error) {
	if nationalID.IsZero() {
		return nil, dErrors.New(dErrors.CodeCriticalData, "national ID is required for lookup")
	}
	start := time.Now()
	client, err := retry.Value(ctx, r.readRetry, func(ctx context.Context) (*models.Client, error) {
		return r.clients.FindByNationalID(ctx, establishmentID, nationalID)
	})
	r.metrics.ObserveResolve(start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no client record for this national ID")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "client lookup failed")
	}
	if err := client.CheckBanInvariant(); err != nil {
		// Surface corrupted ban state instead of acting on it.
		r.logger.ErrorContext(ctx, "stored client violates ban invariant",
			"client_id", client.ID, "error", err)
		return nil, err
	}
	return client, nil
}

// CreateFromScan creates a client from validated identity fields. The
// establishment is stamped from the actor. requireNames is set by the ban
// flow: banning an unknown person demands both name fields so the record is
// attributable.
func (r *Registry) CreateFromScan(ctx context.Context, fields domain.IdentityFields, actor domain.Actor, documentImage string, requireNames bool) (*models.Client, error) {
	if fields.NationalID.IsZero() {
		return nil, dErrors.New(dErrors.CodeCriticalData, "national ID is required to create a client")
	}
	if requireNames && !fields.HasNames() {
		return nil, dErrors.New(dErrors.CodeValidation, "given and family names are required to ban an unknown client")
	}

	now := requestcontext.Now(ctx)
	client := models.New(domain.ClientID(uuid.New()), fields, actor.EstablishmentID, now)
	client.DocumentImage = documentImage

	start := time.Now()
	err := r.clients.Create(ctx, client)
	r.metrics.ObserveWrite("create", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a client record already exists for this national ID")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create client")
	}
	r.metrics.IncrementClientsCreated()
	return client, nil
}

// Save persists a mutated client record (ban/unban transitions, document
// image backfill).
func (r *Registry) Save(ctx context.Context, client *models.Client) error {
	start := time.Now()
	err := r.clients.Update(ctx, client)
	r.metrics.ObserveWrite("update", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "client record disappeared during update")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update client")
	}
	return nil
}

// Upsert inserts or updates a client keyed by (national_id, establishment).
// The ban flow uses it so two concurrent first scans cannot produce
// duplicate rows.
func (r *Registry) Upsert(ctx context.Context, client *models.Client) error {
	start := time.Now()
	err := r.clients.Upsert(ctx, client)
	r.metrics.ObserveWrite("upsert", start)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to upsert client")
	}
	return nil
}
