// Package service computes daily stats. The counters are independent reads,
// so they run concurrently and share the reads retry policy.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Escana/app-escana01-production-sub000/internal/stats"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/retry"
)

// Service aggregates daily counters for an establishment.
type Service struct {
	store     stats.Store
	readRetry retry.Policy
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithReadRetry overrides the retry policy for the count queries.
func WithReadRetry(p retry.Policy) Option {
	return func(s *Service) { s.readRetry = p }
}

// New constructs the stats service over a counting store.
func New(store stats.Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		readRetry: retry.DefaultReads,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DailyCounts returns the counters for the UTC day containing the given
// instant. The window is half-open: [00:00, 24:00).
func (s *Service) DailyCounts(ctx context.Context, establishmentID domain.EstablishmentID, day time.Time) (*stats.DailyStats, error) {
	utc := day.UTC()
	from := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	result := &stats.DailyStats{
		EstablishmentID: establishmentID,
		Day:             from,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := retry.Value(gctx, s.readRetry, func(ctx context.Context) (int, error) {
			return s.store.CountVisits(ctx, establishmentID, from, to)
		})
		result.Visits = count
		return err
	})
	g.Go(func() error {
		count, err := retry.Value(gctx, s.readRetry, func(ctx context.Context) (int, error) {
			return s.store.CountIncidents(ctx, establishmentID, from, to)
		})
		result.Incidents = count
		return err
	})
	g.Go(func() error {
		count, err := retry.Value(gctx, s.readRetry, func(ctx context.Context) (int, error) {
			return s.store.CountNewClients(ctx, establishmentID, from, to)
		})
		result.NewClients = count
		return err
	})
	g.Go(func() error {
		counts, err := retry.Value(gctx, s.readRetry, func(ctx context.Context) (map[string]int, error) {
			return s.store.CountVisitsBySex(ctx, establishmentID, from, to)
		})
		result.VisitsBySex = counts
		return err
	})
	g.Go(func() error {
		counts, err := retry.Value(gctx, s.readRetry, func(ctx context.Context) (map[string]int, error) {
			return s.store.CountNewClientsBySex(ctx, establishmentID, from, to)
		})
		result.ClientsBySex = counts
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "daily stats aggregation failed",
			"establishment_id", establishmentID, "day", from, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate daily stats")
	}
	return result, nil
}
