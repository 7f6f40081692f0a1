package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// Postgres counts ledger rows with SQL aggregates. Visits and incidents are
// scoped to an establishment through their owning client row.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) count(ctx context.Context, query string, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(establishmentID), from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

func (s *Postgres) CountVisits(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*)
		FROM visits v
		JOIN clients c ON c.id = v.client_id
		WHERE c.establishment_id = $1 AND v.entry_time >= $2 AND v.entry_time < $3
	`, establishmentID, from, to)
}

func (s *Postgres) CountIncidents(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*)
		FROM incidents i
		JOIN clients c ON c.id = i.client_id
		WHERE c.establishment_id = $1 AND i.created_at >= $2 AND i.created_at < $3
	`, establishmentID, from, to)
}

func (s *Postgres) CountNewClients(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	return s.count(ctx, `
		SELECT COUNT(*)
		FROM clients
		WHERE establishment_id = $1 AND created_at >= $2 AND created_at < $3
	`, establishmentID, from, to)
}

func (s *Postgres) countBySex(ctx context.Context, query string, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(establishmentID), from, to)
	if err != nil {
		return nil, fmt.Errorf("count rows by sex: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var sex string
		var count int
		if err := rows.Scan(&sex, &count); err != nil {
			return nil, fmt.Errorf("scan sex count: %w", err)
		}
		counts[sex] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sex counts: %w", err)
	}
	return counts, nil
}

func (s *Postgres) CountVisitsBySex(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error) {
	return s.countBySex(ctx, `
		SELECT c.sex, COUNT(*)
		FROM visits v
		JOIN clients c ON c.id = v.client_id
		WHERE c.establishment_id = $1 AND v.entry_time >= $2 AND v.entry_time < $3
		GROUP BY c.sex
	`, establishmentID, from, to)
}

func (s *Postgres) CountNewClientsBySex(ctx context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error) {
	return s.countBySex(ctx, `
		SELECT sex, COUNT(*)
		FROM clients
		WHERE establishment_id = $1 AND created_at >= $2 AND created_at < $3
		GROUP BY sex
	`, establishmentID, from, to)
}
