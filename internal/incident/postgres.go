package incident

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	txcontext "github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
)

// PostgresStore persists the incident ledger in PostgreSQL. Appends pick up
// the transaction from context so a ban's client write and its incident
// commit together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, incident *Incident) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO incidents (
			id, client_id, type, description, status, severity,
			location, resolved_at, resolution_notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		uuid.UUID(incident.ID), uuid.UUID(incident.ClientID),
		incident.Type, incident.Description, incident.Status, incident.Severity,
		incident.Location, incident.ResolvedAt, incident.ResolutionNotes, incident.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append incident: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByClient(ctx context.Context, clientID domain.ClientID) ([]*Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, type, description, status, severity,
			location, resolved_at, resolution_notes, created_at
		FROM incidents
		WHERE client_id = $1
		ORDER BY created_at DESC
	`, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*Incident
	for rows.Next() {
		var (
			incident Incident
			id       uuid.UUID
			clientID uuid.UUID
		)
		if err := rows.Scan(
			&id, &clientID,
			&incident.Type, &incident.Description, &incident.Status, &incident.Severity,
			&incident.Location, &incident.ResolvedAt, &incident.ResolutionNotes, &incident.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incident.ID = domain.IncidentID(id)
		incident.ClientID = domain.ClientID(clientID)
		incidents = append(incidents, &incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incidents: %w", err)
	}
	return incidents, nil
}
