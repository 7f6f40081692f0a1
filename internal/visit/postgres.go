package visit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	txcontext "github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
)

// PostgresStore persists the visit ledger in PostgreSQL.
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

func (s *PostgresStore) Append(ctx context.Context, v *Visit) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO visits (id, client_id, entry_time, status)
		VALUES ($1, $2, $3, $4)
	`, uuid.UUID(v.ID), uuid.UUID(v.ClientID), v.EntryTime, v.Status)
	if err != nil {
		return fmt.Errorf("append visit: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByClient(ctx context.Context, clientID domain.ClientID) ([]*Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, entry_time, status
		FROM visits
		WHERE client_id = $1
		ORDER BY entry_time DESC
	`, uuid.UUID(clientID))
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		var (
			v        Visit
			id       uuid.UUID
			clientID uuid.UUID
		)
		if err := rows.Scan(&id, &clientID, &v.EntryTime, &v.Status); err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		v.ID = domain.VisitID(id)
		v.ClientID = domain.ClientID(clientID)
		visits = append(visits, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visits: %w", err)
	}
	return visits, nil
}
