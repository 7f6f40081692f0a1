package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/sentinel"
	txcontext "github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
)

// PostgresStore persists clients in PostgreSQL. The unique constraint on
// (national_id, establishment_id) backs Create/Upsert semantics.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed client store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn prefers the transaction carried in ctx, so ban writes and their
// incident rows commit together.
func (s *PostgresStore) conn(ctx context.Context) dbConn {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const clientColumns = `
	id, national_id, establishment_id,
	given_names, family_names, nationality, sex, birth_date, age,
	is_banned, ban_level, ban_duration, ban_reason, ban_description,
	ban_start_date, ban_end_date, document_image, created_at, updated_at
`

func (s *PostgresStore) FindByNationalID(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (*models.Client, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `
		SELECT `+clientColumns+`
		FROM clients
		WHERE establishment_id = $1 AND national_id = $2
	`, uuid.UUID(establishmentID), nationalID.String())
	return scanClient(row)
}

func (s *PostgresStore) Create(ctx context.Context, client *models.Client) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, clientArgs(client)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, client *models.Client) error {
	result, err := s.conn(ctx).ExecContext(ctx, `
		UPDATE clients SET
			given_names = $2, family_names = $3, nationality = $4, sex = $5,
			birth_date = $6, age = $7,
			is_banned = $8, ban_level = $9, ban_duration = $10, ban_reason = $11,
			ban_description = $12, ban_start_date = $13, ban_end_date = $14,
			document_image = $15, updated_at = $16
		WHERE id = $1
	`,
		uuid.UUID(client.ID),
		client.GivenNames, client.FamilyNames, client.Nationality, client.Sex,
		nullTime(client.BirthDate), client.Age,
		client.IsBanned, client.BanLevel, client.BanDuration, client.BanReason,
		client.BanDescription, client.BanStartDate, client.BanEndDate,
		client.DocumentImage, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update client rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Upsert(ctx context.Context, client *models.Client) error {
	// On conflict the identity columns and created_at stay as first written;
	// only the mutable fields move. The returned id keeps the in-memory
	// record pointing at the surviving row.
	row := s.conn(ctx).QueryRowContext(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (national_id, establishment_id) DO UPDATE SET
			given_names = EXCLUDED.given_names,
			family_names = EXCLUDED.family_names,
			nationality = EXCLUDED.nationality,
			sex = EXCLUDED.sex,
			birth_date = EXCLUDED.birth_date,
			age = EXCLUDED.age,
			is_banned = EXCLUDED.is_banned,
			ban_level = EXCLUDED.ban_level,
			ban_duration = EXCLUDED.ban_duration,
			ban_reason = EXCLUDED.ban_reason,
			ban_description = EXCLUDED.ban_description,
			ban_start_date = EXCLUDED.ban_start_date,
			ban_end_date = EXCLUDED.ban_end_date,
			document_image = EXCLUDED.document_image,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`, clientArgs(client)...)

	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}
	client.ID = domain.ClientID(id)
	return nil
}

func clientArgs(client *models.Client) []any {
	return []any{
		uuid.UUID(client.ID),
		client.NationalID.String(),
		uuid.UUID(client.EstablishmentID),
		client.GivenNames, client.FamilyNames, client.Nationality, client.Sex,
		nullTime(client.BirthDate), client.Age,
		client.IsBanned, client.BanLevel, client.BanDuration, client.BanReason,
		client.BanDescription, client.BanStartDate, client.BanEndDate,
		client.DocumentImage, client.CreatedAt, client.UpdatedAt,
	}
}

func scanClient(row *sql.Row) (*models.Client, error) {
	var (
		client          models.Client
		id              uuid.UUID
		nationalID      string
		establishmentID uuid.UUID
		birthDate       sql.NullTime
	)
	err := row.Scan(
		&id, &nationalID, &establishmentID,
		&client.GivenNames, &client.FamilyNames, &client.Nationality, &client.Sex,
		&birthDate, &client.Age,
		&client.IsBanned, &client.BanLevel, &client.BanDuration, &client.BanReason,
		&client.BanDescription, &client.BanStartDate, &client.BanEndDate,
		&client.DocumentImage, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan client: %w", err)
	}
	client.ID = domain.ClientID(id)
	client.NationalID = domain.NationalID(nationalID)
	client.EstablishmentID = domain.EstablishmentID(establishmentID)
	if birthDate.Valid {
		client.BirthDate = birthDate.Time
	}
	return &client, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
