package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	audit "github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
	txcontext "github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern. Events
// written inside a ban/unban transaction land in the outbox atomically with
// the client and incident rows; the outbox worker ships them to Kafka.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store that writes to the outbox.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Event for deserialization by downstream consumers.
type outboxPayload struct {
	ID              string `json:"ID"`
	Category        string `json:"Category"`
	Timestamp       string `json:"Timestamp"`
	Action          string `json:"Action"`
	EstablishmentID string `json:"EstablishmentID,omitempty"`
	ClientID        string `json:"ClientID,omitempty"`
	NationalIDHash  string `json:"NationalIDHash,omitempty"`
	ActorID         string `json:"ActorID,omitempty"`
	ActorRole       string `json:"ActorRole,omitempty"`
	Decision        string `json:"Decision,omitempty"`
	Reason          string `json:"Reason,omitempty"`
	RequestID       string `json:"RequestID,omitempty"`
	Device          string `json:"Device,omitempty"`
	ClientIP        string `json:"ClientIP,omitempty"`
}

// Append writes an audit event to the outbox table for Kafka publishing.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	// Category always derives from the action; the map in pkg/platform/audit
	// is the source of truth.
	category := audit.AuditEvent(event.Action).Category()

	payload := outboxPayload{
		ID:             eventID.String(),
		Category:       string(category),
		Timestamp:      event.Timestamp.Format(time.RFC3339Nano),
		Action:         event.Action,
		NationalIDHash: event.NationalIDHash,
		Decision:       event.Decision,
		Reason:         event.Reason,
		RequestID:      event.RequestID,
		Device:         event.Device,
		ClientIP:       event.ClientIP,
	}
	if !event.EstablishmentID.IsNil() {
		payload.EstablishmentID = event.EstablishmentID.String()
	}
	if !event.ClientID.IsNil() {
		payload.ClientID = event.ClientID.String()
	}
	if !event.ActorID.IsNil() {
		payload.ActorID = event.ActorID.String()
		payload.ActorRole = string(event.ActorRole)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	aggregateType := "audit"
	aggregateID := eventID.String()
	if !event.ClientID.IsNil() {
		aggregateType = "client"
		aggregateID = event.ClientID.String()
	}

	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.New(), // outbox entry ID
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}
