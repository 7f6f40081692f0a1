// Package audit defines the transport-agnostic audit trail emitted by the
// access-control pipeline. Events fan out to stores and sinks (in-memory for
// tests, the PostgreSQL outbox + Kafka in production).
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: ban state
	// transitions and their incident records. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// denied entries.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine visibility: granted entries,
	// client creation. Can be sampled, shorter retention.
	CategoryOperations EventCategory = "operations"
)

// Event captures one action taken by the pipeline. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	Category        EventCategory
	Timestamp       time.Time
	Action          string
	EstablishmentID domain.EstablishmentID
	ClientID        domain.ClientID
	// NationalIDHash is a SHA-256 hash of the scanned rut. The trail stays
	// traceable per person without storing the raw identity string.
	NationalIDHash string
	ActorID        domain.EmployeeID
	ActorRole      domain.Role
	Decision       string
	Reason         string
	RequestID      string
	Device         string
	ClientIP       string
}

// AuditEvent names every action the pipeline records.
type AuditEvent string

const (
	EventEntryGranted  AuditEvent = "entry_granted"
	EventEntryDenied   AuditEvent = "entry_denied"
	EventClientCreated AuditEvent = "client_created"
	EventBanApplied    AuditEvent = "ban_applied"
	EventBanLifted     AuditEvent = "ban_lifted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventEntryGranted:  CategoryOperations,
	EventClientCreated: CategoryOperations,
	EventEntryDenied:   CategorySecurity,
	EventBanApplied:    CategoryCompliance,
	EventBanLifted:     CategoryCompliance,
}

// Category returns the category for an event, defaulting to operations for
// unknown actions so nothing is silently dropped.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}

// HashNationalID produces the pseudonymous subject hash stored on events.
func HashNationalID(nationalID domain.NationalID) string {
	sum := sha256.Sum256([]byte(nationalID))
	return hex.EncodeToString(sum[:])
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
