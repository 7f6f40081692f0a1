package service

import (
	"context"
	"log/slog"

	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// AuditPublisher receives the audit events the engine emits.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// auditEmitter shapes engine actions into audit events. Emission comes in two
// strengths: best-effort for the accept path (a lost operations event must
// not deny entry) and mandatory for ban transitions, where a failed append
// aborts the surrounding transaction.
type auditEmitter struct {
	publisher AuditPublisher
	logger    *slog.Logger
}

func newAuditEmitter(publisher AuditPublisher, logger *slog.Logger) *auditEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &auditEmitter{publisher: publisher, logger: logger}
}

func (e *auditEmitter) event(ctx context.Context, action audit.AuditEvent, client *models.Client, actor domain.Actor) audit.Event {
	event := audit.Event{
		Category:  action.Category(),
		Timestamp: requestcontext.Now(ctx),
		Action:    string(action),
		ActorID:   actor.ID,
		ActorRole: actor.Role,
		RequestID: requestcontext.RequestID(ctx),
		Device:    requestcontext.Device(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),

		EstablishmentID: actor.EstablishmentID,
	}
	if client != nil {
		event.ClientID = client.ID
		event.NationalIDHash = audit.HashNationalID(client.NationalID)
	}
	return event
}

// emitBestEffort records an event, logging instead of failing the operation.
func (e *auditEmitter) emitBestEffort(ctx context.Context, action audit.AuditEvent, client *models.Client, actor domain.Actor, decision, reason string) {
	if e.publisher == nil {
		return
	}
	event := e.event(ctx, action, client, actor)
	event.Decision = decision
	event.Reason = reason
	if err := e.publisher.Emit(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(action), "error", err)
	}
}

// emitRequired records an event whose loss must abort the operation. Ban
// transitions use it inside the transaction.
func (e *auditEmitter) emitRequired(ctx context.Context, action audit.AuditEvent, client *models.Client, actor domain.Actor, decision, reason string) error {
	if e.publisher == nil {
		return nil
	}
	event := e.event(ctx, action, client, actor)
	event.Decision = decision
	event.Reason = reason
	if err := e.publisher.Emit(ctx, event); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record audit event")
	}
	return nil
}
