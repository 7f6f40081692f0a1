// Package service hosts the access decision engine: the orchestrator that
// turns a validated scan into an accept/deny decision, and a staff action
// into a ban or unban transition. All multi-write sequences run under the
// transaction runner so a partial ban can never survive a crash.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Escana/app-escana01-production-sub000/internal/access"
	accessmetrics "github.com/Escana/app-escana01-production-sub000/internal/access/metrics"
	"github.com/Escana/app-escana01-production-sub000/internal/ban"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	clientservice "github.com/Escana/app-escana01-production-sub000/internal/client/service"
	"github.com/Escana/app-escana01-production-sub000/internal/guestlist"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	"github.com/Escana/app-escana01-production-sub000/internal/ocr"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// Dependencies are the collaborators the engine orchestrates. Registry,
// Visits and Incidents are required; the rest degrade to no-ops when nil.
type Dependencies struct {
	Registry  *clientservice.Registry
	Visits    visit.Store
	Incidents incident.Store
	Guests    guestlist.Checker
	Gateway   ocr.Gateway
	Publisher AuditPublisher
	Tx        tx.Runner
}

// Engine drives the accept and ban/unban flows.
type Engine struct {
	registry  *clientservice.Registry
	visits    visit.Store
	incidents incident.Store
	guests    guestlist.Checker
	gateway   ocr.Gateway
	emitter   *auditEmitter
	txRunner  tx.Runner
	metrics   *accessmetrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *accessmetrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine constructs the decision engine.
func NewEngine(deps Dependencies, opts ...Option) *Engine {
	e := &Engine{
		registry:  deps.Registry,
		visits:    deps.Visits,
		incidents: deps.Incidents,
		guests:    deps.Guests,
		gateway:   deps.Gateway,
		txRunner:  deps.Tx,
		logger:    slog.Default(),
		tracer:    otel.Tracer("access"),
	}
	if e.txRunner == nil {
		e.txRunner = tx.NoopRunner{}
	}
	for _, opt := range opts {
		opt(e)
	}
	e.emitter = newAuditEmitter(deps.Publisher, e.logger)
	return e
}

// Scan runs the full entry pipeline: extract identity fields from the
// document image, then evaluate acceptance. Extraction failures stop the
// pipeline before any lookup or write.
func (e *Engine) Scan(ctx context.Context, actor domain.Actor, image []byte) (*access.AcceptResult, error) {
	ctx, span := e.tracer.Start(ctx, "access.scan")
	defer span.End()
	start := time.Now()
	defer e.metrics.ObserveOperation("scan", start)

	if err := actor.Valid(); err != nil {
		return nil, err
	}
	if e.gateway == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "no OCR gateway configured")
	}

	fields, err := e.gateway.Extract(ctx, image)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeCriticalData) {
			e.metrics.IncrementScanRejected()
		}
		return nil, err
	}
	return e.Accept(ctx, actor, *fields, access.AcceptOptions{})
}

// Accept evaluates entry for already-validated identity fields. A banned
// client yields a denied result with ban metadata, not an error; everything
// else is granted, with the client record created on first sight and a visit
// appended to the ledger.
func (e *Engine) Accept(ctx context.Context, actor domain.Actor, fields domain.IdentityFields, opts access.AcceptOptions) (*access.AcceptResult, error) {
	ctx, span := e.tracer.Start(ctx, "access.accept")
	defer span.End()
	start := time.Now()
	defer e.metrics.ObserveOperation("accept", start)

	if err := actor.Valid(); err != nil {
		return nil, err
	}
	if fields.NationalID.IsZero() {
		e.metrics.IncrementScanRejected()
		return nil, dErrors.New(dErrors.CodeCriticalData, "scan produced no national ID")
	}

	client, err := e.registry.Resolve(ctx, actor.EstablishmentID, fields.NationalID)
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}

	if client != nil && client.IsBanned {
		span.SetAttributes(attribute.String("access.status", string(access.StatusDenied)))
		e.emitter.emitBestEffort(ctx, audit.EventEntryDenied, client, actor,
			string(access.StatusDenied), client.BanReason)
		e.metrics.IncrementAccept(string(access.StatusDenied), string(ban.ClassBaneado))
		return &access.AcceptResult{
			Status:         access.StatusDenied,
			Classification: ban.ClassBaneado,
			Client:         client,
			BanInfo: &access.BanInfo{
				GivenNames:  client.GivenNames,
				FamilyNames: client.FamilyNames,
				Level:       client.BanLevel,
				Reason:      client.BanReason,
				EndDate:     client.BanEndDate,
			},
		}, nil
	}

	classification := ban.Classify(false, e.guestListed(ctx, actor.EstablishmentID, fields.NationalID))
	now := requestcontext.Now(ctx)

	if client == nil {
		client, err = e.registry.CreateFromScan(ctx, fields, actor, opts.DocumentImage, false)
		if err != nil {
			return nil, err
		}
		e.emitter.emitBestEffort(ctx, audit.EventClientCreated, client, actor,
			string(access.StatusGranted), "first scan")
	} else if opts.DocumentImage != "" && client.DocumentImage == "" {
		client.DocumentImage = opts.DocumentImage
		client.UpdatedAt = now
		if err := e.registry.Save(ctx, client); err != nil {
			return nil, err
		}
	}

	entry := &visit.Visit{
		ID:        domain.VisitID(uuid.New()),
		ClientID:  client.ID,
		EntryTime: now,
		Status:    visit.StatusActive,
	}
	if err := e.visits.Append(ctx, entry); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record visit")
	}

	span.SetAttributes(attribute.String("access.status", string(access.StatusGranted)))
	e.emitter.emitBestEffort(ctx, audit.EventEntryGranted, client, actor,
		string(access.StatusGranted), string(classification))
	e.metrics.IncrementAccept(string(access.StatusGranted), string(classification))
	return &access.AcceptResult{
		Status:         access.StatusGranted,
		Classification: classification,
		Client:         client,
		Visit:          entry,
	}, nil
}

// Ban applies a level 1..5 ban to a client, creating the record first when
// the person has never been scanned. The client write, the incident append
// and the audit event commit or roll back together. A level 0 request is a
// lift and routes through Unban.
func (e *Engine) Ban(ctx context.Context, actor domain.Actor, fields domain.IdentityFields, req access.BanRequest) (*models.Client, error) {
	ctx, span := e.tracer.Start(ctx, "access.ban")
	defer span.End()
	start := time.Now()
	defer e.metrics.ObserveOperation("ban", start)

	if err := actor.Valid(); err != nil {
		return nil, err
	}
	if req.Level == 0 {
		return e.Unban(ctx, actor, fields.NationalID)
	}
	if fields.NationalID.IsZero() {
		return nil, dErrors.New(dErrors.CodeCriticalData, "national ID is required to ban")
	}

	now := requestcontext.Now(ctx)
	state, err := ban.Compute(req.Level, req.Duration, req.Reason, req.Description, now)
	if err != nil {
		return nil, err
	}

	var client *models.Client
	err = e.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		client, err = e.registry.Resolve(ctx, actor.EstablishmentID, fields.NationalID)
		switch {
		case err == nil:
		case dErrors.HasCode(err, dErrors.CodeNotFound):
			if !fields.HasNames() {
				return dErrors.New(dErrors.CodeValidation,
					"given and family names are required to ban an unknown client")
			}
			client = models.New(domain.ClientID(uuid.New()), fields, actor.EstablishmentID, now)
		default:
			return err
		}

		if req.DocumentImage != "" {
			client.DocumentImage = req.DocumentImage
		}
		client.ApplyBan(state, now)
		if err := e.registry.Upsert(ctx, client); err != nil {
			return err
		}

		record := &incident.Incident{
			ID:              domain.IncidentID(uuid.New()),
			ClientID:        client.ID,
			Type:            incident.TypeFalseDocument,
			Description:     state.Description,
			Status:          incident.StatusResolved,
			Severity:        state.Level,
			Location:        actor.EstablishmentID.String(),
			ResolvedAt:      now,
			ResolutionNotes: banResolutionNotes(state),
			CreatedAt:       now,
		}
		if err := e.incidents.Append(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record incident")
		}

		return e.emitter.emitRequired(ctx, audit.EventBanApplied, client, actor,
			"banned", state.Reason)
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("ban.level", state.Level))
	e.metrics.IncrementBanApplied(strconv.Itoa(state.Level))
	return client, nil
}

// Unban lifts an active ban. Guards are refused before any read; lifting a
// client who is not banned is a no-op that leaves the record untouched.
func (e *Engine) Unban(ctx context.Context, actor domain.Actor, nationalID domain.NationalID) (*models.Client, error) {
	ctx, span := e.tracer.Start(ctx, "access.unban")
	defer span.End()
	start := time.Now()
	defer e.metrics.ObserveOperation("unban", start)

	if err := actor.Valid(); err != nil {
		return nil, err
	}
	if err := ban.CanLift(actor.Role); err != nil {
		return nil, err
	}
	if nationalID.IsZero() {
		return nil, dErrors.New(dErrors.CodeCriticalData, "national ID is required to lift a ban")
	}

	var (
		client *models.Client
		lifted bool
	)
	err := e.txRunner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		client, err = e.registry.Resolve(ctx, actor.EstablishmentID, nationalID)
		if err != nil {
			return err
		}
		if !client.IsBanned {
			return nil
		}

		previousReason := client.BanReason
		client.ApplyLift(requestcontext.Now(ctx))
		if err := e.registry.Save(ctx, client); err != nil {
			return err
		}
		lifted = true
		return e.emitter.emitRequired(ctx, audit.EventBanLifted, client, actor,
			"unbanned", previousReason)
	})
	if err != nil {
		return nil, err
	}

	if lifted {
		e.metrics.IncrementBanLifted()
	}
	return client, nil
}

func (e *Engine) guestListed(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) bool {
	if e.guests == nil {
		return false
	}
	listed, err := e.guests.IsListed(ctx, establishmentID, nationalID)
	if err != nil {
		// Guest list outage never blocks the door; the scan proceeds as
		// a regular visitor.
		e.logger.WarnContext(ctx, "guest list check failed, classifying as regular",
			"establishment_id", establishmentID, "error", err)
		return false
	}
	return listed
}

func banResolutionNotes(state ban.State) string {
	if state.EndDate == nil {
		return fmt.Sprintf("Ban nivel %d aplicado: %s (duración Permanente)", state.Level, state.Reason)
	}
	return fmt.Sprintf("Ban nivel %d aplicado: %s (duración %s días)", state.Level, state.Reason, state.Duration)
}
