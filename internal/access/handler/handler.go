// Package handler exposes the access engine over HTTP: scan, accept, ban and
// unban. Authentication middleware resolves the actor before these handlers
// run; they only read it from context.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Escana/app-escana01-production-sub000/internal/access"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/httputil"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// Service defines the access engine operations the handler needs.
type Service interface {
	Scan(ctx context.Context, actor domain.Actor, image []byte) (*access.AcceptResult, error)
	Accept(ctx context.Context, actor domain.Actor, fields domain.IdentityFields, opts access.AcceptOptions) (*access.AcceptResult, error)
	Ban(ctx context.Context, actor domain.Actor, fields domain.IdentityFields, req access.BanRequest) (*models.Client, error)
	Unban(ctx context.Context, actor domain.Actor, nationalID domain.NationalID) (*models.Client, error)
}

// Handler handles the access endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates an access Handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Register mounts the access routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/access", func(r chi.Router) {
		r.Post("/scan", h.handleScan)
		r.Post("/accept", h.handleAccept)
		r.Post("/ban", h.handleBan)
		r.Post("/unban", h.handleUnban)
	})
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := requestcontext.Actor(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "actor missing from context despite auth middleware")
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.Actor{}, false
	}
	return actor, true
}

func (h *Handler) handleScan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[*ScanRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Scan(r.Context(), actor, req.ParsedImage())
	if err != nil {
		h.logger.WarnContext(r.Context(), "scan failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[*AcceptRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.Accept(r.Context(), actor, req.ParsedFields(),
		access.AcceptOptions{DocumentImage: req.DocumentImage})
	if err != nil {
		h.logger.WarnContext(r.Context(), "accept failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

func (h *Handler) handleBan(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[*BanActionRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.service.Ban(r.Context(), actor, req.ParsedFields(), req.BanRequest())
	if err != nil {
		h.logger.WarnContext(r.Context(), "ban failed",
			"level", req.Level, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClient(client))
}

func (h *Handler) handleUnban(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.Decode[*UnbanRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.service.Unban(r.Context(), actor, req.ParsedNationalID())
	if err != nil {
		h.logger.WarnContext(r.Context(), "unban failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClient(client))
}
