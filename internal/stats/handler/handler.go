// Package handler exposes the daily stats endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Escana/app-escana01-production-sub000/internal/stats"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/httputil"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// Service defines the stats operation the handler needs.
type Service interface {
	DailyCounts(ctx context.Context, establishmentID domain.EstablishmentID, day time.Time) (*stats.DailyStats, error)
}

// Handler handles the stats endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a stats Handler.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// Register mounts the stats routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats/daily", h.handleDaily)
}

// DailyResponse is the HTTP response for GET /stats/daily.
type DailyResponse struct {
	EstablishmentID string `json:"establishment_id"`
	Date            string `json:"date"`
	Visits          int    `json:"visits"`
	Incidents       int    `json:"incidents"`
	NewClients      int    `json:"new_clients"`

	VisitsBySex  map[string]int `json:"visits_by_sex"`
	ClientsBySex map[string]int `json:"clients_by_sex"`
}

func (h *Handler) handleDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.Actor(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware")
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	day := requestcontext.Now(ctx)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	result, err := h.service.DailyCounts(ctx, actor.EstablishmentID, day)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, DailyResponse{
		EstablishmentID: result.EstablishmentID.String(),
		Date:            result.Day.Format("2006-01-02"),
		Visits:          result.Visits,
		Incidents:       result.Incidents,
		NewClients:      result.NewClients,
		VisitsBySex:     result.VisitsBySex,
		ClientsBySex:    result.ClientsBySex,
	})
}
