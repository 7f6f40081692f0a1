// Package handler exposes client record lookups: the stored identity plus
// the visit and incident history staff review before a manual decision.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/httputil"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// Resolver looks up a client record within an establishment.
type Resolver interface {
	Resolve(ctx context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (*models.Client, error)
}

// Handler handles the client lookup endpoints.
type Handler struct {
	logger    *slog.Logger
	clients   Resolver
	visits    visit.Store
	incidents incident.Store
}

// New creates a client Handler.
func New(clients Resolver, visits visit.Store, incidents incident.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, clients: clients, visits: visits, incidents: incidents}
}

// Register mounts the client routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/clients/{nationalID}", h.handleGetClient)
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := requestcontext.Actor(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware")
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	nationalID, err := domain.ParseNationalID(chi.URLParam(r, "nationalID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	client, err := h.clients.Resolve(ctx, actor.EstablishmentID, nationalID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	visits, err := h.visits.ListByClient(ctx, client.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "visit history lookup failed", "client_id", client.ID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load visit history"))
		return
	}
	incidents, err := h.incidents.ListByClient(ctx, client.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "incident history lookup failed", "client_id", client.ID, "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load incident history"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromProfile(client, visits, incidents))
}

// ProfileResponse is the HTTP response for GET /clients/{nationalID}.
type ProfileResponse struct {
	ID          string `json:"id"`
	NationalID  string `json:"national_id"`
	GivenNames  string `json:"given_names"`
	FamilyNames string `json:"family_names"`
	Nationality string `json:"nationality,omitempty"`
	Sex         string `json:"sex,omitempty"`
	BirthDate   string `json:"birth_date,omitempty"`
	Age         int    `json:"age,omitempty"`

	IsBanned     bool       `json:"is_banned"`
	BanLevel     int        `json:"ban_level,omitempty"`
	BanDuration  string     `json:"ban_duration,omitempty"`
	BanReason    string     `json:"ban_reason,omitempty"`
	BanStartDate *time.Time `json:"ban_start_date,omitempty"`
	BanEndDate   *time.Time `json:"ban_end_date,omitempty"`

	Visits    []VisitEntry    `json:"visits"`
	Incidents []IncidentEntry `json:"incidents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisitEntry is one visit in the profile history.
type VisitEntry struct {
	ID        string    `json:"id"`
	EntryTime time.Time `json:"entry_time"`
	Status    string    `json:"status"`
}

// IncidentEntry is one incident in the profile history.
type IncidentEntry struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	Description     string    `json:"description,omitempty"`
	Status          string    `json:"status"`
	Severity        int       `json:"severity"`
	ResolutionNotes string    `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromProfile assembles the profile response.
func FromProfile(client *models.Client, visits []*visit.Visit, incidents []*incident.Incident) *ProfileResponse {
	resp := &ProfileResponse{
		ID:           client.ID.String(),
		NationalID:   client.NationalID.String(),
		GivenNames:   client.GivenNames,
		FamilyNames:  client.FamilyNames,
		Nationality:  client.Nationality,
		Sex:          client.Sex,
		Age:          client.Age,
		IsBanned:     client.IsBanned,
		BanLevel:     client.BanLevel,
		BanDuration:  client.BanDuration,
		BanReason:    client.BanReason,
		BanStartDate: client.BanStartDate,
		BanEndDate:   client.BanEndDate,
		Visits:       make([]VisitEntry, 0, len(visits)),
		Incidents:    make([]IncidentEntry, 0, len(incidents)),
		CreatedAt:    client.CreatedAt,
		UpdatedAt:    client.UpdatedAt,
	}
	if !client.BirthDate.IsZero() {
		resp.BirthDate = client.BirthDate.Format("2006-01-02")
	}
	for _, v := range visits {
		resp.Visits = append(resp.Visits, VisitEntry{
			ID:        v.ID.String(),
			EntryTime: v.EntryTime,
			Status:    v.Status,
		})
	}
	for _, record := range incidents {
		resp.Incidents = append(resp.Incidents, IncidentEntry{
			ID:              record.ID.String(),
			Type:            record.Type,
			Description:     record.Description,
			Status:          record.Status,
			Severity:        record.Severity,
			ResolutionNotes: record.ResolutionNotes,
			CreatedAt:       record.CreatedAt,
		})
	}
	return resp
}
