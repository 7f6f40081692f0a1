package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	clientservice "github.com/Escana/app-escana01-production-sub000/internal/client/service"
	clientstore "github.com/Escana/app-escana01-production-sub000/internal/client/store"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/retry"
	"github.com/Escana/app-escana01-production-sub000/pkg/testutil"
)

type ClientHandlerSuite struct {
	suite.Suite

	clients   *clientstore.InMemory
	visits    *visit.InMemory
	incidents *incident.InMemory
	router    *chi.Mux
	actor     domain.Actor
	now       time.Time
}

func TestClientHandlerSuite(t *testing.T) {
	suite.Run(t, new(ClientHandlerSuite))
}

func (s *ClientHandlerSuite) SetupTest() {
	s.clients = clientstore.NewInMemory()
	s.visits = visit.NewInMemory()
	s.incidents = incident.NewInMemory()

	registry := clientservice.NewRegistry(s.clients,
		clientservice.WithReadRetry(retry.Policy{MaxAttempts: 1}))

	s.router = chi.NewRouter()
	New(registry, s.visits, s.incidents, nil).Register(s.router)

	s.actor = testutil.NewActor(domain.RoleGuardia)
	s.now = time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
}

func (s *ClientHandlerSuite) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = testutil.WithActor(req, s.actor)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *ClientHandlerSuite) seed(rut string) *models.Client {
	nationalID, err := domain.ParseNationalID(rut)
	s.Require().NoError(err)
	client := models.New(domain.ClientID(uuid.New()), domain.IdentityFields{
		NationalID:  nationalID,
		GivenNames:  "Pedro",
		FamilyNames: "Soto Rojas",
	}, s.actor.EstablishmentID, s.now)
	s.Require().NoError(s.clients.Create(context.Background(), client))
	return client
}

func (s *ClientHandlerSuite) TestGetClientWithHistory() {
	client := s.seed("12345678-5")
	s.Require().NoError(s.visits.Append(context.Background(), &visit.Visit{
		ID:        domain.VisitID(uuid.New()),
		ClientID:  client.ID,
		EntryTime: s.now,
		Status:    visit.StatusActive,
	}))
	s.Require().NoError(s.incidents.Append(context.Background(), &incident.Incident{
		ID:        domain.IncidentID(uuid.New()),
		ClientID:  client.ID,
		Type:      incident.TypeFalseDocument,
		Status:    incident.StatusResolved,
		Severity:  3,
		CreatedAt: s.now,
	}))

	rec := s.get("/clients/12345678-5")

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp ProfileResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), "12345678-5", resp.NationalID)
	assert.Equal(s.T(), "Pedro", resp.GivenNames)
	require.Len(s.T(), resp.Visits, 1)
	assert.Equal(s.T(), visit.StatusActive, resp.Visits[0].Status)
	require.Len(s.T(), resp.Incidents, 1)
	assert.Equal(s.T(), incident.TypeFalseDocument, resp.Incidents[0].Type)
	assert.Equal(s.T(), 3, resp.Incidents[0].Severity)
}

func (s *ClientHandlerSuite) TestGetClientEmptyHistory() {
	s.seed("12345678-5")

	rec := s.get("/clients/12345678-5")

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp ProfileResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(s.T(), resp.Visits)
	assert.Empty(s.T(), resp.Visits)
	assert.Empty(s.T(), resp.Incidents)
}

func (s *ClientHandlerSuite) TestGetClientNotFound() {
	rec := s.get("/clients/9999999-9")

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *ClientHandlerSuite) TestGetClientOtherEstablishmentHidden() {
	client := s.seed("12345678-5")
	client.EstablishmentID = domain.EstablishmentID(uuid.New())
	// Re-seed under a different establishment only.
	s.clients = clientstore.NewInMemory()
	registry := clientservice.NewRegistry(s.clients,
		clientservice.WithReadRetry(retry.Policy{MaxAttempts: 1}))
	s.router = chi.NewRouter()
	New(registry, s.visits, s.incidents, nil).Register(s.router)
	s.Require().NoError(s.clients.Create(context.Background(), client))

	rec := s.get("/clients/12345678-5")

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}
