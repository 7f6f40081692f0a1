package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Escana/app-escana01-production-sub000/internal/access"
	accessservice "github.com/Escana/app-escana01-production-sub000/internal/access/service"
	"github.com/Escana/app-escana01-production-sub000/internal/ban"
	clientservice "github.com/Escana/app-escana01-production-sub000/internal/client/service"
	clientstore "github.com/Escana/app-escana01-production-sub000/internal/client/store"
	"github.com/Escana/app-escana01-production-sub000/internal/guestlist"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/retry"
	"github.com/Escana/app-escana01-production-sub000/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite

	router *chi.Mux
	actor  domain.Actor
	now    time.Time
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	registry := clientservice.NewRegistry(clientstore.NewInMemory(),
		clientservice.WithReadRetry(retry.Policy{MaxAttempts: 1}))
	engine := accessservice.NewEngine(accessservice.Dependencies{
		Registry:  registry,
		Visits:    visit.NewInMemory(),
		Incidents: incident.NewInMemory(),
		Guests:    guestlist.NewInMemory(),
	})

	s.router = chi.NewRouter()
	New(engine, nil).Register(s.router)

	s.actor = testutil.NewActor(domain.RoleAdmin)
	s.now = time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)
}

func (s *HandlerSuite) do(path string, body any, actor *domain.Actor) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req = testutil.WithTime(req, s.now)
	if actor != nil {
		req = testutil.WithActor(req, *actor)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) acceptBody(rut string) map[string]any {
	return map[string]any{
		"national_id":  rut,
		"given_names":  "María José",
		"family_names": "González Pérez",
		"nationality":  "CHL",
		"sex":          "F",
		"birth_date":   "1995-06-12",
		"age":          30,
	}
}

func (s *HandlerSuite) TestAcceptGrantsEntry() {
	rec := s.do("/access/accept", s.acceptBody("12345678-5"), &s.actor)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp AcceptResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), string(access.StatusGranted), resp.Status)
	assert.Equal(s.T(), string(ban.ClassRegular), resp.Classification)
	require.NotNil(s.T(), resp.Client)
	assert.Equal(s.T(), "12345678-5", resp.Client.NationalID)
	require.NotNil(s.T(), resp.Visit)
	assert.Equal(s.T(), s.now, resp.Visit.EntryTime)
}

func (s *HandlerSuite) TestAcceptBannedClientReturnsDenial() {
	banBody := s.acceptBody("12345678-5")
	banBody["level"] = 3
	banBody["duration"] = "7"
	banBody["reason"] = "Documento adulterado"
	require.Equal(s.T(), http.StatusOK, s.do("/access/ban", banBody, &s.actor).Code)

	rec := s.do("/access/accept", s.acceptBody("12345678-5"), &s.actor)

	require.Equal(s.T(), http.StatusOK, rec.Code, "a denial is a successful evaluation")
	var resp AcceptResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(s.T(), string(access.StatusDenied), resp.Status)
	require.NotNil(s.T(), resp.Ban)
	assert.Equal(s.T(), 3, resp.Ban.Level)
	assert.Equal(s.T(), "Documento adulterado", resp.Ban.Reason)
	assert.Nil(s.T(), resp.Visit)
}

func (s *HandlerSuite) TestAcceptMissingNationalID() {
	body := s.acceptBody("")

	rec := s.do("/access/accept", body, &s.actor)

	assert.Equal(s.T(), http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerSuite) TestAcceptMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/access/accept", bytes.NewReader([]byte("{not json")))
	req = testutil.WithActor(req, s.actor)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestBanRejectsMissingReason() {
	body := s.acceptBody("12345678-5")
	body["level"] = 2
	body["duration"] = "7"

	rec := s.do("/access/ban", body, &s.actor)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestBanRejectsBadLevel() {
	body := s.acceptBody("12345678-5")
	body["level"] = 9
	body["duration"] = "7"
	body["reason"] = "Riña"

	rec := s.do("/access/ban", body, &s.actor)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestUnbanForbiddenForGuardia() {
	body := s.acceptBody("12345678-5")
	body["level"] = 3
	body["duration"] = "7"
	body["reason"] = "Riña"
	require.Equal(s.T(), http.StatusOK, s.do("/access/ban", body, &s.actor).Code)

	guardia := testutil.NewActor(domain.RoleGuardia)
	guardia.EstablishmentID = s.actor.EstablishmentID
	rec := s.do("/access/unban", map[string]any{"national_id": "12345678-5"}, &guardia)

	assert.Equal(s.T(), http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestUnbanClearsBan() {
	body := s.acceptBody("12345678-5")
	body["level"] = 3
	body["duration"] = "Permanente"
	body["reason"] = "Riña"
	require.Equal(s.T(), http.StatusOK, s.do("/access/ban", body, &s.actor).Code)

	rec := s.do("/access/unban", map[string]any{"national_id": "12345678-5"}, &s.actor)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	var resp ClientResponse
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(s.T(), resp.IsBanned)
	assert.Zero(s.T(), resp.BanLevel)
}

func (s *HandlerSuite) TestUnbanUnknownClient() {
	rec := s.do("/access/unban", map[string]any{"national_id": "9999999-9"}, &s.actor)

	assert.Equal(s.T(), http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestMissingActorIsServerError() {
	rec := s.do("/access/accept", s.acceptBody("12345678-5"), nil)

	assert.Equal(s.T(), http.StatusInternalServerError, rec.Code)
}
