package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Escana/app-escana01-production-sub000/internal/stats"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/testutil"
)

type stubService struct {
	lastDay time.Time
	result  *stats.DailyStats
	err     error
}

func (s *stubService) DailyCounts(_ context.Context, establishmentID domain.EstablishmentID, day time.Time) (*stats.DailyStats, error) {
	s.lastDay = day
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.EstablishmentID = establishmentID
	return &result, nil
}

func newRouter(svc Service) *chi.Mux {
	r := chi.NewRouter()
	New(svc, nil).Register(r)
	return r
}

func TestDailyStatsUsesDateParam(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	svc := &stubService{result: &stats.DailyStats{
		Day:          day,
		Visits:       12,
		Incidents:    2,
		NewClients:   3,
		VisitsBySex:  map[string]int{"F": 7, "M": 5},
		ClientsBySex: map[string]int{"F": 2, "M": 1},
	}}
	router := newRouter(svc)

	actor := testutil.NewActor(domain.RoleAdmin)
	req := httptest.NewRequest(http.MethodGet, "/stats/daily?date=2026-03-14", nil)
	req = testutil.WithActor(req, actor)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, day, svc.lastDay)

	var resp DailyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, actor.EstablishmentID.String(), resp.EstablishmentID)
	assert.Equal(t, "2026-03-14", resp.Date)
	assert.Equal(t, 12, resp.Visits)
	assert.Equal(t, 2, resp.Incidents)
	assert.Equal(t, 3, resp.NewClients)
	assert.Equal(t, map[string]int{"F": 7, "M": 5}, resp.VisitsBySex)
	assert.Equal(t, map[string]int{"F": 2, "M": 1}, resp.ClientsBySex)
}

func TestDailyStatsDefaultsToRequestTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 4, 30, 0, 0, time.UTC)
	svc := &stubService{result: &stats.DailyStats{Day: now.Truncate(24 * time.Hour)}}
	router := newRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/stats/daily", nil)
	req = testutil.WithActor(req, testutil.NewActor(domain.RoleAdmin))
	req = testutil.WithTime(req, now)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, now, svc.lastDay)
}

func TestDailyStatsRejectsBadDate(t *testing.T) {
	router := newRouter(&stubService{result: &stats.DailyStats{}})

	req := httptest.NewRequest(http.MethodGet, "/stats/daily?date=14-03-2026", nil)
	req = testutil.WithActor(req, testutil.NewActor(domain.RoleAdmin))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyStatsRequiresActor(t *testing.T) {
	router := newRouter(&stubService{result: &stats.DailyStats{}})

	req := httptest.NewRequest(http.MethodGet, "/stats/daily", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
