package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/Escana/app-escana01-production-sub000/pkg/domain-errors"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *HTTPGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPGateway(server.URL, 5*time.Second)
}

func TestExtract_Success(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)

		var req extractionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Image, "image must be sent base64-encoded")

		json.NewEncoder(w).Encode(extractionResponse{
			NationalID:  " 12.345.678-k ",
			GivenNames:  "Pedro Antonio",
			FamilyNames: "Soto Minte",
			Nationality: "CHL",
			Sex:         "m",
			BirthDate:   "1990-04-02",
			Age:         35,
		})
	})

	fields, err := gateway.Extract(context.Background(), []byte("fake-image"))
	require.NoError(t, err)

	assert.Equal(t, "12.345.678-K", fields.NationalID.String(), "rut is normalized at the boundary")
	assert.Equal(t, "Pedro Antonio", fields.GivenNames)
	assert.Equal(t, "M", fields.Sex)
	assert.Equal(t, 35, fields.Age)
	assert.Equal(t, time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC), fields.BirthDate)
}

func TestExtract_EmptyNationalIDIsCritical(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractionResponse{
			NationalID: "   ",
			GivenNames: "Pedro",
		})
	})

	_, err := gateway.Extract(context.Background(), []byte("fake-image"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeCriticalData))
}

func TestExtract_ServiceReportedFailure(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractionResponse{Error: "document unreadable"})
	})

	_, err := gateway.Extract(context.Background(), []byte("fake-image"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExternal))
}

func TestExtract_ServiceDown(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := gateway.Extract(context.Background(), []byte("fake-image"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExternal))
}

func TestExtract_RequiresImage(t *testing.T) {
	gateway := NewHTTPGateway("http://localhost:0", time.Second)

	_, err := gateway.Extract(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestParseBirthDate_ToleratedLayouts(t *testing.T) {
	want := time.Date(1988, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"1988-12-31", "31-12-1988", "31/12/1988"} {
		assert.Equal(t, want, parseBirthDate(raw), raw)
	}
	assert.True(t, parseBirthDate("not a date").IsZero())
}
