package testutil

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/requestcontext"
)

// NewActor builds a staff actor with fresh IDs for tests.
func NewActor(role domain.Role) domain.Actor {
	return domain.Actor{
		ID:              domain.EmployeeID(uuid.New()),
		Role:            role,
		EstablishmentID: domain.EstablishmentID(uuid.New()),
	}
}

// WithActor adds an actor to the request context, simulating what the auth
// middleware does for authenticated staff requests.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithTime pins the request-scoped clock, simulating the request-time
// middleware for handler tests that assert on timestamps.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
