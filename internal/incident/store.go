package incident

import (
	"context"
	"sync"

	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// Store is the incident ledger contract: append and read, nothing else.
type Store interface {
	Append(ctx context.Context, incident *Incident) error
	ListByClient(ctx context.Context, clientID domain.ClientID) ([]*Incident, error)
}

// InMemory keeps incidents in memory for unit tests and local development.
type InMemory struct {
	mu        sync.RWMutex
	incidents []*Incident
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, incident *Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *incident
	s.incidents = append(s.incidents, &copied)
	return nil
}

func (s *InMemory) ListByClient(_ context.Context, clientID domain.ClientID) ([]*Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Incident
	for _, incident := range s.incidents {
		if incident.ClientID == clientID {
			copied := *incident
			result = append(result, &copied)
		}
	}
	return result, nil
}

// All returns a snapshot of the ledger. Used by the in-memory stats
// aggregation.
func (s *InMemory) All() []*Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Incident, 0, len(s.incidents))
	for _, incident := range s.incidents {
		copied := *incident
		result = append(result, &copied)
	}
	return result
}
