package memory

import (
	"context"
	"sync"

	audit "github.com/Escana/app-escana01-production-sub000/pkg/platform/audit"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// InMemoryStore keeps audit events in memory, indexed by establishment.
// Used by unit tests and local development.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[domain.EstablishmentID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[domain.EstablishmentID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EstablishmentID] = append(s.events[event.EstablishmentID], event)
	return nil
}

// ListByEstablishment returns the events recorded for one establishment.
func (s *InMemoryStore) ListByEstablishment(_ context.Context, establishmentID domain.EstablishmentID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[establishmentID]...), nil
}

// ListAll returns every recorded event across establishments.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var all []audit.Event
	for _, events := range s.events {
		all = append(all, events...)
	}
	return all, nil
}

// Clear discards recorded events between test cases.
func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[domain.EstablishmentID][]audit.Event)
}
