package store

import (
	"context"
	"sync"

	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/sentinel"
)

type clientKey struct {
	establishmentID domain.EstablishmentID
	nationalID      domain.NationalID
}

// InMemory is the map-backed client store used by unit tests and local
// development. The composite key gives the same uniqueness guarantee the
// PostgreSQL constraint provides.
type InMemory struct {
	mu    sync.RWMutex
	byKey map[clientKey]*models.Client
	byID  map[domain.ClientID]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{
		byKey: make(map[clientKey]*models.Client),
		byID:  make(map[domain.ClientID]*models.Client),
	}
}

func (s *InMemory) FindByNationalID(_ context.Context, establishmentID domain.EstablishmentID, nationalID domain.NationalID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.byKey[clientKey{establishmentID, nationalID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return client.Clone(), nil
}

// FindByID returns a client by primary key.
func (s *InMemory) FindByID(_ context.Context, id domain.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return client.Clone(), nil
}

func (s *InMemory) Create(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := clientKey{client.EstablishmentID, client.NationalID}
	if _, exists := s.byKey[key]; exists {
		return sentinel.ErrConflict
	}
	stored := client.Clone()
	s.byKey[key] = stored
	s.byID[stored.ID] = stored
	return nil
}

func (s *InMemory) Update(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[client.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	stored := client.Clone()
	// Identity key never changes on update.
	stored.NationalID = existing.NationalID
	stored.EstablishmentID = existing.EstablishmentID
	s.byKey[clientKey{existing.EstablishmentID, existing.NationalID}] = stored
	s.byID[client.ID] = stored
	return nil
}

func (s *InMemory) Upsert(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := clientKey{client.EstablishmentID, client.NationalID}
	if existing, ok := s.byKey[key]; ok {
		// Adopt the surviving row, like the SQL ON CONFLICT clause does.
		client.ID = existing.ID
		client.CreatedAt = existing.CreatedAt
	}
	stored := client.Clone()
	s.byKey[key] = stored
	s.byID[stored.ID] = stored
	return nil
}

// All returns a snapshot of every stored client. Used by the in-memory stats
// aggregation.
func (s *InMemory) All() []*models.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]*models.Client, 0, len(s.byID))
	for _, client := range s.byID {
		clients = append(clients, client.Clone())
	}
	return clients
}
