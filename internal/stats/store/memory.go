package store

import (
	"context"
	"time"

	clientstore "github.com/Escana/app-escana01-production-sub000/internal/client/store"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	"github.com/Escana/app-escana01-production-sub000/internal/visit"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
)

// InMemory derives counts from the in-memory ledgers. Visits and incidents
// reference clients, so establishment scoping goes through the client store.
type InMemory struct {
	clients   *clientstore.InMemory
	visits    *visit.InMemory
	incidents *incident.InMemory
}

func NewInMemory(clients *clientstore.InMemory, visits *visit.InMemory, incidents *incident.InMemory) *InMemory {
	return &InMemory{clients: clients, visits: visits, incidents: incidents}
}

func (s *InMemory) establishmentClients(establishmentID domain.EstablishmentID) map[domain.ClientID]struct{} {
	ids := make(map[domain.ClientID]struct{})
	for _, client := range s.clients.All() {
		if client.EstablishmentID == establishmentID {
			ids[client.ID] = struct{}{}
		}
	}
	return ids
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (s *InMemory) CountVisits(_ context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	ids := s.establishmentClients(establishmentID)
	count := 0
	for _, v := range s.visits.All() {
		if _, ok := ids[v.ClientID]; ok && inWindow(v.EntryTime, from, to) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountIncidents(_ context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	ids := s.establishmentClients(establishmentID)
	count := 0
	for _, record := range s.incidents.All() {
		if _, ok := ids[record.ClientID]; ok && inWindow(record.CreatedAt, from, to) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) CountNewClients(_ context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (int, error) {
	count := 0
	for _, client := range s.clients.All() {
		if client.EstablishmentID == establishmentID && inWindow(client.CreatedAt, from, to) {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) clientSexes(establishmentID domain.EstablishmentID) map[domain.ClientID]string {
	sexes := make(map[domain.ClientID]string)
	for _, client := range s.clients.All() {
		if client.EstablishmentID == establishmentID {
			sexes[client.ID] = client.Sex
		}
	}
	return sexes
}

func (s *InMemory) CountVisitsBySex(_ context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error) {
	sexes := s.clientSexes(establishmentID)
	counts := make(map[string]int)
	for _, v := range s.visits.All() {
		if sex, ok := sexes[v.ClientID]; ok && inWindow(v.EntryTime, from, to) {
			counts[sex]++
		}
	}
	return counts, nil
}

func (s *InMemory) CountNewClientsBySex(_ context.Context, establishmentID domain.EstablishmentID, from, to time.Time) (map[string]int, error) {
	counts := make(map[string]int)
	for _, client := range s.clients.All() {
		if client.EstablishmentID == establishmentID && inWindow(client.CreatedAt, from, to) {
			counts[client.Sex]++
		}
	}
	return counts, nil
}
