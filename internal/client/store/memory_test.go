package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/Escana/app-escana01-production-sub000/internal/ban"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/sentinel"
)

type ClientStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ClientStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestClientStoreSuite(t *testing.T) {
	suite.Run(t, new(ClientStoreSuite))
}

func (s *ClientStoreSuite) newClient(establishmentID domain.EstablishmentID, rut string) *models.Client {
	now := time.Now()
	return models.New(
		domain.ClientID(uuid.New()),
		domain.IdentityFields{
			NationalID:  domain.NationalID(rut),
			GivenNames:  "María José",
			FamilyNames: "Fernández Rojas",
			Nationality: "CHL",
			Sex:         "F",
			Age:         27,
		},
		establishmentID,
		now,
	)
}

// TestLookups verifies the store indexes clients by (establishment, rut).
func (s *ClientStoreSuite) TestLookups() {
	s.Run("finds by national ID after creation", func() {
		establishmentID := domain.EstablishmentID(uuid.New())
		client := s.newClient(establishmentID, "11111111-1")
		s.Require().NoError(s.store.Create(s.ctx, client))

		found, err := s.store.FindByNationalID(s.ctx, establishmentID, "11111111-1")
		s.Require().NoError(err)
		s.Equal(client.ID, found.ID)
	})

	s.Run("returns ErrNotFound for unknown rut", func() {
		_, err := s.store.FindByNationalID(s.ctx, domain.EstablishmentID(uuid.New()), "99999999-9")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, domain.ClientID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestEstablishmentIsolation verifies lookups are scoped per establishment.
func (s *ClientStoreSuite) TestEstablishmentIsolation() {
	establishmentA := domain.EstablishmentID(uuid.New())
	establishmentB := domain.EstablishmentID(uuid.New())

	client := s.newClient(establishmentA, "22222222-2")
	s.Require().NoError(s.store.Create(s.ctx, client))

	found, err := s.store.FindByNationalID(s.ctx, establishmentA, "22222222-2")
	s.Require().NoError(err)
	s.Equal(client.ID, found.ID)

	_, err = s.store.FindByNationalID(s.ctx, establishmentB, "22222222-2")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestUniqueness verifies the composite-key constraint the schema enforces.
func (s *ClientStoreSuite) TestUniqueness() {
	establishmentID := domain.EstablishmentID(uuid.New())

	first := s.newClient(establishmentID, "33333333-3")
	s.Require().NoError(s.store.Create(s.ctx, first))

	duplicate := s.newClient(establishmentID, "33333333-3")
	s.Require().ErrorIs(s.store.Create(s.ctx, duplicate), sentinel.ErrConflict)

	s.Run("same rut in another establishment is allowed", func() {
		other := s.newClient(domain.EstablishmentID(uuid.New()), "33333333-3")
		s.NoError(s.store.Create(s.ctx, other))
	})
}

// TestUpsert verifies the ban flow's insert-or-update semantics.
func (s *ClientStoreSuite) TestUpsert() {
	establishmentID := domain.EstablishmentID(uuid.New())
	now := time.Now()

	s.Run("inserts when absent", func() {
		client := s.newClient(establishmentID, "44444444-4")
		s.Require().NoError(s.store.Upsert(s.ctx, client))

		found, err := s.store.FindByNationalID(s.ctx, establishmentID, "44444444-4")
		s.Require().NoError(err)
		s.Equal(client.ID, found.ID)
	})

	s.Run("updates the surviving row on conflict", func() {
		original, err := s.store.FindByNationalID(s.ctx, establishmentID, "44444444-4")
		s.Require().NoError(err)

		incoming := s.newClient(establishmentID, "44444444-4")
		state, err := ban.Compute(3, "30", "documento falso", "", now)
		s.Require().NoError(err)
		incoming.ApplyBan(state, now)

		s.Require().NoError(s.store.Upsert(s.ctx, incoming))
		s.Equal(original.ID, incoming.ID, "upsert must adopt the surviving row's ID")

		found, err := s.store.FindByNationalID(s.ctx, establishmentID, "44444444-4")
		s.Require().NoError(err)
		s.True(found.IsBanned)
		s.Equal(3, found.BanLevel)
		s.Equal(original.CreatedAt.Unix(), found.CreatedAt.Unix())
	})
}

// TestConcurrentUpsertsSameKey verifies racing upserts of the same
// (establishment, rut) all succeed and collapse onto a single record.
func (s *ClientStoreSuite) TestConcurrentUpsertsSameKey() {
	establishmentID := domain.EstablishmentID(uuid.New())

	const writers = 16
	errs := make(chan error, writers)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.store.Upsert(s.ctx, s.newClient(establishmentID, "77777777-7"))
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	found, err := s.store.FindByNationalID(s.ctx, establishmentID, "77777777-7")
	s.Require().NoError(err)

	byID, err := s.store.FindByID(s.ctx, found.ID)
	s.Require().NoError(err)
	s.Equal(found.ID, byID.ID)
}

// TestUpdateKeepsIdentityKey verifies ban/unban updates cannot move a record
// to another rut or establishment.
func (s *ClientStoreSuite) TestUpdateKeepsIdentityKey() {
	establishmentID := domain.EstablishmentID(uuid.New())
	client := s.newClient(establishmentID, "55555555-5")
	s.Require().NoError(s.store.Create(s.ctx, client))

	mutated := client.Clone()
	mutated.NationalID = "66666666-6"
	s.Require().NoError(s.store.Update(s.ctx, mutated))

	found, err := s.store.FindByNationalID(s.ctx, establishmentID, "55555555-5")
	s.Require().NoError(err)
	s.Equal(client.ID, found.ID)
}
