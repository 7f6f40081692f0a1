//go:build integration

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Escana/app-escana01-production-sub000/internal/ban"
	"github.com/Escana/app-escana01-production-sub000/internal/client/models"
	"github.com/Escana/app-escana01-production-sub000/internal/incident"
	"github.com/Escana/app-escana01-production-sub000/pkg/domain"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/sentinel"
	"github.com/Escana/app-escana01-production-sub000/pkg/platform/tx"
	"github.com/Escana/app-escana01-production-sub000/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite

	pg              *containers.PostgresContainer
	store           *PostgresStore
	establishmentID domain.EstablishmentID
	now             time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pg != nil {
		_ = s.pg.DB.Close()
		_ = s.pg.Container.Terminate(context.Background())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
	s.establishmentID = domain.EstablishmentID(uuid.New())
	s.now = time.Now().UTC().Truncate(time.Microsecond)
}

func (s *PostgresStoreSuite) newClient(rut string) *models.Client {
	nationalID, err := domain.ParseNationalID(rut)
	s.Require().NoError(err)
	return models.New(domain.ClientID(uuid.New()), domain.IdentityFields{
		NationalID:  nationalID,
		GivenNames:  "Ana",
		FamilyNames: "Muñoz Díaz",
		Nationality: "CHL",
		Sex:         "F",
		BirthDate:   time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC),
		Age:         36,
	}, s.establishmentID, s.now)
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	client := s.newClient("12345678-5")
	s.Require().NoError(s.store.Create(ctx, client))

	found, err := s.store.FindByNationalID(ctx, s.establishmentID, client.NationalID)
	s.Require().NoError(err)

	assert.Equal(s.T(), client.ID, found.ID)
	assert.Equal(s.T(), client.NationalID, found.NationalID)
	assert.Equal(s.T(), "Ana", found.GivenNames)
	assert.Equal(s.T(), 36, found.Age)
	assert.False(s.T(), found.IsBanned)
	assert.True(s.T(), client.BirthDate.Equal(found.BirthDate))
}

func (s *PostgresStoreSuite) TestFindMissingIsNotFound() {
	nationalID, err := domain.ParseNationalID("9999999-9")
	s.Require().NoError(err)

	_, err = s.store.FindByNationalID(context.Background(), s.establishmentID, nationalID)

	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateCreateConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newClient("12345678-5")))

	err := s.store.Create(ctx, s.newClient("12345678-5"))

	assert.ErrorIs(s.T(), err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestSameRutOtherEstablishment() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newClient("12345678-5")))

	other := s.newClient("12345678-5")
	other.EstablishmentID = domain.EstablishmentID(uuid.New())

	assert.NoError(s.T(), s.store.Create(ctx, other))
}

func (s *PostgresStoreSuite) TestUpdatePersistsBanState() {
	ctx := context.Background()
	client := s.newClient("12345678-5")
	s.Require().NoError(s.store.Create(ctx, client))

	state, err := ban.Compute(4, "30", "Documento adulterado", "detalle", s.now)
	s.Require().NoError(err)
	client.ApplyBan(state, s.now)
	s.Require().NoError(s.store.Update(ctx, client))

	found, err := s.store.FindByNationalID(ctx, s.establishmentID, client.NationalID)
	s.Require().NoError(err)
	assert.True(s.T(), found.IsBanned)
	assert.Equal(s.T(), 4, found.BanLevel)
	assert.Equal(s.T(), "Documento adulterado", found.BanReason)
	require.NotNil(s.T(), found.BanEndDate)
	assert.True(s.T(), s.now.Add(30*24*time.Hour).Equal(*found.BanEndDate))
	assert.NoError(s.T(), found.CheckBanInvariant())
}

func (s *PostgresStoreSuite) TestUpsertAdoptsSurvivingRow() {
	ctx := context.Background()
	existing := s.newClient("12345678-5")
	s.Require().NoError(s.store.Create(ctx, existing))

	// A concurrent writer built its own record for the same person.
	incoming := s.newClient("12345678-5")
	state, err := ban.Compute(2, ban.DurationPermanent, "Riña", "", s.now)
	s.Require().NoError(err)
	incoming.ApplyBan(state, s.now)

	s.Require().NoError(s.store.Upsert(ctx, incoming))

	assert.Equal(s.T(), existing.ID, incoming.ID, "upsert must adopt the surviving row's id")
	found, err := s.store.FindByNationalID(ctx, s.establishmentID, existing.NationalID)
	s.Require().NoError(err)
	assert.Equal(s.T(), existing.ID, found.ID)
	assert.True(s.T(), found.IsBanned)
	assert.Equal(s.T(), 2, found.BanLevel)
}

func (s *PostgresStoreSuite) TestBanWritesRollBackTogether() {
	ctx := context.Background()
	runner := tx.NewSQLRunner(s.pg.DB)
	incidents := incident.NewPostgres(s.pg.DB)

	client := s.newClient("12345678-5")
	state, err := ban.Compute(3, "7", "Riña", "", s.now)
	s.Require().NoError(err)
	client.ApplyBan(state, s.now)

	boom := errors.New("audit sink down")
	err = runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Upsert(ctx, client); err != nil {
			return err
		}
		if err := incidents.Append(ctx, &incident.Incident{
			ID:         domain.IncidentID(uuid.New()),
			ClientID:   client.ID,
			Type:       incident.TypeFalseDocument,
			Status:     incident.StatusResolved,
			Severity:   3,
			ResolvedAt: s.now,
			CreatedAt:  s.now,
		}); err != nil {
			return err
		}
		return boom
	})
	s.Require().ErrorIs(err, boom)

	_, err = s.store.FindByNationalID(ctx, s.establishmentID, client.NationalID)
	assert.ErrorIs(s.T(), err, sentinel.ErrNotFound, "the client write must roll back with the failed transaction")

	var count int
	s.Require().NoError(s.pg.DB.QueryRow(`SELECT COUNT(*) FROM incidents`).Scan(&count))
	assert.Zero(s.T(), count, "the incident write must roll back with the failed transaction")
}
