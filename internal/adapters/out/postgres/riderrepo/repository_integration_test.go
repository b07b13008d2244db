package riderrepo_test

import (
	"context"
	"testing"
	"time"

	"orderdispatch/internal/adapters/out/postgres/pgtest"
	"orderdispatch/internal/adapters/out/postgres/riderrepo"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/ports"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// RiderRepositoryIntegrationTestSuite covers rider persistence and the PostGIS
// candidate search.
type RiderRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *riderrepo.GormRiderRepository
	tracker    *MockAggregateTracker
}

func (suite *RiderRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *RiderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = riderrepo.NewGormRiderRepository(suite.database.DB, suite.tracker)
}

func (suite *RiderRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func (suite *RiderRepositoryIntegrationTestSuite) add(opts pgtest.RiderOptions) *rider.Rider {
	r := pgtest.NewRider(suite.T(), opts)
	suite.Require().NoError(suite.repository.Add(context.Background(), r))
	return r
}

func (suite *RiderRepositoryIntegrationTestSuite) TestAdd_RoundTrips() {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	added := suite.add(pgtest.RiderOptions{Km: 2, Status: rider.Busy, Rating: 4.5, Assignment: &orderID})

	got, err := suite.repository.Get(ctx, added.ID())

	suite.Require().NoError(err)
	suite.True(got.IsEqual(added))
	suite.Equal(added.Profile(), got.Profile())
	suite.Equal(rider.Busy, got.Status())
	suite.Require().NotNil(got.CurrentAssignment())
	suite.True(got.CurrentAssignment().IsEqual(orderID))
	suite.Equal([]string{"Thamel", "Baneshwor"}, got.Preferences().PreferredAreas)
	suite.Require().NotNil(got.Preferences().WorkingHours)
	suite.True(got.Verification().IsApproved)
	suite.InDelta(4.5, got.Performance().AverageRating, 1e-9)
	suite.True(got.Earnings().Total.IsZero())
	suite.Require().NotNil(got.CurrentLocation())
	suite.InDelta(added.CurrentLocation().Location.Lat(), got.CurrentLocation().Location.Lat(), 1e-9)
	suite.Equal(1, got.Version())

	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", added.ID(), added)
}

func (suite *RiderRepositoryIntegrationTestSuite) TestAdd_DuplicateRider_ReturnsConflict() {
	ctx := context.Background()
	first := suite.add(pgtest.RiderOptions{Km: 1})

	err := suite.repository.Add(ctx, first)

	suite.Require().ErrorIs(err, errs.ErrConflict)
}

func (suite *RiderRepositoryIntegrationTestSuite) TestGet_Unknown_ReturnsNotFound() {
	got, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Nil(got)
}

func (suite *RiderRepositoryIntegrationTestSuite) TestUpdate_VersionGuard() {
	ctx := context.Background()
	added := suite.add(pgtest.RiderOptions{Km: 1})

	first, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)

	orderA, orderB := kernel.NewUUID(), kernel.NewUUID()
	suite.Require().NoError(first.Assign(orderA))
	suite.Require().NoError(second.Assign(orderB))

	suite.Require().NoError(suite.repository.Update(ctx, first))
	suite.Equal(2, first.Version())

	err = suite.repository.Update(ctx, second)
	suite.Require().ErrorIs(err, ports.ErrConcurrentModification)

	stored, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)
	suite.Equal(rider.Busy, stored.Status())
	suite.True(stored.CurrentAssignment().IsEqual(orderA))
}

func (suite *RiderRepositoryIntegrationTestSuite) TestUpdate_KeepsNewerLocation() {
	ctx := context.Background()
	added := suite.add(pgtest.RiderOptions{Km: 1})

	loaded, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)

	// a ping lands between the read and the write
	pinged := pgtest.North(suite.T(), pgtest.Kathmandu(suite.T()), 4)
	pos, err := kernel.NewPosition(pinged, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(added.UpdateLocation(pos))
	suite.Require().NoError(suite.repository.UpdateLocation(ctx, added))

	loaded.ApplyDelivery(kernel.NewUUID(), decimal.NewFromInt(80), true, time.Now())
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	stored, err := suite.repository.Get(ctx, added.ID())
	suite.Require().NoError(err)
	suite.InDelta(pinged.Lat(), stored.CurrentLocation().Location.Lat(), 1e-9)
	suite.Equal(2, stored.Version())
}

func (suite *RiderRepositoryIntegrationTestSuite) TestFindCandidates_WithinRadius_BestRatedFirst() {
	ctx := context.Background()
	busyOrder := kernel.NewUUID()

	good := suite.add(pgtest.RiderOptions{Km: 3, Rating: 4.9})
	average := suite.add(pgtest.RiderOptions{Km: 1, Rating: 3.2})
	suite.add(pgtest.RiderOptions{Km: 7, Rating: 5})
	suite.add(pgtest.RiderOptions{Km: 1, Rating: 5, Status: rider.Offline})
	suite.add(pgtest.RiderOptions{Km: 1, Rating: 5, Status: rider.Busy, Assignment: &busyOrder})
	suite.add(pgtest.RiderOptions{Km: 1, Rating: 5, Unapproved: true})
	suite.add(pgtest.RiderOptions{Rating: 5, NoLocation: true})

	got, err := suite.repository.FindCandidates(ctx, pgtest.Kathmandu(suite.T()), 5, 20)

	suite.Require().NoError(err)
	suite.Require().Len(got, 2)
	suite.True(got[0].IsEqual(good))
	suite.True(got[1].IsEqual(average))

	capped, err := suite.repository.FindCandidates(ctx, pgtest.Kathmandu(suite.T()), 5, 1)
	suite.Require().NoError(err)
	suite.Len(capped, 1)

	wide, err := suite.repository.FindCandidates(ctx, pgtest.Kathmandu(suite.T()), 10, 20)
	suite.Require().NoError(err)
	suite.Len(wide, 3)
}

func (suite *RiderRepositoryIntegrationTestSuite) TestFindCandidates_InvalidRadius() {
	_, err := suite.repository.FindCandidates(context.Background(), pgtest.Kathmandu(suite.T()), 0, 20)

	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
}

func TestRiderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RiderRepositoryIntegrationTestSuite))
}
