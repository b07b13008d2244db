package commands_test

import (
	"context"
	"math"
	"testing"
	"time"

	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/domain/model/catalog"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateTracking(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindUnassignedActive(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockRiderRepository struct{ mock.Mock }

func (m *MockRiderRepository) Add(ctx context.Context, r *rider.Rider) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRiderRepository) Update(ctx context.Context, r *rider.Rider) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRiderRepository) UpdateLocation(ctx context.Context, r *rider.Rider) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRiderRepository) Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rider.Rider), args.Error(1)
}

func (m *MockRiderRepository) FindCandidates(
	ctx context.Context,
	point kernel.Location,
	radiusKm float64,
	limit int,
) ([]*rider.Rider, error) {
	args := m.Called(ctx, point, radiusKm, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rider.Rider), args.Error(1)
}

type MockProductCatalog struct{ mock.Mock }

func (m *MockProductCatalog) GetProducts(ctx context.Context, ids []kernel.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductCatalog) DecrementStock(ctx context.Context, productID kernel.UUID, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

type MockVendorDirectory struct{ mock.Mock }

func (m *MockVendorDirectory) GetVendor(ctx context.Context, id kernel.UUID) (catalog.Vendor, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Vendor), args.Error(1)
}

// MockUoW satisfies every unit of work flavour used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) RiderRepository() ports.RiderRepository {
	args := m.Called()
	return args.Get(0).(ports.RiderRepository)
}

func (m *MockUoW) ProductCatalog() ports.ProductCatalog {
	args := m.Called()
	return args.Get(0).(ports.ProductCatalog)
}

func (m *MockUoW) VendorDirectory() ports.VendorDirectory {
	args := m.Called()
	return args.Get(0).(ports.VendorDirectory)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockRiderUoWFactory struct{ mock.Mock }

func (m *MockRiderUoWFactory) Create() commands.RiderUoW {
	args := m.Called()
	return args.Get(0).(commands.RiderUoW)
}

type MockPlaceOrderUoWFactory struct{ mock.Mock }

func (m *MockPlaceOrderUoWFactory) Create() commands.PlaceOrderUoW {
	args := m.Called()
	return args.Get(0).(commands.PlaceOrderUoW)
}

// newUoW wires repositories into a MockUoW. Repository accessors may be called
// any number of times; transaction calls are expected by each test.
func newUoW(orders *MockOrderRepository, riders *MockRiderRepository) *MockUoW {
	uow := new(MockUoW)
	if orders != nil {
		uow.On("OrderRepository").Return(orders).Maybe()
	}
	if riders != nil {
		uow.On("RiderRepository").Return(riders).Maybe()
	}
	return uow
}

var kmPerDegree = kernel.EarthRadiusKm * math.Pi / 180

func vendorPoint(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(27.70, 85.32, "Thamel Momo House")
	require.NoError(t, err)
	return loc
}

// north returns the point km kilometres due north of from.
func north(t *testing.T, from kernel.Location, km float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(from.Lat()+km/kmPerDegree, from.Lon(), "")
	require.NoError(t, err)
	return loc
}

func customerActor() kernel.Actor {
	return kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleCustomer}
}

func adminActor() kernel.Actor {
	return kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleAdmin}
}

func riderActor(r *rider.Rider) kernel.Actor {
	return kernel.Actor{UserID: r.ID(), Role: kernel.RoleRider}
}

func vendorActor(o *order.Order) kernel.Actor {
	return kernel.Actor{UserID: o.VendorID(), Role: kernel.RoleVendor}
}

func customerOf(o *order.Order) kernel.Actor {
	return kernel.Actor{UserID: o.CustomerID(), Role: kernel.RoleCustomer}
}

// placedOrder returns a pending order 3 km from its vendor.
func placedOrder(t *testing.T) *order.Order {
	t.Helper()

	pickup := vendorPoint(t)
	financials, err := order.NewFinancials(
		decimal.NewFromInt(1000), decimal.NewFromInt(130), decimal.NewFromInt(50), decimal.NewFromInt(20))
	require.NoError(t, err)

	placedAt := time.Now().UTC().Add(-10 * time.Minute)
	o, err := order.NewOrder(order.Placement{
		ID:       kernel.NewUUID(),
		Customer: customerActor(),
		VendorID: kernel.NewUUID(),
		Type:     order.TypeRegular,
		Priority: order.PriorityNormal,
		Items: []order.Item{
			{ProductID: kernel.NewUUID(), Name: "Momo", UnitPrice: decimal.NewFromInt(250), Quantity: 4},
		},
		Financials:            financials,
		CustomerLocation:      north(t, pickup, 3),
		VendorLocation:        &pickup,
		EstimatedPickupTime:   placedAt.Add(30 * time.Minute),
		EstimatedDeliveryTime: placedAt.Add(45 * time.Minute),
		PlacedAt:              placedAt,
	})
	require.NoError(t, err)
	o.PullEvents()
	return o
}

// withStatus rebuilds o in status, bound to r (accepted) when r is non-nil.
func withStatus(t *testing.T, o *order.Order, status order.Status, r *rider.Rider) *order.Order {
	t.Helper()
	s := o.Snapshot()
	s.Status = status
	if r != nil {
		id := r.ID()
		at := time.Now().UTC().Add(-5 * time.Minute)
		s.RiderID = &id
		s.Assignment.AssignedAt = &at
		s.Assignment.AcceptedAt = &at
	}
	restored, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return restored
}

// onlineRider restores an approved online rider km north of the vendor.
func onlineRider(t *testing.T, km float64) *rider.Rider {
	t.Helper()
	return restoreRider(t, km, rider.Online, nil)
}

// busyRider restores a rider holding orderID in status.
func busyRider(t *testing.T, orderID kernel.UUID, status rider.Status) *rider.Rider {
	t.Helper()
	return restoreRider(t, 1, status, &orderID)
}

func restoreRider(t *testing.T, km float64, status rider.Status, assignment *kernel.UUID) *rider.Rider {
	t.Helper()
	pos, err := kernel.NewPosition(north(t, vendorPoint(t), km), time.Now().UTC().Add(-time.Minute))
	require.NoError(t, err)

	r, err := rider.RestoreRider(rider.Snapshot{
		ID:                kernel.NewUUID(),
		Profile:           rider.Profile{Name: "Sita Rai", Phone: "9800000000", LicensePlate: "BA 2 PA 1234"},
		Status:            status,
		CurrentLocation:   &pos,
		Preferences:       rider.Preferences{IsAvailable: true},
		Verification:      rider.Verification{IsVerified: true, IsApproved: true},
		Performance:       rider.Performance{AverageRating: 4, RatingCount: 2},
		Earnings:          rider.Earnings{Total: decimal.Zero, ThisWeek: decimal.Zero, ThisMonth: decimal.Zero, WalletBalance: decimal.Zero},
		CurrentAssignment: assignment,
		Version:           1,
		CreatedAt:         time.Now().UTC().Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	return r
}

func uuidStrings(ids []kernel.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
