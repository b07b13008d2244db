package services_test

import (
	"math"
	"testing"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

// kmPerDegree is the length of one degree of latitude on the haversine sphere.
var kmPerDegree = kernel.EarthRadiusKm * math.Pi / 180

func pickupPoint(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(27.70, 85.32, "Vendor")
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

// newOrder places an order whose drop-off lies deliveryKm north of the vendor.
func newOrder(t *testing.T, deliveryKm float64) *order.Order {
	t.Helper()

	pickup := pickupPoint(t)
	financials, err := order.NewFinancials(
		decimal.NewFromInt(1000), decimal.NewFromInt(130), decimal.NewFromInt(100), decimal.NewFromInt(20))
	require.NoError(t, err)

	o, err := order.NewOrder(order.Placement{
		ID:       kernel.NewUUID(),
		Customer: kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleCustomer},
		VendorID: kernel.NewUUID(),
		Type:     order.TypeRegular,
		Priority: order.PriorityNormal,
		Items: []order.Item{
			{ProductID: kernel.NewUUID(), Name: "Momo", UnitPrice: decimal.NewFromInt(250), Quantity: 4},
		},
		Financials:            financials,
		CustomerLocation:      north(t, pickup, deliveryKm),
		VendorLocation:        &pickup,
		EstimatedPickupTime:   now.Add(30 * time.Minute),
		EstimatedDeliveryTime: now.Add(45 * time.Minute),
		PlacedAt:              now,
	})
	require.NoError(t, err)
	return o
}

type riderSpec struct {
	km          float64
	perf        rider.Performance
	seenAt      time.Time
	status      rider.Status
	unapproved  bool
	unavailable bool
	preferences *rider.Preferences
	assignment  *kernel.UUID
}

// newRider restores a rider positioned spec.km north of the vendor.
func newRider(t *testing.T, spec riderSpec) *rider.Rider {
	t.Helper()

	seenAt := spec.seenAt
	if seenAt.IsZero() {
		seenAt = now.Add(-time.Minute)
	}
	pos, err := kernel.NewPosition(north(t, pickupPoint(t), spec.km), seenAt)
	require.NoError(t, err)

	status := spec.status
	if status == rider.Unknown {
		status = rider.Online
	}
	prefs := rider.Preferences{IsAvailable: !spec.unavailable}
	if spec.preferences != nil {
		prefs = *spec.preferences
	}

	r, err := rider.RestoreRider(rider.Snapshot{
		ID:                kernel.NewUUID(),
		Profile:           rider.Profile{Name: "Rider", Phone: "9800000000", LicensePlate: "BA 1 PA 1"},
		Status:            status,
		CurrentLocation:   &pos,
		Preferences:       prefs,
		Verification:      rider.Verification{IsVerified: true, IsApproved: !spec.unapproved},
		Performance:       spec.perf,
		Earnings:          rider.Earnings{Total: decimal.Zero, ThisWeek: decimal.Zero, ThisMonth: decimal.Zero, WalletBalance: decimal.Zero},
		CurrentAssignment: spec.assignment,
		Version:           1,
		CreatedAt:         now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	return r
}

// restoreOrder rebuilds o with the given status and rider binding.
func restoreOrder(t *testing.T, o *order.Order, status order.Status, r *rider.Rider, mutate func(*order.Snapshot)) *order.Order {
	t.Helper()
	s := o.Snapshot()
	s.Status = status
	if r != nil {
		id := r.ID()
		s.RiderID = &id
		assignedAt := now
		s.Assignment.AssignedAt = &assignedAt
		s.Assignment.AcceptedAt = &assignedAt
	}
	if mutate != nil {
		mutate(&s)
	}
	restored, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return restored
}

// strongPerformance gives rating 4.5, completion 0.9 and on-time 0.8.
func strongPerformance() rider.Performance {
	return rider.Performance{
		TotalDeliveries:     50,
		CompletedDeliveries: 45,
		CancelledDeliveries: 5,
		OnTimeDeliveries:    36,
		LateDeliveries:      9,
		AverageRating:       4.5,
		RatingCount:         40,
	}
}

// weakPerformance gives rating 5.0, completion 0.2 and on-time 1.0.
func weakPerformance() rider.Performance {
	return rider.Performance{
		TotalDeliveries:     5,
		CompletedDeliveries: 1,
		CancelledDeliveries: 4,
		OnTimeDeliveries:    1,
		AverageRating:       5,
		RatingCount:         1,
	}
}
