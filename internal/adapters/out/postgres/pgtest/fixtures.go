package pgtest

import (
	"fmt"
	"math"
	"testing"
	"time"

	"orderdispatch/internal/adapters/out/postgres/catalogrepo"
	"orderdispatch/internal/core/domain/model/catalog"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const kmPerDegree = kernel.EarthRadiusKm * math.Pi / 180

// Kathmandu is the reference pickup point of the fixtures.
func Kathmandu(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(27.70, 85.32, "Durbar Marg")
	require.NoError(t, err)
	return loc
}

// North returns the point km due north of from.
func North(t *testing.T, from kernel.Location, km float64) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(from.Lat()+km/kmPerDegree, from.Lon(), "")
	require.NoError(t, err)
	return loc
}

// CustomerActor returns a fresh customer.
func CustomerActor() kernel.Actor {
	return kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleCustomer}
}

// OrderOptions tweak NewOrder.
type OrderOptions struct {
	Customer  *kernel.Actor
	VendorID  *kernel.UUID
	Priority  order.Priority
	PlacedAt  time.Time
	DropOffKm float64
}

// NewOrder builds a pending order picked up at Kathmandu with its events pulled.
func NewOrder(t *testing.T, opts OrderOptions) *order.Order {
	t.Helper()

	customer := CustomerActor()
	if opts.Customer != nil {
		customer = *opts.Customer
	}
	vendorID := kernel.NewUUID()
	if opts.VendorID != nil {
		vendorID = *opts.VendorID
	}
	priority := opts.Priority
	if priority == "" {
		priority = order.PriorityNormal
	}
	placedAt := opts.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
	km := opts.DropOffKm
	if km == 0 {
		km = 3
	}

	pickup := Kathmandu(t)
	financials, err := order.NewFinancials(
		decimal.NewFromInt(500), decimal.NewFromInt(65), decimal.NewFromInt(50), decimal.NewFromInt(10))
	require.NoError(t, err)

	o, err := order.NewOrder(order.Placement{
		ID:       kernel.NewUUID(),
		Customer: customer,
		VendorID: vendorID,
		Type:     order.TypeRegular,
		Priority: priority,
		Items: []order.Item{
			{ProductID: kernel.NewUUID(), Name: "Momo", Unit: "plate", UnitPrice: decimal.NewFromInt(250), Quantity: 2},
		},
		Financials:            financials,
		CustomerLocation:      North(t, pickup, km),
		VendorLocation:        &pickup,
		EstimatedPickupTime:   placedAt.Add(30 * time.Minute),
		EstimatedDeliveryTime: placedAt.Add(37 * time.Minute),
		Notes:                 "ring twice",
		PlacedAt:              placedAt,
	})
	require.NoError(t, err)
	o.PullEvents()
	return o
}

// RiderOptions tweak NewRider.
type RiderOptions struct {
	Km         float64
	Status     rider.Status
	Rating     float64
	Assignment *kernel.UUID
	Unapproved bool
	NoLocation bool
	SeenAt     time.Time
}

// NewRider restores an approved rider Km north of Kathmandu. Status defaults
// to online.
func NewRider(t *testing.T, opts RiderOptions) *rider.Rider {
	t.Helper()

	id := kernel.NewUUID()
	status := opts.Status
	if status == rider.Unknown {
		status = rider.Online
	}
	seenAt := opts.SeenAt
	if seenAt.IsZero() {
		seenAt = time.Now().UTC().Add(-time.Minute).Truncate(time.Microsecond)
	}

	var position *kernel.Position
	if !opts.NoLocation {
		pos, err := kernel.NewPosition(North(t, Kathmandu(t), opts.Km), seenAt)
		require.NoError(t, err)
		position = &pos
	}

	suffix := id.String()[:8]
	r, err := rider.RestoreRider(rider.Snapshot{
		ID: id,
		Profile: rider.Profile{
			Name:         "Rider " + suffix,
			Phone:        "98" + suffix,
			Email:        fmt.Sprintf("%s@riders.test", suffix),
			LicensePlate: "BA " + suffix,
			VehicleType:  "bike",
		},
		Status:          status,
		CurrentLocation: position,
		Preferences: rider.Preferences{
			IsAvailable:    true,
			PreferredAreas: []string{"Thamel", "Baneshwor"},
			WorkingHours:   &rider.WorkingHours{StartMinute: 0, EndMinute: 0},
		},
		Verification: rider.Verification{IsVerified: true, IsApproved: !opts.Unapproved},
		Performance:  rider.Performance{AverageRating: opts.Rating, RatingCount: 1},
		Earnings: rider.Earnings{
			Total: decimal.Zero, ThisWeek: decimal.Zero, ThisMonth: decimal.Zero, WalletBalance: decimal.Zero,
		},
		CurrentAssignment: opts.Assignment,
		Version:           1,
		CreatedAt:         time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Microsecond),
	})
	require.NoError(t, err)
	return r
}

// SeedProduct inserts a product of vendorID and returns it.
func SeedProduct(t *testing.T, db *gorm.DB, vendorID kernel.UUID, price int64, stock int) catalog.Product {
	t.Helper()
	p := catalog.Product{
		ID:          kernel.NewUUID(),
		VendorID:    vendorID,
		Name:        "Momo",
		Image:       "momo.png",
		Unit:        "plate",
		Category:    "food",
		Price:       decimal.NewFromInt(price),
		Stock:       stock,
		IsAvailable: true,
	}
	dto := catalogrepo.ProductFromDomain(p)
	require.NoError(t, db.Create(&dto).Error)
	return p
}

// SeedVendor inserts a vendor located at loc, or without location when nil.
func SeedVendor(t *testing.T, db *gorm.DB, loc *kernel.Location) catalog.Vendor {
	t.Helper()
	v := catalog.Vendor{ID: kernel.NewUUID(), Name: "Himalayan Kitchen", Location: loc}
	dto := catalogrepo.VendorFromDomain(v)
	require.NoError(t, db.Create(&dto).Error)
	return v
}
