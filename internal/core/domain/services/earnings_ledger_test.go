package services_test

import (
	"testing"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliveredAt(at time.Time) func(*order.Snapshot) {
	return func(s *order.Snapshot) {
		s.Schedule.ActualDeliveryTime = &at
	}
}

// boundRider returns a rider holding o in the given engaged status.
func boundRider(t *testing.T, o *order.Order, status rider.Status) *rider.Rider {
	t.Helper()
	id := o.ID()
	return newRider(t, riderSpec{km: 1, status: status, assignment: &id})
}

func TestEarningsPolicy_RiderEarnings(t *testing.T) {
	policy := services.DefaultEarningsPolicy()

	tests := []struct {
		km   float64
		tip  int64
		want string
	}{
		{km: 2, tip: 0, want: "50"},
		{km: 5, tip: 10, want: "60"},
		{km: 8, tip: 20, want: "100"},
		{km: 6.5, tip: 0, want: "65"},
	}
	for _, tt := range tests {
		got := policy.RiderEarnings(tt.km, decimal.NewFromInt(tt.tip))
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "km=%v got %s", tt.km, got)
	}
}

func TestEarningsLedger_SettleDelivery(t *testing.T) {
	ledger := services.NewEarningsLedger(services.DefaultEarningsPolicy())

	t.Run("should credit earnings once", func(t *testing.T) {
		placed := newOrder(t, 8)
		r := boundRider(t, placed, rider.OnDelivery)
		o := restoreOrder(t, placed, order.Delivered, r, deliveredAt(now.Add(70*time.Minute)))

		applied, err := ledger.Settle(o, r, now.Add(time.Hour))

		require.NoError(t, err)
		assert.True(t, applied)
		require.NotNil(t, o.RiderEarnings())
		// 50 + (8-5)×10 + tip 20
		assert.True(t, o.RiderEarnings().Equal(decimal.NewFromInt(100)), o.RiderEarnings().String())
		assert.True(t, r.Earnings().Total.Equal(decimal.NewFromInt(100)))
		assert.True(t, r.Earnings().ThisWeek.Equal(decimal.NewFromInt(100)))
		assert.True(t, r.Earnings().ThisMonth.Equal(decimal.NewFromInt(100)))
		assert.True(t, r.Earnings().WalletBalance.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, 1, r.Performance().TotalDeliveries)
		assert.Equal(t, 1, r.Performance().CompletedDeliveries)
		assert.Equal(t, 1, r.Performance().OnTimeDeliveries)
		assert.Equal(t, rider.Online, r.Status())
		assert.Nil(t, r.CurrentAssignment())

		again, err := ledger.Settle(o, r, now.Add(2*time.Hour))

		require.NoError(t, err)
		assert.False(t, again)
		assert.True(t, r.Earnings().Total.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, 1, r.Performance().TotalDeliveries)
		assert.Equal(t, 1, r.Performance().CompletedDeliveries)
	})

	t.Run("should count a late delivery beyond the tolerance", func(t *testing.T) {
		placed := newOrder(t, 3)
		r := boundRider(t, placed, rider.OnDelivery)
		// estimate is placement + 45m; tolerance 30m
		o := restoreOrder(t, placed, order.Delivered, r, deliveredAt(now.Add(76*time.Minute)))

		_, err := ledger.Settle(o, r, now.Add(80*time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 0, r.Performance().OnTimeDeliveries)
		assert.Equal(t, 1, r.Performance().LateDeliveries)
	})

	t.Run("should judge lateness against the promise, not the latest estimate", func(t *testing.T) {
		placed := newOrder(t, 3)
		require.NotNil(t, placed.Schedule().PromisedDeliveryTime)
		r := boundRider(t, placed, rider.OnDelivery)
		o := restoreOrder(t, placed, order.Delivered, r, func(s *order.Snapshot) {
			// a slow rider keeps pushing the estimate back with each ping
			eta := now.Add(70 * time.Minute)
			s.Schedule.EstimatedDeliveryTime = &eta
			deliveredAt(now.Add(80 * time.Minute))(s)
		})

		_, err := ledger.Settle(o, r, now.Add(85*time.Minute))

		require.NoError(t, err)
		assert.Equal(t, 0, r.Performance().OnTimeDeliveries)
		assert.Equal(t, 1, r.Performance().LateDeliveries)
	})

	t.Run("should require the bound rider", func(t *testing.T) {
		placed := newOrder(t, 3)
		r := boundRider(t, placed, rider.OnDelivery)
		o := restoreOrder(t, placed, order.Delivered, r, deliveredAt(now))
		stranger := newRider(t, riderSpec{km: 1})

		_, err := ledger.Settle(o, stranger, now)
		require.ErrorIs(t, err, rider.ErrNotAssignedToOrder)

		_, err = ledger.Settle(o, nil, now)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Nil(t, o.SettledAt())
	})

	t.Run("should refuse an active order", func(t *testing.T) {
		placed := newOrder(t, 3)
		r := boundRider(t, placed, rider.OnDelivery)
		o := restoreOrder(t, placed, order.OnTheWay, r, nil)

		applied, err := ledger.Settle(o, r, now)

		require.ErrorIs(t, err, order.ErrOrderNotActive)
		assert.False(t, applied)
		assert.True(t, r.Earnings().Total.IsZero())
	})
}

func TestEarningsLedger_SettleCancellation(t *testing.T) {
	ledger := services.NewEarningsLedger(services.DefaultEarningsPolicy())

	t.Run("assigned rider gets a cancelled delivery and is released", func(t *testing.T) {
		placed := newOrder(t, 3)
		r := boundRider(t, placed, rider.Busy)
		o := restoreOrder(t, placed, order.Cancelled, r, nil)

		applied, err := ledger.Settle(o, r, now)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.Nil(t, o.RiderEarnings())
		assert.Equal(t, 1, r.Performance().TotalDeliveries)
		assert.Equal(t, 1, r.Performance().CancelledDeliveries)
		assert.Equal(t, 0, r.Performance().CompletedDeliveries)
		assert.True(t, r.Earnings().Total.IsZero())
		assert.Equal(t, rider.Online, r.Status())
		assert.Nil(t, r.CurrentAssignment())

		again, err := ledger.Settle(o, r, now)
		require.NoError(t, err)
		assert.False(t, again)
		assert.Equal(t, 1, r.Performance().CancelledDeliveries)
	})

	t.Run("order without rider is only marked settled", func(t *testing.T) {
		o := restoreOrder(t, newOrder(t, 3), order.Rejected, nil, nil)

		applied, err := ledger.Settle(o, nil, now)

		require.NoError(t, err)
		assert.True(t, applied)
		assert.NotNil(t, o.SettledAt())
	})
}

func TestEarningsLedger_ApplyRating(t *testing.T) {
	ledger := services.NewEarningsLedger(services.DefaultEarningsPolicy())
	placed := newOrder(t, 3)
	r := newRider(t, riderSpec{km: 1, perf: rider.Performance{AverageRating: 4, RatingCount: 3}})
	o := restoreOrder(t, placed, order.Delivered, r, deliveredAt(now))
	customer := kernel.Actor{UserID: o.CustomerID(), Role: kernel.RoleCustomer}

	err := ledger.ApplyRating(o, r)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	require.NoError(t, o.Rate(customer, 2, "cold food", now))
	require.NoError(t, ledger.ApplyRating(o, r))

	// (4×3 + 2) / 4
	assert.InDelta(t, 3.5, r.Performance().AverageRating, 1e-9)
	assert.Equal(t, 4, r.Performance().RatingCount)
}
