package services

import (
	"time"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// EarningsPolicy computes what a rider earns for a delivered order.
type EarningsPolicy struct {
	BaseFee          decimal.Decimal
	BonusThresholdKm decimal.Decimal
	BonusPerKm       decimal.Decimal
	// OnTimeTolerance is how late a delivery may be against its estimate and still count as on time.
	OnTimeTolerance time.Duration
}

// DefaultEarningsPolicy returns base 50, 10 per km beyond 5 km and a 30 minute tolerance.
func DefaultEarningsPolicy() EarningsPolicy {
	return EarningsPolicy{
		BaseFee:          decimal.NewFromInt(50),
		BonusThresholdKm: decimal.NewFromInt(5),
		BonusPerKm:       decimal.NewFromInt(10),
		OnTimeTolerance:  30 * time.Minute,
	}
}

// RiderEarnings is base + max(0, distance - threshold) × perKm + tip, rounded to cents.
func (p EarningsPolicy) RiderEarnings(distanceKm float64, tip decimal.Decimal) decimal.Decimal {
	extra := decimal.NewFromFloat(distanceKm).Sub(p.BonusThresholdKm)
	if extra.IsNegative() {
		extra = decimal.Zero
	}
	return p.BaseFee.Add(extra.Mul(p.BonusPerKm)).Add(tip).Round(2)
}

// IsOnTime compares the actual delivery time with the time promised at
// placement plus tolerance. Rows without a promise fall back to the current
// estimate; orders with neither count as on time.
func (p EarningsPolicy) IsOnTime(s order.Schedule) bool {
	deadline := s.PromisedDeliveryTime
	if deadline == nil {
		deadline = s.EstimatedDeliveryTime
	}
	if deadline == nil || s.ActualDeliveryTime == nil {
		return true
	}
	return !s.ActualDeliveryTime.After(deadline.Add(p.OnTimeTolerance))
}

// EarningsLedger applies the one-time settlement of a terminal order to its rider.
//
// Settlement is idempotent: the order carries a settledAt mark, and a second
// call for the same order changes nothing and reports false.
//
// Example usage:
//
//	ledger := services.NewEarningsLedger(services.DefaultEarningsPolicy())
//	applied, err := ledger.Settle(o, r, time.Now())
//	if err != nil {
//	    return err
//	}
//	if applied {
//	    // persist both o and r in the same transaction
//	}
type EarningsLedger struct {
	policy EarningsPolicy
}

// NewEarningsLedger creates a ledger with the given policy.
func NewEarningsLedger(policy EarningsPolicy) EarningsLedger {
	return EarningsLedger{policy: policy}
}

// Settle applies earnings and performance counters for a terminal order.
//
// Parameters:
//   - o: an order in delivered, cancelled or rejected status
//   - r: the order's bound rider, or nil when no rider was ever bound
//   - at: settlement time
//
// Returns:
//   - bool: true if this call applied the settlement, false if it was already settled
//   - error: order.ErrOrderNotActive for non-terminal orders, rider.ErrNotAssignedToOrder
//     when r is not the bound rider, errs.ErrValueIsRequired when the bound rider is missing
//
// On delivery the rider is credited riderEarnings and gains a completed (on-time or
// late) delivery. On cancellation or rejection after assignment the rider gains a
// cancelled delivery. In both cases the rider is released.
func (l EarningsLedger) Settle(o *order.Order, r *rider.Rider, at time.Time) (bool, error) {
	if err := o.Validate(); err != nil {
		return false, err
	}
	if err := l.checkRider(o, r); err != nil {
		return false, err
	}

	if o.Status() != order.Delivered {
		applied, err := o.Settle(nil, at)
		if err != nil || !applied {
			return applied, err
		}
		if r != nil {
			r.ApplyCancellation(o.ID())
		}
		return true, nil
	}

	if r == nil {
		return false, errs.NewValueIsRequiredError("rider")
	}

	earnings := l.policy.RiderEarnings(o.DeliveryDistanceKm(), o.Financials().Tip)
	applied, err := o.Settle(&earnings, at)
	if err != nil || !applied {
		return applied, err
	}

	r.ApplyDelivery(o.ID(), earnings, l.policy.IsOnTime(o.Schedule()), at)
	return true, nil
}

// ApplyRating folds the order's rating into the rider's running average.
func (l EarningsLedger) ApplyRating(o *order.Order, r *rider.Rider) error {
	if o.Rating() == nil {
		return errs.NewValueIsRequiredError("rating")
	}
	if r == nil || !o.IsAssignedTo(r.ID()) {
		return rider.ErrNotAssignedToOrder
	}
	return r.ApplyRating(o.Rating().Score)
}

func (l EarningsLedger) checkRider(o *order.Order, r *rider.Rider) error {
	if o.RiderID() == nil {
		if r != nil {
			return rider.ErrNotAssignedToOrder
		}
		return nil
	}
	if r == nil {
		return errs.NewValueIsRequiredError("rider")
	}
	if !o.IsAssignedTo(r.ID()) {
		return rider.ErrNotAssignedToOrder
	}
	return nil
}
