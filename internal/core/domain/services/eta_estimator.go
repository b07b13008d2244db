package services

import (
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
)

// ETAPolicy holds the assumptions behind delivery time estimates.
type ETAPolicy struct {
	AverageSpeedKmh float64
	RegularPrepTime time.Duration
	TmartPrepTime   time.Duration
}

// DefaultETAPolicy returns 25 km/h, 30 minutes preparation for regular and 15 for tmart orders.
func DefaultETAPolicy() ETAPolicy {
	return ETAPolicy{
		AverageSpeedKmh: 25,
		RegularPrepTime: 30 * time.Minute,
		TmartPrepTime:   15 * time.Minute,
	}
}

// ETAEstimator derives pickup and delivery estimates from straight-line distance.
type ETAEstimator struct {
	policy ETAPolicy
}

func NewETAEstimator(policy ETAPolicy) ETAEstimator {
	return ETAEstimator{policy: policy}
}

// Travel returns the time to cover distanceKm at the average speed.
func (e ETAEstimator) Travel(distanceKm float64) time.Duration {
	if e.policy.AverageSpeedKmh <= 0 || distanceKm <= 0 {
		return 0
	}
	hours := distanceKm / e.policy.AverageSpeedKmh
	return time.Duration(hours * float64(time.Hour)).Round(time.Second)
}

// PrepTime returns the preparation allowance for an order type.
func (e ETAEstimator) PrepTime(t order.Type) time.Duration {
	if t == order.TypeTmart {
		return e.policy.TmartPrepTime
	}
	return e.policy.RegularPrepTime
}

// AtPlacement returns the estimated pickup and delivery times of a new order.
func (e ETAEstimator) AtPlacement(t order.Type, distanceKm float64, at time.Time) (pickup, delivery time.Time) {
	pickup = at.Add(e.PrepTime(t))
	return pickup, pickup.Add(e.Travel(distanceKm))
}

// FromRider estimates delivery from a rider ping. Before pickup the rider still
// has to reach the vendor; afterwards only the leg to the customer remains.
func (e ETAEstimator) FromRider(o *order.Order, position kernel.Position) (time.Time, error) {
	toCustomer, err := position.Location.DistanceKm(o.CustomerLocation())
	if err != nil {
		return time.Time{}, err
	}

	switch o.Status() {
	case order.PickedUp, order.OnTheWay:
		return position.RecordedAt.Add(e.Travel(toCustomer)), nil
	}

	toPickup, err := position.Location.DistanceKm(o.PickupLocation())
	if err != nil {
		return time.Time{}, err
	}
	return position.RecordedAt.Add(e.Travel(toPickup + o.DeliveryDistanceKm())), nil
}
