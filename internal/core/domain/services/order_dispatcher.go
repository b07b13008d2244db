package services

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/pkg/errs"
)

// ErrNoRidersAvailable is returned when no candidate rider can take the order.
// It is an UnavailableError: callers surface it and do not retry automatically.
var ErrNoRidersAvailable = errs.NewUnavailableError("no riders available")

// DispatchPolicy tunes the candidate search.
type DispatchPolicy struct {
	// RadiusKm is the search radius around the order pickup point.
	RadiusKm float64
	// CandidateLimit caps the candidate set loaded before scoring.
	CandidateLimit int
}

// DefaultDispatchPolicy returns a 5 km radius and 20 candidates.
func DefaultDispatchPolicy() DispatchPolicy {
	return DispatchPolicy{RadiusKm: 5, CandidateLimit: 20}
}

// OrderDispatcher is a domain service that picks the best rider for an order
// and binds the two aggregates.
//
// Key responsibilities:
//   - Filtering candidates that cannot take the order right now
//   - Ranking the rest with a pluggable RiderScorer
//   - Binding order and rider in memory; the caller persists both under version guards
//
// Business rules:
//   - Riders must be online, available, approved and free
//   - Riders who rejected this order are skipped
//   - Riders outside the radius, their own max distance or their working hours are skipped
//   - Highest score wins; ties go to the nearer rider, then to the most recent location ping
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher(
//	    services.NewWeightedScorer(services.DefaultScoreWeights(), 5),
//	    services.DefaultDispatchPolicy(),
//	)
//	chosen, err := dispatcher.Dispatch(o, candidates, time.Now())
//	if errors.Is(err, services.ErrNoRidersAvailable) {
//	    // leave the order unassigned for the next sweep
//	    return
//	}
type OrderDispatcher struct {
	scorer RiderScorer
	policy DispatchPolicy
}

// NewOrderDispatcher creates a dispatcher with the given scoring strategy and policy.
func NewOrderDispatcher(scorer RiderScorer, policy DispatchPolicy) OrderDispatcher {
	return OrderDispatcher{scorer: scorer, policy: policy}
}

// Policy returns the dispatch policy; repositories use it to size the candidate query.
func (d OrderDispatcher) Policy() DispatchPolicy {
	return d.policy
}

// Dispatch selects the best candidate and binds it to the order.
//
// Parameters:
//   - o: the order to dispatch; must be assignable and unassigned
//   - candidates: riders found near the pickup point
//   - at: dispatch time, used for working hours and the assignment timestamp
//
// Returns:
//   - *rider.Rider: the rider now holding the order
//   - error: ErrNoRidersAvailable if nobody qualifies, or an order conflict
//     (order.ErrAlreadyAssigned, order.ErrNotAssignable)
func (d OrderDispatcher) Dispatch(o *order.Order, candidates []*rider.Rider, at time.Time) (*rider.Rider, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if err := o.CheckDispatchable(); err != nil {
		return nil, err
	}

	best, err := d.SelectBest(o, candidates, at)
	if err != nil {
		return nil, err
	}

	if err := d.bind(o, best, true, at); err != nil {
		return nil, err
	}
	return best, nil
}

// Bind force-assigns a named rider, bypassing scoring. The rider must still be
// eligible and not excluded for this order.
//
// Returns:
//   - rider.ErrNotEligible or rider.ErrAlreadyAssigned when the rider cannot take work
//   - order conflicts from order.Assign
func (d OrderDispatcher) Bind(o *order.Order, r *rider.Rider, at time.Time) error {
	if err := errors.Join(o.Validate(), r.Validate()); err != nil {
		return err
	}
	if err := r.CheckEligible(); err != nil {
		return err
	}
	return d.bind(o, r, false, at)
}

// SelectBest ranks the qualifying candidates without mutating anything.
func (d OrderDispatcher) SelectBest(o *order.Order, candidates []*rider.Rider, at time.Time) (*rider.Rider, error) {
	type ranked struct {
		rider    *rider.Rider
		score    float64
		distance float64
		seenAt   time.Time
	}

	pickup := o.PickupLocation()
	pool := make([]ranked, 0, len(candidates))
	for _, c := range candidates {
		if c.Validate() != nil || c.CheckEligible() != nil {
			continue
		}
		if o.CheckAssignable(c.ID()) != nil {
			continue
		}
		distance, err := c.DistanceToKm(pickup)
		if err != nil || distance > d.policy.RadiusKm {
			continue
		}
		if !c.Preferences().Accepts(distance, at) {
			continue
		}
		pool = append(pool, ranked{
			rider:    c,
			score:    d.scorer.Score(c, o),
			distance: distance,
			seenAt:   c.CurrentLocation().RecordedAt,
		})
	}

	if len(pool) == 0 {
		return nil, ErrNoRidersAvailable
	}

	slices.SortStableFunc(pool, func(a, b ranked) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.distance, b.distance); c != 0 {
			return c
		}
		return b.seenAt.Compare(a.seenAt)
	})

	return pool[0].rider, nil
}

func (d OrderDispatcher) bind(o *order.Order, r *rider.Rider, auto bool, at time.Time) error {
	if err := o.CheckAssignable(r.ID()); err != nil {
		return err
	}
	if err := r.Assign(o.ID()); err != nil {
		return err
	}
	if err := o.Assign(r.ID(), auto, at); err != nil {
		r.Release(o.ID())
		return err
	}
	return nil
}
