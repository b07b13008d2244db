package queries

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

const (
	DefaultNearbyRadiusKm = 5.0
	MaxNearbyRadiusKm     = 10.0
)

var ErrNearbyOrdersQueryIsNotConstructed = errors.New("NearbyOrdersQuery must be created via NewNearbyOrdersQuery constructor")

// NearbyOrdersQuery lists unassigned orders whose pickup point lies within
// radiusKm of the requesting rider's last known location.
type NearbyOrdersQuery struct {
	actor    kernel.Actor
	radiusKm float64
	limit    int
	guard    guard.ConstructorGuard
}

// NewNearbyOrdersQuery accepts only rider actors. A zero radius means
// DefaultNearbyRadiusKm and a zero limit means DefaultPageSize.
func NewNearbyOrdersQuery(actor kernel.Actor, radiusKm float64, limit int) (NearbyOrdersQuery, error) {
	if err := actor.Validate(); err != nil {
		return NearbyOrdersQuery{}, err
	}
	if actor.Role != kernel.RoleRider {
		return NearbyOrdersQuery{}, errs.NewAccessDeniedError("only riders can browse nearby orders")
	}

	if radiusKm == 0 {
		radiusKm = DefaultNearbyRadiusKm
	}
	if limit == 0 {
		limit = DefaultPageSize
	}

	var radiusErr, limitErr error
	if radiusKm <= 0 || radiusKm > MaxNearbyRadiusKm {
		radiusErr = errs.NewValueIsOutOfRangeError("radiusKm", radiusKm, 0, MaxNearbyRadiusKm)
	}
	if limit < 1 || limit > MaxPageSize {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageSize)
	}
	if err := errors.Join(radiusErr, limitErr); err != nil {
		return NearbyOrdersQuery{}, err
	}

	return NearbyOrdersQuery{
		actor:    actor,
		radiusKm: radiusKm,
		limit:    limit,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q NearbyOrdersQuery) Validate() error {
	return q.guard.Validate(ErrNearbyOrdersQueryIsNotConstructed)
}

func (q NearbyOrdersQuery) Actor() kernel.Actor {
	return q.actor
}

func (q NearbyOrdersQuery) RadiusKm() float64 {
	return q.radiusKm
}

func (q NearbyOrdersQuery) Limit() int {
	return q.limit
}
