package queries

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

var ErrGetRiderQueryIsNotConstructed = errors.New("GetRiderQuery must be created via NewGetRiderQuery constructor")

// GetRiderQuery reads the profile of the calling rider.
type GetRiderQuery struct {
	actor kernel.Actor
	guard guard.ConstructorGuard
}

func NewGetRiderQuery(actor kernel.Actor) (GetRiderQuery, error) {
	if err := actor.Validate(); err != nil {
		return GetRiderQuery{}, err
	}
	if actor.Role != kernel.RoleRider {
		return GetRiderQuery{}, errs.NewAccessDeniedError("only riders have a rider profile")
	}
	return GetRiderQuery{actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRiderQuery) Validate() error {
	return q.guard.Validate(ErrGetRiderQueryIsNotConstructed)
}

func (q GetRiderQuery) Actor() kernel.Actor {
	return q.actor
}
