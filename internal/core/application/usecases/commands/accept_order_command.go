package commands

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand is the assigned rider confirming an assignment.
type AcceptOrderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptOrderCommand(actor kernel.Actor, orderID kernel.UUID) (AcceptOrderCommand, error) {
	if err := errors.Join(actor.Validate(), requireRider(actor), orderID.Validate()); err != nil {
		return AcceptOrderCommand{}, err
	}
	return AcceptOrderCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c AcceptOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func requireRider(actor kernel.Actor) error {
	if actor.Role != kernel.RoleRider {
		return errs.NewAccessDeniedError("only riders can do this")
	}
	return nil
}
