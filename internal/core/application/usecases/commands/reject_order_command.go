package commands

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/guard"
)

var ErrRejectOrderCommandIsNotConstructed = errors.New(
	"RejectOrderCommand must be created via NewRejectOrderCommand constructor",
)

// RejectOrderCommand is the assigned rider declining an assignment before accepting it.
type RejectOrderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	reason  string

	guard guard.ConstructorGuard
}

func NewRejectOrderCommand(actor kernel.Actor, orderID kernel.UUID, reason string) (RejectOrderCommand, error) {
	if err := errors.Join(actor.Validate(), requireRider(actor), orderID.Validate()); err != nil {
		return RejectOrderCommand{}, err
	}
	return RejectOrderCommand{
		actor:   actor,
		orderID: orderID,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RejectOrderCommand) Validate() error {
	return c.guard.Validate(ErrRejectOrderCommandIsNotConstructed)
}

func (c RejectOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c RejectOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RejectOrderCommand) Reason() string {
	return c.reason
}
