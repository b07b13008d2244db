package commands

import (
	"errors"
	"strings"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

var ErrRateOrderCommandIsNotConstructed = errors.New(
	"RateOrderCommand must be created via NewRateOrderCommand constructor",
)

// RateOrderCommand is the customer's one-time rating of a delivered order.
type RateOrderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	score   int
	comment string

	guard guard.ConstructorGuard
}

func NewRateOrderCommand(actor kernel.Actor, orderID kernel.UUID, score int, comment string) (RateOrderCommand, error) {
	var scoreErr error
	if score < 1 || score > 5 {
		scoreErr = errs.NewValueIsOutOfRangeError("rating", score, 1, 5)
	}
	if err := errors.Join(actor.Validate(), orderID.Validate(), scoreErr); err != nil {
		return RateOrderCommand{}, err
	}

	return RateOrderCommand{
		actor:   actor,
		orderID: orderID,
		score:   score,
		comment: strings.TrimSpace(comment),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c RateOrderCommand) Validate() error {
	return c.guard.Validate(ErrRateOrderCommandIsNotConstructed)
}

func (c RateOrderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c RateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c RateOrderCommand) Score() int {
	return c.score
}

func (c RateOrderCommand) Comment() string {
	return c.comment
}
