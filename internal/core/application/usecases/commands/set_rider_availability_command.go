package commands

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/guard"
)

var ErrSetRiderAvailabilityCommandIsNotConstructed = errors.New(
	"SetRiderAvailabilityCommand must be created via NewSetRiderAvailabilityCommand constructor",
)

// SetRiderAvailabilityCommand switches the acting rider online or offline.
type SetRiderAvailabilityCommand struct {
	actor  kernel.Actor
	online bool

	guard guard.ConstructorGuard
}

func NewSetRiderAvailabilityCommand(actor kernel.Actor, online bool) (SetRiderAvailabilityCommand, error) {
	if err := errors.Join(actor.Validate(), requireRider(actor)); err != nil {
		return SetRiderAvailabilityCommand{}, err
	}
	return SetRiderAvailabilityCommand{actor: actor, online: online, guard: guard.NewConstructorGuard()}, nil
}

func (c SetRiderAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetRiderAvailabilityCommandIsNotConstructed)
}

// RiderID is the acting user's id, which is also the rider id.
func (c SetRiderAvailabilityCommand) RiderID() kernel.UUID {
	return c.actor.UserID
}

func (c SetRiderAvailabilityCommand) Online() bool {
	return c.online
}
