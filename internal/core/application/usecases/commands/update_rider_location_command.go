package commands

import (
	"errors"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/guard"
)

var ErrUpdateRiderLocationCommandIsNotConstructed = errors.New(
	"UpdateRiderLocationCommand must be created via NewUpdateRiderLocationCommand constructor",
)

// UpdateRiderLocationCommand is a live position ping from the acting rider.
type UpdateRiderLocationCommand struct {
	actor    kernel.Actor
	position kernel.Position

	guard guard.ConstructorGuard
}

// NewUpdateRiderLocationCommand stamps the ping with recordedAt (server time when zero).
func NewUpdateRiderLocationCommand(actor kernel.Actor, location kernel.Location, recordedAt time.Time) (UpdateRiderLocationCommand, error) {
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	position, posErr := kernel.NewPosition(location, recordedAt)

	if err := errors.Join(actor.Validate(), requireRider(actor), posErr); err != nil {
		return UpdateRiderLocationCommand{}, err
	}

	return UpdateRiderLocationCommand{actor: actor, position: position, guard: guard.NewConstructorGuard()}, nil
}

func (c UpdateRiderLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateRiderLocationCommandIsNotConstructed)
}

func (c UpdateRiderLocationCommand) RiderID() kernel.UUID {
	return c.actor.UserID
}

func (c UpdateRiderLocationCommand) Position() kernel.Position {
	return c.position
}
