package commands

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

var ErrRegisterRiderCommandIsNotConstructed = errors.New(
	"RegisterRiderCommand must be created via NewRegisterRiderCommand constructor",
)

// RegisterRiderCommand onboards the rider profile of an existing user account.
//
// Example:
//
//	cmd, err := NewRegisterRiderCommand(admin, userID, rider.Profile{
//	    Name: "Sita Rai", Phone: "9800000000", LicensePlate: "BA 2 PA 1234",
//	}, rider.Preferences{IsAvailable: true, MaxDistanceKm: 8}, true)
type RegisterRiderCommand struct {
	actor       kernel.Actor
	userID      kernel.UUID
	profile     rider.Profile
	preferences rider.Preferences
	approve     bool

	guard guard.ConstructorGuard
}

// NewRegisterRiderCommand is restricted to admins. approve marks the rider
// verified so it can be dispatched immediately.
func NewRegisterRiderCommand(
	actor kernel.Actor,
	userID kernel.UUID,
	profile rider.Profile,
	preferences rider.Preferences,
	approve bool,
) (RegisterRiderCommand, error) {
	var roleErr error
	if actor.Role != kernel.RoleAdmin {
		roleErr = errs.NewAccessDeniedError("only admins register riders")
	}

	if err := errors.Join(
		actor.Validate(),
		roleErr,
		userID.Validate(),
		profile.Validate(),
		preferences.Validate(),
	); err != nil {
		return RegisterRiderCommand{}, err
	}

	return RegisterRiderCommand{
		actor:       actor,
		userID:      userID,
		profile:     profile,
		preferences: preferences,
		approve:     approve,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RegisterRiderCommand) Validate() error {
	return c.guard.Validate(ErrRegisterRiderCommandIsNotConstructed)
}

func (c RegisterRiderCommand) UserID() kernel.UUID {
	return c.userID
}

func (c RegisterRiderCommand) Profile() rider.Profile {
	return c.profile
}

func (c RegisterRiderCommand) Preferences() rider.Preferences {
	return c.preferences
}

func (c RegisterRiderCommand) Approve() bool {
	return c.approve
}
