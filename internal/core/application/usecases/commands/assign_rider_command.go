package commands

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

var ErrAssignRiderCommandIsNotConstructed = errors.New(
	"AssignRiderCommand must be created via NewAssignRiderCommand or NewManualAssignRiderCommand",
)

// AssignRiderCommand binds a rider to an unassigned order, either the best
// scored candidate (auto) or a named rider (manual override).
//
// Example:
//
//	cmd, err := NewAssignRiderCommand(kernel.SystemActor(), orderID)
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
//	if errors.Is(err, services.ErrNoRidersAvailable) {
//	    log.Println("order stays unassigned")
//	}
type AssignRiderCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	riderID *kernel.UUID

	guard guard.ConstructorGuard
}

// NewAssignRiderCommand requests automatic dispatch. Allowed for admins,
// vendors and the system actor.
func NewAssignRiderCommand(actor kernel.Actor, orderID kernel.UUID) (AssignRiderCommand, error) {
	return newAssignRiderCommand(actor, orderID, nil)
}

// NewManualAssignRiderCommand force-assigns riderID, bypassing scoring.
func NewManualAssignRiderCommand(actor kernel.Actor, orderID, riderID kernel.UUID) (AssignRiderCommand, error) {
	if err := riderID.Validate(); err != nil {
		return AssignRiderCommand{}, err
	}
	return newAssignRiderCommand(actor, orderID, &riderID)
}

func newAssignRiderCommand(actor kernel.Actor, orderID kernel.UUID, riderID *kernel.UUID) (AssignRiderCommand, error) {
	var roleErr error
	switch actor.Role {
	case kernel.RoleAdmin, kernel.RoleVendor, kernel.RoleSystem:
	default:
		roleErr = errs.NewAccessDeniedError("only admins, vendors and the dispatcher assign riders")
	}

	if err := errors.Join(actor.Validate(), roleErr, orderID.Validate()); err != nil {
		return AssignRiderCommand{}, err
	}

	return AssignRiderCommand{
		actor:   actor,
		orderID: orderID,
		riderID: riderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c AssignRiderCommand) Validate() error {
	return c.guard.Validate(ErrAssignRiderCommandIsNotConstructed)
}

func (c AssignRiderCommand) Actor() kernel.Actor {
	return c.actor
}

func (c AssignRiderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// RiderID returns the forced rider, or nil for automatic dispatch.
func (c AssignRiderCommand) RiderID() *kernel.UUID {
	return c.riderID
}

// IsManual reports whether a rider was named.
func (c AssignRiderCommand) IsManual() bool {
	return c.riderID != nil
}
