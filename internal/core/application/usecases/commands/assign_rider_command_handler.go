package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/core/ports"
)

// AssignRiderCommandHandler orchestrates rider dispatch.
// Both aggregates are written under their version guards in one transaction,
// so two concurrent attempts on the same order or the same rider cannot both win.
//
// Example:
//
//	handler := NewAssignRiderCommandHandler(uowFactory, dispatcher)
//	err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, services.ErrNoRidersAvailable):
//	    log.Println("No eligible riders nearby")
//	case errors.Is(err, order.ErrAlreadyAssigned):
//	    log.Println("Lost the race; reload and retry")
//	case err != nil:
//	    log.Printf("Assignment failed: %v", err)
//	}
type AssignRiderCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
}

// NewAssignRiderCommandHandler creates a handler for rider assignment operations.
func NewAssignRiderCommandHandler(uowFactory UoWFactory, dispatcher services.OrderDispatcher) AssignRiderCommandHandler {
	return AssignRiderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

// Handle processes the assignment command.
// Returns services.ErrNoRidersAvailable when auto dispatch finds nobody, and
// order.ErrAlreadyAssigned when the order or rider changed under us.
func (h AssignRiderCommandHandler) Handle(ctx context.Context, cmd AssignRiderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if !o.IsVisibleTo(cmd.Actor()) {
		return notFound(cmd.OrderID())
	}

	now := time.Now().UTC()
	var chosen *rider.Rider
	if cmd.IsManual() {
		chosen, err = uow.RiderRepository().Get(ctx, *cmd.RiderID())
		if err != nil {
			return err
		}
		err = h.dispatcher.Bind(o, chosen, now)
	} else {
		chosen, err = dispatchOrder(ctx, uow, h.dispatcher, o, now)
	}
	if err != nil {
		return err
	}

	if err = saveAssignment(ctx, uow, o, chosen); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// dispatchOrder loads candidates around the pickup point and binds the best one.
func dispatchOrder(
	ctx context.Context,
	uow UoW,
	dispatcher services.OrderDispatcher,
	o *order.Order,
	at time.Time,
) (*rider.Rider, error) {
	if err := o.CheckDispatchable(); err != nil {
		return nil, err
	}

	policy := dispatcher.Policy()
	candidates, err := uow.RiderRepository().FindCandidates(ctx, o.PickupLocation(), policy.RadiusKm, policy.CandidateLimit)
	if err != nil {
		return nil, err
	}

	return dispatcher.Dispatch(o, candidates, at)
}

// saveAssignment writes both sides of a binding. A version guard failure on
// either aggregate means someone else bound it first.
func saveAssignment(ctx context.Context, uow UoW, o *order.Order, r *rider.Rider) error {
	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return asAlreadyAssigned(err)
	}
	if err := uow.RiderRepository().Update(ctx, r); err != nil {
		return asAlreadyAssigned(err)
	}
	return nil
}

func asAlreadyAssigned(err error) error {
	if errors.Is(err, ports.ErrConcurrentModification) {
		return fmt.Errorf("%w: %w", order.ErrAlreadyAssigned, err)
	}
	return err
}
