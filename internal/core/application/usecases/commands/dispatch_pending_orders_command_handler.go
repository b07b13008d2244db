package commands

import (
	"context"
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/core/ports"
)

// DispatchPendingOrdersCommandHandler retries dispatch for unassigned orders.
// Each order is dispatched in its own transaction, so one failure does not
// undo the others.
type DispatchPendingOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	assign     AssignRiderCommandHandler
}

func NewDispatchPendingOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	assign AssignRiderCommandHandler,
) DispatchPendingOrdersCommandHandler {
	return DispatchPendingOrdersCommandHandler{
		uowFactory: uowFactory,
		assign:     assign,
	}
}

// Handle returns how many orders got a rider. Orders for which nobody is
// available, or which were taken by a concurrent dispatch, are skipped
// silently; any other failure is joined into the returned error.
func (h DispatchPendingOrdersCommandHandler) Handle(ctx context.Context, cmd DispatchPendingOrdersCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	pending, err := h.listPending(ctx, cmd.Limit())
	if err != nil {
		return 0, err
	}

	var (
		dispatched int
		failures   []error
	)
	for _, o := range pending {
		if ctx.Err() != nil {
			failures = append(failures, ctx.Err())
			break
		}

		assignCmd, err := NewAssignRiderCommand(kernel.SystemActor(), o.ID())
		if err != nil {
			failures = append(failures, err)
			continue
		}

		err = h.assign.Handle(ctx, assignCmd)
		switch {
		case err == nil:
			dispatched++
		case isSkippable(err):
		default:
			failures = append(failures, err)
		}
	}

	return dispatched, errors.Join(failures...)
}

func (h DispatchPendingOrdersCommandHandler) listPending(ctx context.Context, limit int) ([]*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().FindUnassignedActive(ctx, limit)
}

func isSkippable(err error) bool {
	return errors.Is(err, services.ErrNoRidersAvailable) ||
		errors.Is(err, order.ErrAlreadyAssigned) ||
		errors.Is(err, order.ErrNotAssignable) ||
		errors.Is(err, ports.ErrConcurrentModification)
}
