package commands

import (
	"context"
	"errors"
	"time"

	"orderdispatch/internal/core/domain/services"
)

// RejectOrderCommandHandler unbinds the rejecting rider and immediately runs
// one more dispatch for the order, excluding that rider.
//
// The rejection is committed even when the re-dispatch finds nobody; in that
// case Handle returns services.ErrNoRidersAvailable after the commit so the
// caller can surface it. Dispatch is not retried here.
type RejectOrderCommandHandler struct {
	uowFactory UoWFactory
	dispatcher services.OrderDispatcher
}

func NewRejectOrderCommandHandler(uowFactory UoWFactory, dispatcher services.OrderDispatcher) RejectOrderCommandHandler {
	return RejectOrderCommandHandler{
		uowFactory: uowFactory,
		dispatcher: dispatcher,
	}
}

func (h RejectOrderCommandHandler) Handle(ctx context.Context, cmd RejectOrderCommand) error {
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

	orderRepo := uow.OrderRepository()
	riderRepo := uow.RiderRepository()

	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if !o.IsVisibleTo(cmd.Actor()) {
		return notFound(cmd.OrderID())
	}

	now := time.Now().UTC()
	releasedID, err := o.RejectByRider(cmd.Actor(), cmd.Reason(), now)
	if err != nil {
		return err
	}

	released, err := riderRepo.Get(ctx, releasedID)
	if err != nil {
		return err
	}
	released.Release(o.ID())

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = riderRepo.Update(ctx, released); err != nil {
		return err
	}

	next, dispatchErr := dispatchOrder(ctx, uow, h.dispatcher, o, now)
	switch {
	case errors.Is(dispatchErr, services.ErrNoRidersAvailable):
		if err = uow.Commit(ctx); err != nil {
			return err
		}
		return dispatchErr
	case dispatchErr != nil:
		return dispatchErr
	}

	if err = saveAssignment(ctx, uow, o, next); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
