package commands

import (
	"context"
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/services"
)

// UpdateRiderLocationCommandHandler stores a rider ping and, when the rider
// holds an active order, mirrors it onto the order with a fresh delivery ETA.
//
// Neither write is version guarded: pings overwrite each other and must not
// conflict with dispatch or status changes. The order write is conditioned on
// the order still being active and bound to this rider.
type UpdateRiderLocationCommandHandler struct {
	uowFactory UoWFactory
	eta        services.ETAEstimator
}

func NewUpdateRiderLocationCommandHandler(uowFactory UoWFactory, eta services.ETAEstimator) UpdateRiderLocationCommandHandler {
	return UpdateRiderLocationCommandHandler{
		uowFactory: uowFactory,
		eta:        eta,
	}
}

func (h UpdateRiderLocationCommandHandler) Handle(ctx context.Context, cmd UpdateRiderLocationCommand) error {
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

	riderRepo := uow.RiderRepository()
	r, err := riderRepo.Get(ctx, cmd.RiderID())
	if err != nil {
		return err
	}

	position := cmd.Position()
	if err = r.UpdateLocation(position); err != nil {
		return err
	}
	if err = riderRepo.UpdateLocation(ctx, r); err != nil {
		return err
	}

	if r.CurrentAssignment() != nil {
		if err = h.trackOrder(ctx, uow, r.CurrentAssignment(), cmd); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}

func (h UpdateRiderLocationCommandHandler) trackOrder(ctx context.Context, uow UoW, orderID *kernel.UUID, cmd UpdateRiderLocationCommand) error {
	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, *orderID)
	if err != nil {
		return err
	}
	if !o.Status().IsActive() || !o.IsAssignedTo(cmd.RiderID()) {
		return nil
	}

	eta, err := h.eta.FromRider(o, cmd.Position())
	if err != nil {
		return err
	}
	if err = o.TrackRider(cmd.RiderID(), cmd.Position(), eta); err != nil {
		return err
	}

	err = orderRepo.UpdateTracking(ctx, o)
	if errors.Is(err, order.ErrOrderNotActive) {
		return nil
	}
	return err
}
