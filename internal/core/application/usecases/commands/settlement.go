package commands

import (
	"context"
	"time"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/domain/services"
)

// persistTransition writes an order whose status just changed, together with
// the rider side effects of the new status: OnDelivery at pickup, settlement
// and release on terminal states.
func persistTransition(ctx context.Context, uow UoW, ledger services.EarningsLedger, o *order.Order, at time.Time) error {
	var r *rider.Rider
	status := o.Status()
	if o.RiderID() != nil && (status == order.PickedUp || status.IsTerminal()) {
		var err error
		if r, err = uow.RiderRepository().Get(ctx, *o.RiderID()); err != nil {
			return err
		}
	}

	if status == order.PickedUp && r != nil {
		if err := r.StartDelivery(o.ID()); err != nil {
			return err
		}
	}

	if status.IsTerminal() {
		if _, err := ledger.Settle(o, r, at); err != nil {
			return err
		}
	}

	if err := uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}
	if r != nil {
		if err := uow.RiderRepository().Update(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
