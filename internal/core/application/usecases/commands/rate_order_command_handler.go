package commands

import (
	"context"
	"time"

	"orderdispatch/internal/core/domain/services"
)

// RateOrderCommandHandler stores the rating and folds it into the rider's average.
type RateOrderCommandHandler struct {
	uowFactory UoWFactory
	ledger     services.EarningsLedger
}

func NewRateOrderCommandHandler(uowFactory UoWFactory, ledger services.EarningsLedger) RateOrderCommandHandler {
	return RateOrderCommandHandler{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

func (h RateOrderCommandHandler) Handle(ctx context.Context, cmd RateOrderCommand) error {
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
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if !o.IsVisibleTo(cmd.Actor()) {
		return notFound(cmd.OrderID())
	}

	if err = o.Rate(cmd.Actor(), cmd.Score(), cmd.Comment(), time.Now().UTC()); err != nil {
		return err
	}
	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	if o.RiderID() != nil {
		riderRepo := uow.RiderRepository()
		r, err := riderRepo.Get(ctx, *o.RiderID())
		if err != nil {
			return err
		}
		if err = h.ledger.ApplyRating(o, r); err != nil {
			return err
		}
		if err = riderRepo.Update(ctx, r); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
