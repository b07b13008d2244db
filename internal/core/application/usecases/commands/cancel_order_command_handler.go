package commands

import (
	"context"
	"time"

	"orderdispatch/internal/core/domain/services"
)

// CancelOrderCommandHandler cancels an order and, if a rider was bound,
// records the cancelled delivery and frees the rider.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	ledger     services.EarningsLedger
}

func NewCancelOrderCommandHandler(uowFactory UoWFactory, ledger services.EarningsLedger) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) error {
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
	if err = o.Cancel(cmd.Actor(), cmd.Reason(), now); err != nil {
		return err
	}

	if err = persistTransition(ctx, uow, h.ledger, o, now); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
