package commands

import (
	"context"
	"time"

	"orderdispatch/internal/core/domain/services"
)

// UpdateOrderStatusCommandHandler validates and persists one status change.
// Terminal states settle the ledger and release the rider in the same transaction.
//
// Example:
//
//	cmd, _ := NewUpdateOrderStatusCommand(vendor, orderID, order.Accepted, "")
//	err := handler.Handle(ctx, cmd)
//	var illegal *order.IllegalTransitionError
//	if errors.As(err, &illegal) {
//	    log.Printf("cannot go from %s to %s", illegal.From, illegal.To)
//	}
type UpdateOrderStatusCommandHandler struct {
	uowFactory UoWFactory
	ledger     services.EarningsLedger
}

func NewUpdateOrderStatusCommandHandler(uowFactory UoWFactory, ledger services.EarningsLedger) UpdateOrderStatusCommandHandler {
	return UpdateOrderStatusCommandHandler{
		uowFactory: uowFactory,
		ledger:     ledger,
	}
}

// Handle loads the order, applies the transition and writes it under the version
// guard. A concurrent change fails with ports.ErrConcurrentModification.
func (h UpdateOrderStatusCommandHandler) Handle(ctx context.Context, cmd UpdateOrderStatusCommand) error {
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
	if err = o.Transition(cmd.Actor(), cmd.Status(), cmd.Note(), now); err != nil {
		return err
	}

	if err = persistTransition(ctx, uow, h.ledger, o, now); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
