package commands

import (
	"context"
)

// SetRiderAvailabilityCommandHandler applies GoOnline/GoOffline. Going offline
// while holding an order fails with rider.ErrHasActiveAssignment.
type SetRiderAvailabilityCommandHandler struct {
	uowFactory RiderUoWFactory
}

func NewSetRiderAvailabilityCommandHandler(uowFactory RiderUoWFactory) SetRiderAvailabilityCommandHandler {
	return SetRiderAvailabilityCommandHandler{uowFactory: uowFactory}
}

func (h SetRiderAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetRiderAvailabilityCommand) error {
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

	if cmd.Online() {
		err = r.GoOnline()
	} else {
		err = r.GoOffline()
	}
	if err != nil {
		return err
	}

	if err = riderRepo.Update(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
