package commands

import (
	"context"
	"time"

	"orderdispatch/internal/core/domain/model/rider"
)

// RegisterRiderCommandHandler creates rider profiles.
type RegisterRiderCommandHandler struct {
	uowFactory RiderUoWFactory
}

func NewRegisterRiderCommandHandler(uowFactory RiderUoWFactory) RegisterRiderCommandHandler {
	return RegisterRiderCommandHandler{uowFactory: uowFactory}
}

// Handle adds the rider. A second profile for the same user or a reused
// license plate fails with a conflict from the repository.
func (h RegisterRiderCommandHandler) Handle(ctx context.Context, cmd RegisterRiderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	r, err := rider.NewRider(cmd.UserID(), cmd.Profile(), time.Now().UTC())
	if err != nil {
		return err
	}
	if err = r.SetPreferences(cmd.Preferences()); err != nil {
		return err
	}
	if cmd.Approve() {
		r.Approve()
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.RiderRepository().Add(ctx, r); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
