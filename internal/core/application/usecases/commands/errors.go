package commands

import (
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
)

// notFound hides orders the actor is not a party to.
func notFound(orderID kernel.UUID) error {
	return errs.NewObjectNotFoundError("order", orderID.String())
}
