package commands

import (
	"errors"

	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

var ErrDispatchPendingOrdersCommandIsNotConstructed = errors.New(
	"DispatchPendingOrdersCommand must be created via NewDispatchPendingOrdersCommand constructor",
)

// DispatchPendingOrdersCommand sweeps active orders that still have no rider.
type DispatchPendingOrdersCommand struct {
	limit int

	guard guard.ConstructorGuard
}

// NewDispatchPendingOrdersCommand bounds one sweep to limit orders, oldest first.
func NewDispatchPendingOrdersCommand(limit int) (DispatchPendingOrdersCommand, error) {
	if limit < 1 {
		return DispatchPendingOrdersCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, 1000)
	}
	return DispatchPendingOrdersCommand{limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c DispatchPendingOrdersCommand) Validate() error {
	return c.guard.Validate(ErrDispatchPendingOrdersCommandIsNotConstructed)
}

func (c DispatchPendingOrdersCommand) Limit() int {
	return c.limit
}
