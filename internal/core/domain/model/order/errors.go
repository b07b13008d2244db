package order

import (
	"errors"
	"fmt"

	"orderdispatch/internal/pkg/errs"
)

// MinReasonLength is the shortest accepted cancellation or rejection reason.
const MinReasonLength = 3

// Domain errors for order operations. Conflict errors unwrap to errs.ErrConflict,
// validation errors to the errs validation family.
var (
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	ErrIllegalTransition         = errs.NewConflictError("order status", "transition is not allowed")
	ErrAlreadyAssigned           = errs.NewConflictError("order", "already has a rider")
	ErrNotAssignable             = errs.NewConflictError("order", "cannot take a rider in its current status")
	ErrRiderExcluded             = errs.NewConflictError("order", "was rejected by this rider")
	ErrRiderNotAssigned          = errs.NewConflictError("order", "has no rider")
	ErrAssignmentNotAccepted     = errs.NewConflictError("order", "assignment is not accepted yet")
	ErrAssignmentAlreadyAccepted = errs.NewConflictError("order", "assignment is already accepted")
	ErrAlreadyRated              = errs.NewConflictError("order", "is already rated")
	ErrNotDeliverable            = errs.NewConflictError("order", "is not delivered")
	ErrOrderNotActive            = errs.NewConflictError("order", "is no longer active")

	ErrNotOrderParty = errs.NewAccessDeniedError("actor is not a party of this order")

	ErrReasonTooShort = errs.NewValueIsInvalidErrorWithCause(
		"reason", fmt.Errorf("must be at least %d characters", MinReasonLength))
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// IllegalTransitionError reports a status change that is not in the transition
// table for the acting role. It matches both ErrIllegalTransition and errs.ErrConflict.
type IllegalTransitionError struct {
	From Status
	To   Status
}

// NewIllegalTransitionError creates an IllegalTransitionError.
func NewIllegalTransitionError(from, to Status) *IllegalTransitionError {
	return &IllegalTransitionError{From: from, To: to}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s -> %s", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}
