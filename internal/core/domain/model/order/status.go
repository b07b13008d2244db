package order

import (
	"fmt"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// Forward edges and the roles allowed to take them:
//
//	vendor:  Pending -> Accepted | Rejected
//	         Accepted -> Preparing
//	         Preparing -> ReadyForPickup
//	rider:   Accepted | ReadyForPickup -> PickedUp
//	         PickedUp -> OnTheWay
//	         OnTheWay -> Delivered
//	cancel:  Pending | Accepted | Preparing -> Cancelled
//
// Admins may take any vendor or rider edge. Delivered, Cancelled and Rejected
// are terminal.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota
	Pending
	Accepted
	Preparing
	ReadyForPickup
	PickedUp
	OnTheWay
	Delivered
	Cancelled
	Rejected
)

var statusNames = map[Status]string{
	Pending:        "pending",
	Accepted:       "accepted",
	Preparing:      "preparing",
	ReadyForPickup: "ready_for_pickup",
	PickedUp:       "picked_up",
	OnTheWay:       "on_the_way",
	Delivered:      "delivered",
	Cancelled:      "cancelled",
	Rejected:       "rejected",
}

var (
	vendorEdges = map[Status][]Status{
		Pending:   {Accepted, Rejected},
		Accepted:  {Preparing},
		Preparing: {ReadyForPickup},
	}
	riderEdges = map[Status][]Status{
		Accepted:       {PickedUp},
		ReadyForPickup: {PickedUp},
		PickedUp:       {OnTheWay},
		OnTheWay:       {Delivered},
	}
)

// AllStatuses lists every valid status in lifecycle order.
func AllStatuses() []Status {
	return []Status{Pending, Accepted, Preparing, ReadyForPickup, PickedUp, OnTheWay, Delivered, Cancelled, Rejected}
}

// ActiveStatuses lists the non-terminal statuses.
func ActiveStatuses() []Status {
	return []Status{Pending, Accepted, Preparing, ReadyForPickup, PickedUp, OnTheWay}
}

// AssignableStatuses lists the statuses in which a rider may be bound to the order.
func AssignableStatuses() []Status {
	return []Status{Pending, Accepted, Preparing, ReadyForPickup}
}

// ParseStatus converts the persisted/wire name of a status ("ready_for_pickup") to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is one of the nine lifecycle states.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the snake_case name of the status, or "unknown".
func (s Status) String() string {
	if str, ok := statusNames[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no forward transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == Rejected
}

// IsActive reports whether s is a valid non-terminal status.
func (s Status) IsActive() bool {
	return s.Validate() == nil && !s.IsTerminal()
}

// IsAssignable reports whether a rider may be bound to an order in status s.
func (s Status) IsAssignable() bool {
	return s == Pending || s == Accepted || s == Preparing || s == ReadyForPickup
}

// CanCancel reports whether s may move to Cancelled.
func (s Status) CanCancel() bool {
	return s == Pending || s == Accepted || s == Preparing
}

// IsRiderEdge reports whether s -> to is a rider-driven edge.
func (s Status) IsRiderEdge(to Status) bool {
	return containsStatus(riderEdges[s], to)
}

// CanTransition reports whether role may move an order from s to to.
//
// Parameters:
//   - role: the acting role; customers own no forward edge, admins own every vendor and rider edge
//   - to: requested status
//
// Cancellation is not part of this table; see CanCancel.
func (s Status) CanTransition(role kernel.Role, to Status) bool {
	switch role {
	case kernel.RoleVendor:
		return containsStatus(vendorEdges[s], to)
	case kernel.RoleRider:
		return containsStatus(riderEdges[s], to)
	case kernel.RoleAdmin:
		return containsStatus(vendorEdges[s], to) || containsStatus(riderEdges[s], to)
	default:
		return false
	}
}

// TransitionTo returns the target status if role may take the edge, otherwise an
// IllegalTransitionError.
//
// Example:
//
//	next, err := order.Pending.TransitionTo(kernel.RoleVendor, order.Accepted)
//	// next == order.Accepted, err == nil
func (s Status) TransitionTo(role kernel.Role, to Status) (Status, error) {
	if !s.CanTransition(role, to) {
		return Unknown, NewIllegalTransitionError(s, to)
	}
	return to, nil
}

func containsStatus(list []Status, s Status) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}
