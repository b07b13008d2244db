package commands

import (
	"errors"
	"strings"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand is a customer's request to order products from one vendor.
//
// Example:
//
//	dropOff, _ := kernel.NewLocation(27.71, 85.32, "Thamel, Kathmandu")
//	cmd, err := NewPlaceOrderCommand(kernel.NewUUID(), customer, vendorID, order.TypeRegular,
//	    []services.LineRequest{{ProductID: momoID, Quantity: 2}}, dropOff, decimal.Zero, "")
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type PlaceOrderCommand struct {
	orderID  kernel.UUID
	customer kernel.Actor
	vendorID kernel.UUID
	typ      order.Type
	lines    []services.LineRequest
	dropOff  kernel.Location
	tip      decimal.Decimal
	notes    string

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand validates the request shape. Catalog checks happen in the handler.
func NewPlaceOrderCommand(
	orderID kernel.UUID,
	customer kernel.Actor,
	vendorID kernel.UUID,
	typ order.Type,
	lines []services.LineRequest,
	dropOff kernel.Location,
	tip decimal.Decimal,
	notes string,
) (PlaceOrderCommand, error) {
	cmd := PlaceOrderCommand{
		tip:   tip,
		notes: strings.TrimSpace(notes),
		guard: guard.NewConstructorGuard(),
	}

	var roleErr error
	if customer.Role != kernel.RoleCustomer {
		roleErr = errs.NewAccessDeniedError("only customers place orders")
	}
	var linesErr error
	if len(lines) == 0 {
		linesErr = order.ErrItemsAreRequired
	}
	var tipErr error
	if tip.IsNegative() {
		tipErr = errs.NewValueIsOutOfRangeError("tip", tip.String(), 0, "unbounded")
	}
	var locationErr error
	if err := dropOff.Validate(); err != nil {
		locationErr = errs.NewValueIsRequiredErrorWithCause("customerLocation", err)
	}

	if err := errors.Join(
		orderID.Validate(),
		customer.Validate(),
		roleErr,
		vendorID.Validate(),
		typ.Validate(),
		linesErr,
		tipErr,
		locationErr,
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.customer = customer
	cmd.vendorID = vendorID
	cmd.typ = typ
	cmd.lines = append([]services.LineRequest(nil), lines...)
	cmd.dropOff = dropOff
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c PlaceOrderCommand) Customer() kernel.Actor {
	return c.customer
}

func (c PlaceOrderCommand) VendorID() kernel.UUID {
	return c.vendorID
}

func (c PlaceOrderCommand) Type() order.Type {
	return c.typ
}

// Lines returns a copy of the requested lines.
func (c PlaceOrderCommand) Lines() []services.LineRequest {
	return append([]services.LineRequest(nil), c.lines...)
}

func (c PlaceOrderCommand) DropOff() kernel.Location {
	return c.dropOff
}

func (c PlaceOrderCommand) Tip() decimal.Decimal {
	return c.tip
}

func (c PlaceOrderCommand) Notes() string {
	return c.notes
}
