package commands

import (
	"context"
	"fmt"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/pkg/errs"
)

// PlaceOrderCommandHandler prices a basket, reserves stock and persists the
// order in one transaction. If any step fails nothing is written.
//
// Example:
//
//	handler := NewPlaceOrderCommandHandler(uowFactory, pricing, eta)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    if errors.Is(err, catalog.ErrOutOfStock) {
//	        // another customer took the last units
//	    }
//	    return err
//	}
type PlaceOrderCommandHandler struct {
	uowFactory PlaceOrderUoWFactory
	pricing    services.PricingCalculator
	eta        services.ETAEstimator
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
func NewPlaceOrderCommandHandler(
	uowFactory PlaceOrderUoWFactory,
	pricing services.PricingCalculator,
	eta services.ETAEstimator,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		pricing:    pricing,
		eta:        eta,
	}
}

// Handle resolves vendor and products, prices the order, decrements stock per
// line with a conditional update and adds the pending order.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) error {
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

	vendor, err := uow.VendorDirectory().GetVendor(ctx, cmd.VendorID())
	if err != nil {
		return err
	}

	lines := cmd.Lines()
	ids := make([]kernel.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	catalog := uow.ProductCatalog()
	products, err := catalog.GetProducts(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		if !p.VendorID.IsEqual(vendor.ID) {
			return errs.NewValueIsInvalidErrorWithCause("items",
				fmt.Errorf("product %s is not sold by vendor %s", p.ID, vendor.ID))
		}
	}

	pickup := cmd.DropOff()
	if vendor.Location != nil {
		pickup = *vendor.Location
	}

	quote, err := h.pricing.Price(lines, products, cmd.DropOff(), pickup, cmd.Tip())
	if err != nil {
		return err
	}

	for _, line := range lines {
		if err = catalog.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	estimatedPickup, estimatedDelivery := h.eta.AtPlacement(cmd.Type(), quote.DistanceKm, now)

	o, err := order.NewOrder(order.Placement{
		ID:                    cmd.OrderID(),
		Customer:              cmd.Customer(),
		VendorID:              vendor.ID,
		Type:                  cmd.Type(),
		Priority:              h.pricing.Priority(cmd.Type(), quote.Financials),
		Items:                 quote.Items,
		Financials:            quote.Financials,
		CustomerLocation:      cmd.DropOff(),
		VendorLocation:        vendor.Location,
		EstimatedPickupTime:   estimatedPickup,
		EstimatedDeliveryTime: estimatedDelivery,
		Notes:                 cmd.Notes(),
		PlacedAt:              now,
	})
	if err != nil {
		return err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
