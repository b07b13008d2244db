package services

import (
	"errors"
	"fmt"

	"orderdispatch/internal/core/domain/model/catalog"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PricingPolicy holds the tax and delivery fee parameters.
type PricingPolicy struct {
	TaxRate         decimal.Decimal
	BaseDeliveryFee decimal.Decimal
	FreeRadiusKm    decimal.Decimal
	PerKmRate       decimal.Decimal
	// UrgentThreshold is the order total from which tmart orders are urgent
	// and regular orders high priority.
	UrgentThreshold decimal.Decimal
	// LowValueThreshold is the item total under which orders are low priority.
	LowValueThreshold decimal.Decimal
}

// DefaultPricingPolicy returns 13% tax and a fee of 50 plus 10 per km beyond 3 km.
func DefaultPricingPolicy() PricingPolicy {
	return PricingPolicy{
		TaxRate:           decimal.RequireFromString("0.13"),
		BaseDeliveryFee:   decimal.NewFromInt(50),
		FreeRadiusKm:      decimal.NewFromInt(3),
		PerKmRate:         decimal.NewFromInt(10),
		UrgentThreshold:   decimal.NewFromInt(2000),
		LowValueThreshold: decimal.NewFromInt(100),
	}
}

// LineRequest is one requested product and quantity.
type LineRequest struct {
	ProductID kernel.UUID
	Quantity  int
}

// Quote is the result of pricing a basket.
type Quote struct {
	Items      []order.Item
	Financials order.Financials
	DistanceKm float64
}

// PricingCalculator prices an order from catalog data.
//
// Example:
//
//	calc := services.NewPricingCalculator(services.DefaultPricingPolicy())
//	quote, err := calc.Price(lines, products, dropOff, pickup, decimal.NewFromInt(20))
//	if errors.Is(err, catalog.ErrOutOfStock) {
//	    // tell the customer
//	}
type PricingCalculator struct {
	policy PricingPolicy
}

// NewPricingCalculator creates a calculator with the given policy.
func NewPricingCalculator(policy PricingPolicy) PricingCalculator {
	return PricingCalculator{policy: policy}
}

// Price checks every line against the catalog, snapshots product data and
// computes the financial breakdown.
//
// Parameters:
//   - lines: requested products; quantities must be at least 1 and products distinct
//   - products: catalog entries for the requested products
//   - dropOff: customer location (must be valid)
//   - pickup: vendor location used for the delivery distance
//   - tip: optional tip, must not be negative
//
// Returns:
//   - Quote with items, totals and the pickup to drop-off distance
//   - catalog.ErrProductUnavailable or catalog.ErrOutOfStock (conflict)
//   - errs.ErrObjectNotFound for products missing from the catalog
//   - validation errors for bad quantities, tip or location
func (c PricingCalculator) Price(
	lines []LineRequest,
	products []catalog.Product,
	dropOff kernel.Location,
	pickup kernel.Location,
	tip decimal.Decimal,
) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, order.ErrItemsAreRequired
	}
	if tip.IsNegative() {
		return Quote{}, errs.NewValueIsInvalidErrorWithCause("tip", fmt.Errorf("%s is negative", tip))
	}
	if err := dropOff.Validate(); err != nil {
		return Quote{}, errs.NewValueIsInvalidErrorWithCause("customerLocation", err)
	}

	byID := make(map[kernel.UUID]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]order.Item, 0, len(lines))
	seen := make(map[kernel.UUID]bool, len(lines))
	itemTotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return Quote{}, errs.NewValueIsOutOfRangeError("quantity", line.Quantity, 1, "unbounded")
		}
		if seen[line.ProductID] {
			return Quote{}, errs.NewValueIsInvalidErrorWithCause("items", errors.New("duplicate product "+line.ProductID.String()))
		}
		seen[line.ProductID] = true

		product, ok := byID[line.ProductID]
		if !ok {
			return Quote{}, errs.NewObjectNotFoundError("product", line.ProductID.String())
		}
		if err := product.CheckOrderable(line.Quantity); err != nil {
			return Quote{}, err
		}

		item := order.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Unit:      product.Unit,
			Category:  product.Category,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		}
		items = append(items, item)
		itemTotal = itemTotal.Add(item.LineTotal())
	}

	distance, err := pickup.DistanceKm(dropOff)
	if err != nil {
		return Quote{}, err
	}

	financials, err := c.Totals(itemTotal, distance, tip)
	if err != nil {
		return Quote{}, err
	}

	return Quote{Items: items, Financials: financials, DistanceKm: distance}, nil
}

// Totals computes tax, delivery fee and total for an item total.
//
// Example:
//
//	f, _ := calc.Totals(decimal.NewFromInt(1000), 8, decimal.Zero)
//	// f.Tax = 130, f.DeliveryFee = 100, f.Total = 1230
func (c PricingCalculator) Totals(itemTotal decimal.Decimal, distanceKm float64, tip decimal.Decimal) (order.Financials, error) {
	tax := itemTotal.Mul(c.policy.TaxRate).Round(2)
	return order.NewFinancials(itemTotal, tax, c.DeliveryFee(distanceKm), tip)
}

// DeliveryFee is base + max(0, distance - free radius) × per-km rate, rounded to cents.
func (c PricingCalculator) DeliveryFee(distanceKm float64) decimal.Decimal {
	extra := decimal.NewFromFloat(distanceKm).Sub(c.policy.FreeRadiusKm)
	if extra.IsNegative() {
		extra = decimal.Zero
	}
	return c.policy.BaseDeliveryFee.Add(extra.Mul(c.policy.PerKmRate)).Round(2)
}

// Priority derives the dispatch priority from order type and value.
func (c PricingCalculator) Priority(orderType order.Type, f order.Financials) order.Priority {
	large := f.Total.GreaterThanOrEqual(c.policy.UrgentThreshold)
	switch {
	case orderType == order.TypeTmart && large:
		return order.PriorityUrgent
	case orderType == order.TypeTmart, large:
		return order.PriorityHigh
	case f.ItemTotal.LessThan(c.policy.LowValueThreshold):
		return order.PriorityLow
	default:
		return order.PriorityNormal
	}
}
