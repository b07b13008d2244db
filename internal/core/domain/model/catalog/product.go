// Package catalog holds the read models of the product catalog and vendor
// directory that order placement depends on. The catalog itself is owned by
// another service; only the fields needed to price and reserve stock live here.
package catalog

import (
	"fmt"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var (
	// ErrOutOfStock is returned when a product has fewer units than requested.
	ErrOutOfStock = errs.NewConflictError("product", "is out of stock")
	// ErrProductUnavailable is returned for products disabled by their vendor.
	ErrProductUnavailable = errs.NewConflictError("product", "is unavailable")
)

// Product is the catalog view of a sellable item at the time it is read.
type Product struct {
	ID          kernel.UUID
	VendorID    kernel.UUID
	Name        string
	Image       string
	Unit        string
	Category    string
	Price       decimal.Decimal
	Stock       int
	IsAvailable bool
}

// CheckOrderable returns ErrProductUnavailable or ErrOutOfStock when quantity
// units of the product cannot be ordered right now.
func (p Product) CheckOrderable(quantity int) error {
	if !p.IsAvailable {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, p.ID)
	}
	if quantity > p.Stock {
		return fmt.Errorf("%w: %s has %d, requested %d", ErrOutOfStock, p.ID, p.Stock, quantity)
	}
	return nil
}

// Vendor is the directory entry of a store; Location is its pickup point.
type Vendor struct {
	ID       kernel.UUID
	Name     string
	Location *kernel.Location
}
