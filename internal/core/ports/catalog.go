package ports

import (
	"context"

	"orderdispatch/internal/core/domain/model/catalog"
	"orderdispatch/internal/core/domain/model/kernel"
)

// ProductCatalog is the slice of the product catalog that order placement needs.
type ProductCatalog interface {
	// GetProducts returns the products that exist among ids. Missing ids are
	// simply absent from the result.
	GetProducts(ctx context.Context, ids []kernel.UUID) ([]catalog.Product, error)

	// DecrementStock atomically removes quantity units if at least that many are
	// left and the product is available; otherwise catalog.ErrOutOfStock.
	DecrementStock(ctx context.Context, productID kernel.UUID, quantity int) error
}

// VendorDirectory resolves vendor pickup points.
type VendorDirectory interface {
	GetVendor(ctx context.Context, id kernel.UUID) (catalog.Vendor, error)
}
