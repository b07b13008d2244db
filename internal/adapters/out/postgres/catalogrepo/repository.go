package catalogrepo

import (
	"context"
	"errors"
	"fmt"

	"orderdispatch/internal/core/domain/model/catalog"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalog implements both ProductCatalog and VendorDirectory.
type GormCatalog struct {
	db *gorm.DB
}

// NewGormCatalog creates a catalog bound to db, usually a transaction.
func NewGormCatalog(db *gorm.DB) *GormCatalog {
	return &GormCatalog{db: db}
}

// GetProducts loads the products among ids. Unknown ids are skipped.
func (c *GormCatalog) GetProducts(ctx context.Context, ids []kernel.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		raw = append(raw, id.Bytes())
	}

	var dtos []ProductDTO
	if err := c.db.WithContext(ctx).Where("id IN ?", raw).Find(&dtos).Error; err != nil {
		return nil, err
	}

	products := make([]catalog.Product, 0, len(dtos))
	for _, dto := range dtos {
		p, err := productToDomain(dto)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// DecrementStock reserves quantity units with a single conditional update, so
// two placements racing for the last unit cannot both succeed.
func (c *GormCatalog) DecrementStock(ctx context.Context, productID kernel.UUID, quantity int) error {
	if err := productID.Validate(); err != nil {
		return err
	}
	if quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "unbounded")
	}

	result := c.db.WithContext(ctx).
		Model(&ProductDTO{}).
		Where("id = ? AND stock >= ? AND is_available", productID.Bytes(), quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s, requested %d", catalog.ErrOutOfStock, productID, quantity)
	}
	return nil
}

// GetVendor resolves a vendor, or errs.ErrObjectNotFound.
func (c *GormCatalog) GetVendor(ctx context.Context, id kernel.UUID) (catalog.Vendor, error) {
	if err := id.Validate(); err != nil {
		return catalog.Vendor{}, err
	}

	var dto VendorDTO
	if err := c.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Vendor{}, errs.NewObjectNotFoundError("vendor", id.String())
		}
		return catalog.Vendor{}, err
	}

	return vendorToDomain(dto)
}
