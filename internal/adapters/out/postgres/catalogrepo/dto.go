// Package catalogrepo reads the product catalog and vendor directory tables
// and reserves stock at order placement.
package catalogrepo

import (
	"orderdispatch/internal/core/domain/model/catalog"
	"orderdispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is a catalog row.
type ProductDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	VendorID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Image       string
	Unit        string
	Category    string
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock       int             `gorm:"not null;check:stock >= 0"`
	IsAvailable bool            `gorm:"not null;default:true"`
}

// TableName specifies the database table name for products.
func (ProductDTO) TableName() string {
	return "products"
}

// VendorDTO is a vendor directory row. A vendor without coordinates has its
// orders picked up at the customer point.
type VendorDTO struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name    string    `gorm:"not null"`
	Lat     *float64
	Lon     *float64
	Address string
}

// TableName specifies the database table name for vendors.
func (VendorDTO) TableName() string {
	return "vendors"
}

// ProductFromDomain builds the row for a product. Used to seed the catalog.
func ProductFromDomain(p catalog.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID.Bytes(),
		VendorID:    p.VendorID.Bytes(),
		Name:        p.Name,
		Image:       p.Image,
		Unit:        p.Unit,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		IsAvailable: p.IsAvailable,
	}
}

// VendorFromDomain builds the row for a vendor. Used to seed the directory.
func VendorFromDomain(v catalog.Vendor) VendorDTO {
	dto := VendorDTO{ID: v.ID.Bytes(), Name: v.Name}
	if v.Location != nil {
		lat, lon := v.Location.Lat(), v.Location.Lon()
		dto.Lat, dto.Lon, dto.Address = &lat, &lon, v.Location.Address()
	}
	return dto
}

func productToDomain(dto ProductDTO) (catalog.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return catalog.Product{}, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Product{
		ID:          id,
		VendorID:    vendorID,
		Name:        dto.Name,
		Image:       dto.Image,
		Unit:        dto.Unit,
		Category:    dto.Category,
		Price:       dto.Price,
		Stock:       dto.Stock,
		IsAvailable: dto.IsAvailable,
	}, nil
}

func vendorToDomain(dto VendorDTO) (catalog.Vendor, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return catalog.Vendor{}, err
	}
	v := catalog.Vendor{ID: id, Name: dto.Name}
	if dto.Lat != nil && dto.Lon != nil {
		loc, err := kernel.NewLocation(*dto.Lat, *dto.Lon, dto.Address)
		if err != nil {
			return catalog.Vendor{}, err
		}
		v.Location = &loc
	}
	return v, nil
}
