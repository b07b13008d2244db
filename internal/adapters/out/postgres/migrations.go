package postgres

import (
	"context"
	"fmt"

	"orderdispatch/internal/adapters/out/postgres/catalogrepo"
	"orderdispatch/internal/adapters/out/postgres/orderrepo"
	"orderdispatch/internal/adapters/out/postgres/riderrepo"

	"gorm.io/gorm"
)

// spatialIndexes back the ST_DWithin lookups on rider positions and order
// pickup points. The expressions must match the query text exactly.
var spatialIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_riders_location_geog
		ON riders USING GIST ((ST_MakePoint(location_lon, location_lat)::geography))
		WHERE location_lat IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_orders_pickup_geog
		ON orders USING GIST ((ST_MakePoint(pickup_lon, pickup_lat)::geography))`,
	`CREATE INDEX IF NOT EXISTS idx_orders_backlog
		ON orders (created_at) WHERE rider_id IS NULL`,
}

// Migrate creates the PostGIS extension, the tables and the spatial indexes.
// It is idempotent.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)

	if err := tx.Exec("CREATE EXTENSION IF NOT EXISTS postgis").Error; err != nil {
		return fmt.Errorf("enable postgis: %w", err)
	}

	if err := tx.AutoMigrate(
		&orderrepo.OrderDTO{},
		&riderrepo.RiderDTO{},
		&catalogrepo.ProductDTO{},
		&catalogrepo.VendorDTO{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, stmt := range spatialIndexes {
		if err := tx.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
