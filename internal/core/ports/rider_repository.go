package ports

import (
	"context"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/rider"
)

// RiderRepository defines the persistence contract for rider aggregates.
type RiderRepository interface {
	// Add persists a newly onboarded rider. Duplicate user, phone, email or
	// license plate fails with errs.ErrConflict.
	Add(ctx context.Context, aggregate *rider.Rider) error

	// Update persists the rider under its version guard and advances the version.
	// The current location is not written; see UpdateLocation.
	Update(ctx context.Context, aggregate *rider.Rider) error

	// UpdateLocation overwrites the rider's current position only.
	UpdateLocation(ctx context.Context, aggregate *rider.Rider) error

	// Get retrieves a rider by id (the owning user id), or errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error)

	// FindCandidates returns up to limit online, available, approved riders
	// without an assignment whose position lies within radiusKm of point,
	// best rated first.
	FindCandidates(ctx context.Context, point kernel.Location, radiusKm float64, limit int) ([]*rider.Rider, error)
}
