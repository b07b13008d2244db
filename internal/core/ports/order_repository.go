// Package ports defines the contracts between the domain core and its
// infrastructure: persistence of orders and riders, the product catalog,
// transaction boundaries and post-commit event delivery.
package ports

import (
	"context"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/pkg/errs"
)

// ErrConcurrentModification is returned when a guarded write finds that the
// stored version no longer matches the aggregate. Callers reload and retry.
var ErrConcurrentModification = errs.NewConflictError("aggregate", "was modified concurrently")

// OrderRepository defines the persistence contract for order aggregates.
// Every write is conditioned on the aggregate version it was read at.
type OrderRepository interface {
	// Add persists a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the order if its stored version still equals aggregate.Version(),
	// then advances the version. A stale version yields ErrConcurrentModification.
	// The notification list is not written; it only grows through NotificationStore.
	Update(ctx context.Context, aggregate *order.Order) error

	// UpdateTracking overwrites the rider location and delivery estimate without a
	// version check, and only while the order is active and bound to its rider.
	// Returns order.ErrOrderNotActive when that condition no longer holds.
	UpdateTracking(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id, or errs.ErrObjectNotFound.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// FindUnassignedActive returns assignable orders without a rider, highest
	// priority first and oldest first within a priority.
	FindUnassignedActive(ctx context.Context, limit int) ([]*order.Order, error)
}

// NotificationStore appends notification records to an order's timeline.
// Appends are atomic and do not touch the order version.
type NotificationStore interface {
	AppendNotifications(ctx context.Context, orderID kernel.UUID, notifications []order.Notification) error
}
