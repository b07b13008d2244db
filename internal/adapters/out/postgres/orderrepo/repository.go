package orderrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/ports"
	"orderdispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// priorityRank orders the dispatch backlog: urgent first, low last.
const priorityRank = "CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'normal' THEN 2 ELSE 3 END"

// updateOmitted lists the columns Update never writes. The tracking columns
// belong to UpdateTracking: pings do not bump the version, so a status write
// from an older snapshot must not roll them back.
var updateOmitted = []string{
	"id", "notifications", "created_at",
	"rider_lat", "rider_lon", "rider_recorded_at", "estimated_delivery_at",
}

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes every column except the notification list and the tracking
// columns owned by UpdateTracking, guarded by the version the aggregate was
// loaded at.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit(updateOmitted...).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: order %s at version %d", ports.ErrConcurrentModification, aggregate.ID(), aggregate.Version())
	}

	aggregate.AdvanceVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdateTracking stores the latest rider position and delivery estimate.
func (r *GormOrderRepository) UpdateTracking(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	riderID := aggregate.RiderID()
	position := aggregate.RiderLocation()
	if riderID == nil || position == nil {
		return order.ErrRiderNotAssigned
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND rider_id = ? AND status IN ?", aggregate.ID().Bytes(), riderID.Bytes(), statusNames(order.ActiveStatuses())).
		Updates(map[string]any{
			"rider_lat":             position.Location.Lat(),
			"rider_lon":             position.Location.Lon(),
			"rider_recorded_at":     position.RecordedAt,
			"estimated_delivery_at": aggregate.Schedule().EstimatedDeliveryTime,
			"updated_at":            position.RecordedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", order.ErrOrderNotActive, aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindUnassignedActive returns the dispatch backlog.
func (r *GormOrderRepository) FindUnassignedActive(ctx context.Context, limit int) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Where("rider_id IS NULL AND status IN ?", statusNames(order.AssignableStatuses())).
		Order(priorityRank + ", created_at").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// GormNotificationStore appends to the notification list of an order row
// outside any unit of work.
type GormNotificationStore struct {
	db *gorm.DB
}

// NewGormNotificationStore creates a notification store over db.
func NewGormNotificationStore(db *gorm.DB) *GormNotificationStore {
	return &GormNotificationStore{db: db}
}

// AppendNotifications concatenates the entries to the stored JSONB array in a
// single statement, so concurrent appends never overwrite each other.
func (s *GormNotificationStore) AppendNotifications(ctx context.Context, orderID kernel.UUID, notifications []order.Notification) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if len(notifications) == 0 {
		return nil
	}

	raw, err := json.Marshal(notifications)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Exec(
		"UPDATE orders SET notifications = notifications || ?::jsonb WHERE id = ?",
		string(raw), orderID.Bytes(),
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("order", orderID.String())
	}
	return nil
}

func statusNames(statuses []order.Status) []string {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return names
}
