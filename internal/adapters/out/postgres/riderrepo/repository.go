package riderrepo

import (
	"context"
	"errors"
	"fmt"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/ports"
	"orderdispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// withinRadius matches riders whose last position lies within a distance in
// meters of a point given as (lon, lat).
const withinRadius = "ST_DWithin(ST_MakePoint(location_lon, location_lat)::geography, ST_MakePoint(?, ?)::geography, ?)"

// GormRiderRepository implements RiderRepository using GORM.
type GormRiderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormRiderRepository creates a new GORM rider repository.
func NewGormRiderRepository(db *gorm.DB, tracker aggregateTracker) *GormRiderRepository {
	return &GormRiderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a newly onboarded rider.
func (r *GormRiderRepository) Add(ctx context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.NewConflictErrorWithCause("rider", "is already registered", err)
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update writes the rider under its version guard. The location columns are
// owned by UpdateLocation.
func (r *GormRiderRepository) Update(ctx context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).
		Model(&RiderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "location_lat", "location_lon", "location_recorded_at", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: rider %s at version %d", ports.ErrConcurrentModification, aggregate.ID(), aggregate.Version())
	}

	aggregate.AdvanceVersion()
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// UpdateLocation overwrites the last known position. Pings are last-writer-wins
// and leave the version alone.
func (r *GormRiderRepository) UpdateLocation(ctx context.Context, aggregate *rider.Rider) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	position := aggregate.CurrentLocation()
	if position == nil {
		return errs.NewValueIsRequiredError("position")
	}

	result := r.db.WithContext(ctx).
		Model(&RiderDTO{}).
		Where("id = ?", aggregate.ID().Bytes()).
		Updates(map[string]any{
			"location_lat":         position.Location.Lat(),
			"location_lon":         position.Location.Lon(),
			"location_recorded_at": position.RecordedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("rider", aggregate.ID().String())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a rider by ID.
func (r *GormRiderRepository) Get(ctx context.Context, id kernel.UUID) (*rider.Rider, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RiderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("rider", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// FindCandidates returns free, approved, online riders around point, best
// rated first. Working hours and personal distance limits are left to the
// dispatcher.
func (r *GormRiderRepository) FindCandidates(
	ctx context.Context,
	point kernel.Location,
	radiusKm float64,
	limit int,
) ([]*rider.Rider, error) {
	if err := point.Validate(); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("radiusKm", radiusKm, "0 exclusive", "unbounded")
	}

	var dtos []RiderDTO
	err := r.db.WithContext(ctx).
		Where("status = ? AND is_available AND is_approved AND current_assignment IS NULL", rider.Online.String()).
		Where("location_lat IS NOT NULL AND location_lon IS NOT NULL").
		Where(withinRadius, point.Lon(), point.Lat(), radiusKm*1000).
		Order("average_rating DESC, location_recorded_at DESC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	riders := make([]*rider.Rider, 0, len(dtos))
	for _, dto := range dtos {
		rd, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		riders = append(riders, rd)
	}

	return riders, nil
}
