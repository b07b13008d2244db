package queries

import (
	"context"
	"fmt"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// NearbyOrdersQueryHandler finds the open backlog around a rider.
type NearbyOrdersQueryHandler struct {
	db *gorm.DB
}

// NewNearbyOrdersQueryHandler creates a handler reading from db.
func NewNearbyOrdersQueryHandler(db *gorm.DB) NearbyOrdersQueryHandler {
	return NearbyOrdersQueryHandler{db: db}
}

// Handle returns the orders nearest first. Orders the rider already rejected
// are left out. A rider without a reported location gets rider.ErrLocationUnknown.
func (h NearbyOrdersQueryHandler) Handle(ctx context.Context, query NearbyOrdersQuery) ([]OrderSummaryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	riderID := query.Actor().UserID
	var position struct {
		LocationLat *float64
		LocationLon *float64
	}
	res := h.db.WithContext(ctx).
		Raw("SELECT location_lat, location_lon FROM riders WHERE id = ?", riderID.Bytes()).
		Scan(&position)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("rider", riderID.String())
	}
	if position.LocationLat == nil || position.LocationLon == nil {
		return nil, fmt.Errorf("%w: %s", rider.ErrLocationUnknown, riderID)
	}

	rows, err := h.db.WithContext(ctx).
		Raw(nearbyOrdersSQL, nearbyOrdersArgs(
			riderID, *position.LocationLon, *position.LocationLat, query.RadiusKm(), query.Limit())).
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderSummaryView, 0)
	for rows.Next() {
		var distanceKm float64
		view, err := scanSummary(rows, &distanceKm)
		if err != nil {
			return nil, err
		}
		view.DistanceKm = &distanceKm
		orders = append(orders, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// Named parameters end at a space, comma or closing parenthesis, so casts are
// written with CAST rather than a trailing ::type.
const nearbyOrdersSQL = `
	SELECT ` + summaryColumns + `,
		ST_Distance(
			ST_MakePoint(pickup_lon, pickup_lat)::geography,
			ST_MakePoint(@lon, @lat)::geography
		) / 1000 AS distance_km
	FROM orders
	WHERE rider_id IS NULL
		AND status IN @statuses
		AND NOT rejected_rider_ids @> jsonb_build_array(CAST(@rider AS text))
		AND ST_DWithin(
			ST_MakePoint(pickup_lon, pickup_lat)::geography,
			ST_MakePoint(@lon, @lat)::geography,
			@meters
		)
	ORDER BY distance_km, created_at
	LIMIT @limit
`

func nearbyOrdersArgs(riderID kernel.UUID, lon, lat, radiusKm float64, limit int) map[string]any {
	assignable := make([]string, 0, len(order.AssignableStatuses()))
	for _, s := range order.AssignableStatuses() {
		assignable = append(assignable, s.String())
	}

	return map[string]any{
		"lon":      lon,
		"lat":      lat,
		"statuses": assignable,
		"rider":    riderID.String(),
		"meters":   radiusKm * 1000,
		"limit":    limit,
	}
}
