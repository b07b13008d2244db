package queries

import (
	"context"
	"time"

	"orderdispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

const riderColumns = `
	id, name, phone, license_plate, vehicle_type, status, is_available, is_approved,
	location_lat, location_lon, location_recorded_at, current_assignment,
	total_deliveries, completed_deliveries, cancelled_deliveries,
	on_time_deliveries, late_deliveries, average_rating, rating_count,
	earnings_total, earnings_this_week, earnings_this_month, wallet_balance, last_settled_at`

// GetRiderQueryHandler loads the rider's own profile with performance and
// earnings counters.
type GetRiderQueryHandler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGetRiderQueryHandler(db *gorm.DB) GetRiderQueryHandler {
	return GetRiderQueryHandler{db: db, now: time.Now}
}

// Handle returns errs.ErrObjectNotFound when the caller has no rider profile.
func (h GetRiderQueryHandler) Handle(ctx context.Context, query GetRiderQuery) (RiderView, error) {
	if err := query.Validate(); err != nil {
		return RiderView{}, err
	}

	riderID := query.Actor().UserID
	var rows []riderRow
	err := h.db.WithContext(ctx).
		Raw("SELECT "+riderColumns+" FROM riders WHERE id = ? LIMIT 1", riderID.Bytes()).
		Scan(&rows).Error
	if err != nil {
		return RiderView{}, err
	}

	if len(rows) == 0 {
		return RiderView{}, errs.NewObjectNotFoundError("rider", riderID.String())
	}

	return rows[0].toView(h.now()), nil
}
