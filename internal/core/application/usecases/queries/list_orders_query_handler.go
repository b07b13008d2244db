package queries

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// summaryColumns is shared by the list and nearby queries; scanSummary reads
// them in this order.
const summaryColumns = `
	id,
	customer_id,
	vendor_id,
	rider_id,
	order_type,
	priority,
	status,
	total,
	pickup_lat,
	pickup_lon,
	pickup_address,
	customer_lat,
	customer_lon,
	customer_address,
	created_at`

// ListOrdersQueryHandler returns one page of order summaries.
type ListOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListOrdersQueryHandler creates a handler reading from db.
func NewListOrdersQueryHandler(db *gorm.DB) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db}
}

// Handle runs the scoped listing. An empty page is not an error.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]OrderSummaryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args, err := scope(query.Actor())
	if err != nil {
		return nil, err
	}
	if status := query.Status(); status != nil {
		where += " AND status = ?"
		args = append(args, status.String())
	}
	args = append(args, query.Limit(), query.Offset())

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+summaryColumns+`
		FROM orders
		WHERE `+where+`
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderSummaryView, 0)
	for rows.Next() {
		view, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(rows rowScanner, extra ...any) (OrderSummaryView, error) {
	var (
		view      OrderSummaryView
		riderID   *uuid.UUID
		total     decimal.Decimal
		createdAt time.Time
	)

	dest := []any{
		&view.ID,
		&view.CustomerID,
		&view.VendorID,
		&riderID,
		&view.Type,
		&view.Priority,
		&view.Status,
		&total,
		&view.Pickup.Lat,
		&view.Pickup.Lon,
		&view.Pickup.Address,
		&view.CustomerLocation.Lat,
		&view.CustomerLocation.Lon,
		&view.CustomerLocation.Address,
		&createdAt,
	}
	if err := rows.Scan(append(dest, extra...)...); err != nil {
		return OrderSummaryView{}, err
	}

	view.RiderID = riderID
	view.Total = total
	view.CreatedAt = createdAt
	return view, nil
}
