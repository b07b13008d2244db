package queries

import (
	"context"

	"orderdispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler loads the full read model of one order.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler reading from db.
func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns the order if the actor may see it, errs.ErrObjectNotFound otherwise.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	where, args, err := scope(query.Actor())
	if err != nil {
		return OrderView{}, err
	}

	var rows []orderRow
	err = h.db.WithContext(ctx).
		Raw("SELECT * FROM orders WHERE id = ? AND "+where+" LIMIT 1",
			append([]any{query.OrderID().Bytes()}, args...)...).
		Scan(&rows).Error
	if err != nil {
		return OrderView{}, err
	}

	if len(rows) == 0 {
		return OrderView{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	return rows[0].toView()
}
