package queries

import (
	"errors"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrListOrdersQueryIsNotConstructed = errors.New("ListOrdersQuery must be created via NewListOrdersQuery constructor")

// ListOrdersQuery pages through the orders visible to an actor, newest first.
type ListOrdersQuery struct {
	actor  kernel.Actor
	status *order.Status
	limit  int
	offset int
	guard  guard.ConstructorGuard
}

// NewListOrdersQuery builds a page request. status may be empty for all
// statuses; a zero limit means DefaultPageSize.
func NewListOrdersQuery(actor kernel.Actor, status string, limit, offset int) (ListOrdersQuery, error) {
	q := ListOrdersQuery{actor: actor, limit: limit, offset: offset, guard: guard.NewConstructorGuard()}
	if q.limit == 0 {
		q.limit = DefaultPageSize
	}

	var statusErr error
	if status != "" {
		parsed, err := order.ParseStatus(status)
		if err != nil {
			statusErr = err
		} else {
			q.status = &parsed
		}
	}
	var limitErr error
	if q.limit < 1 || q.limit > MaxPageSize {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageSize)
	}
	var offsetErr error
	if offset < 0 {
		offsetErr = errs.NewValueIsOutOfRangeError("offset", offset, 0, "unbounded")
	}

	if err := errors.Join(actor.Validate(), statusErr, limitErr, offsetErr); err != nil {
		return ListOrdersQuery{}, err
	}
	return q, nil
}

// Validate ensures the query was created through the constructor.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Actor() kernel.Actor {
	return q.actor
}

// Status returns the filter, or nil for every status.
func (q ListOrdersQuery) Status() *order.Status {
	return q.status
}

func (q ListOrdersQuery) Limit() int {
	return q.limit
}

func (q ListOrdersQuery) Offset() int {
	return q.offset
}
