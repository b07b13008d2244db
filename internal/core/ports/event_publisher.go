package ports

import (
	"context"

	"orderdispatch/internal/core/domain/model/order"
)

// EventPublisher delivers order events after the transaction that produced
// them has committed. Delivery is best effort: implementations log failures
// and never report them to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, events []order.Event)
}

// EventHandler consumes one published event. Errors are logged by the publisher.
type EventHandler interface {
	Handle(ctx context.Context, event order.Event) error
}
