// Package eventbus delivers committed order events to in-process subscribers.
package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/ports"
)

var _ ports.EventPublisher = (*Bus)(nil)

// Bus fans every event out to all subscribers in subscription order.
// A failing or panicking subscriber is logged and does not stop the others.
type Bus struct {
	mu       sync.RWMutex
	handlers []subscription
	logger   *slog.Logger
}

type subscription struct {
	name    string
	handler ports.EventHandler
}

// New creates an empty bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{logger: logger.With("component", "event-bus")}
}

// Subscribe registers handler under name. The name only appears in logs.
func (b *Bus) Subscribe(name string, handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, subscription{name: name, handler: handler})
}

// Publish implements ports.EventPublisher.
func (b *Bus) Publish(ctx context.Context, events []order.Event) {
	if len(events) == 0 {
		return
	}

	b.mu.RLock()
	handlers := make([]subscription, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, event := range events {
		for _, s := range handlers {
			if err := b.deliver(ctx, s, event); err != nil {
				b.logger.Error("Event handler failed",
					"handler", s.name,
					"order_id", event.OrderID.String(),
					"type", string(event.Notification.Type),
					"error", err)
			}
		}
	}
}

func (b *Bus) deliver(ctx context.Context, s subscription, event order.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.handler.Handle(ctx, event)
}
