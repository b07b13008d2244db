// Package notifications keeps the durable per-order notification timeline.
// Recording a notification never delivers it to anyone.
package notifications

import (
	"context"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/ports"
)

var _ ports.EventHandler = (*Recorder)(nil)

// Recorder appends the notification carried by each committed event to the
// timeline of its order.
type Recorder struct {
	store ports.NotificationStore
}

func NewRecorder(store ports.NotificationStore) *Recorder {
	return &Recorder{store: store}
}

// Handle implements ports.EventHandler.
func (r *Recorder) Handle(ctx context.Context, event order.Event) error {
	if event.Notification.Message == "" {
		return nil
	}
	return r.store.AppendNotifications(ctx, event.OrderID, []order.Notification{event.Notification})
}
