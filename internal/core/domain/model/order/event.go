package order

import (
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
)

// NotificationType classifies timeline entries.
type NotificationType string

const (
	NotificationStatusUpdate  NotificationType = "status_update"
	NotificationRiderAssigned NotificationType = "rider_assigned"
	NotificationRiderLocation NotificationType = "rider_location"
	NotificationDeliveryETA   NotificationType = "delivery_eta"
	NotificationPayment       NotificationType = "payment"
)

// Notification is a durable timeline record addressed to one party role.
// Recording it never delivers anything.
type Notification struct {
	Type      NotificationType `json:"type"`
	Recipient kernel.Role      `json:"recipient"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Event is emitted by the aggregate for every state change and published only
// after the surrounding transaction commits.
type Event struct {
	OrderID      kernel.UUID
	CustomerID   kernel.UUID
	VendorID     kernel.UUID
	RiderID      *kernel.UUID
	Status       Status
	Notification Notification
}

func (o *Order) record(t NotificationType, recipient kernel.Role, message string, at time.Time) {
	var riderID *kernel.UUID
	if o.riderID != nil {
		id := *o.riderID
		riderID = &id
	}

	o.events = append(o.events, Event{
		OrderID:    o.id,
		CustomerID: o.customerID,
		VendorID:   o.vendorID,
		RiderID:    riderID,
		Status:     o.status,
		Notification: Notification{
			Type:      t,
			Recipient: recipient,
			Message:   message,
			CreatedAt: at.UTC(),
		},
	})
}

// PullEvents returns the events recorded since the last call and clears them.
func (o *Order) PullEvents() []Event {
	events := o.events
	o.events = nil
	return events
}

// PendingEvents returns a copy of the events not yet pulled.
func (o *Order) PendingEvents() []Event {
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}
