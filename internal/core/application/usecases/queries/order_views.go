package queries

import (
	"encoding/json"
	"fmt"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PointView is a coordinate pair with an optional address line.
type PointView struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}

// OrderItemView is one order line as captured at placement.
type OrderItemView struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Unit      string          `json:"unit,omitempty"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// StatusChangeView is one history entry.
type StatusChangeView struct {
	Status    string     `json:"status"`
	ActorID   uuid.UUID  `json:"actorId"`
	ActorRole string     `json:"actorRole"`
	At        time.Time  `json:"at"`
	Note      string     `json:"note,omitempty"`
	Location  *PointView `json:"location,omitempty"`
}

// NotificationView is one timeline record.
type NotificationView struct {
	Type      string    `json:"type"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// FinancialsView is the monetary breakdown of an order.
type FinancialsView struct {
	ItemTotal   decimal.Decimal `json:"itemTotal"`
	Tax         decimal.Decimal `json:"tax"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
	Tip         decimal.Decimal `json:"tip"`
	Total       decimal.Decimal `json:"total"`
}

// RatingView is the customer feedback on a delivered order.
type RatingView struct {
	Score   int       `json:"score"`
	Comment string    `json:"comment,omitempty"`
	RatedAt time.Time `json:"ratedAt"`
}

// OrderView is the full read model of one order.
type OrderView struct {
	ID                  uuid.UUID          `json:"id"`
	CustomerID          uuid.UUID          `json:"customerId"`
	VendorID            uuid.UUID          `json:"vendorId"`
	RiderID             *uuid.UUID         `json:"riderId,omitempty"`
	Type                string             `json:"orderType"`
	Priority            string             `json:"priority"`
	Status              string             `json:"status"`
	Items               []OrderItemView    `json:"items"`
	Notes               string             `json:"notes,omitempty"`
	Financials          FinancialsView     `json:"financials"`
	RiderEarnings       *decimal.Decimal   `json:"riderEarnings,omitempty"`
	CustomerLocation    PointView          `json:"customerLocation"`
	VendorLocation      *PointView         `json:"vendorLocation,omitempty"`
	RiderLocation       *PointView         `json:"riderLocation,omitempty"`
	RiderLocationAt     *time.Time         `json:"riderLocationUpdatedAt,omitempty"`
	EstimatedPickupAt   *time.Time         `json:"estimatedPickupTime,omitempty"`
	EstimatedDeliveryAt *time.Time         `json:"estimatedDeliveryTime,omitempty"`
	PromisedDeliveryAt  *time.Time         `json:"promisedDeliveryTime,omitempty"`
	ActualPickupAt      *time.Time         `json:"actualPickupTime,omitempty"`
	ActualDeliveryAt    *time.Time         `json:"actualDeliveryTime,omitempty"`
	AssignedAt          *time.Time         `json:"assignedAt,omitempty"`
	AcceptedAt          *time.Time         `json:"acceptedAt,omitempty"`
	AutoAssigned        bool               `json:"autoAssigned"`
	Rating              *RatingView        `json:"rating,omitempty"`
	CancellationReason  string             `json:"cancellationReason,omitempty"`
	RejectionReason     string             `json:"rejectionReason,omitempty"`
	History             []StatusChangeView `json:"statusHistory"`
	Notifications       []NotificationView `json:"notifications"`
	Version             int                `json:"version"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

// OrderSummaryView is the list item shape. DistanceKm is set only by the
// nearby orders query.
type OrderSummaryView struct {
	ID               uuid.UUID       `json:"id"`
	CustomerID       uuid.UUID       `json:"customerId"`
	VendorID         uuid.UUID       `json:"vendorId"`
	RiderID          *uuid.UUID      `json:"riderId,omitempty"`
	Type             string          `json:"orderType"`
	Priority         string          `json:"priority"`
	Status           string          `json:"status"`
	Total            decimal.Decimal `json:"total"`
	Pickup           PointView       `json:"pickupLocation"`
	CustomerLocation PointView       `json:"customerLocation"`
	DistanceKm       *float64        `json:"distanceKm,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// orderRow mirrors the orders table for raw scans.
type orderRow struct {
	ID                  uuid.UUID
	CustomerID          uuid.UUID
	VendorID            uuid.UUID
	RiderID             *uuid.UUID
	OrderType           string
	Priority            string
	Items               datatypes.JSON
	Notes               string
	ItemTotal           decimal.Decimal
	Tax                 decimal.Decimal
	DeliveryFee         decimal.Decimal
	Tip                 decimal.Decimal
	Total               decimal.Decimal
	RiderEarnings       *decimal.Decimal
	Status              string
	History             datatypes.JSON
	CustomerLat         float64
	CustomerLon         float64
	CustomerAddress     string
	VendorLat           *float64
	VendorLon           *float64
	VendorAddress       *string
	RiderLat            *float64
	RiderLon            *float64
	RiderRecordedAt     *time.Time
	EstimatedPickupAt   *time.Time
	EstimatedDeliveryAt *time.Time
	PromisedDeliveryAt  *time.Time
	ActualPickupAt      *time.Time
	ActualDeliveryAt    *time.Time
	AssignedAt          *time.Time
	AcceptedAt          *time.Time
	AutoAssigned        bool
	RatingScore         *int
	RatingComment       *string
	RatedAt             *time.Time
	CancellationReason  string
	RejectionReason     string
	Notifications       datatypes.JSON
	Version             int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (r orderRow) toView() (OrderView, error) {
	v := OrderView{
		ID:         r.ID,
		CustomerID: r.CustomerID,
		VendorID:   r.VendorID,
		RiderID:    r.RiderID,
		Type:       r.OrderType,
		Priority:   r.Priority,
		Status:     r.Status,
		Notes:      r.Notes,
		Financials: FinancialsView{
			ItemTotal:   r.ItemTotal,
			Tax:         r.Tax,
			DeliveryFee: r.DeliveryFee,
			Tip:         r.Tip,
			Total:       r.Total,
		},
		RiderEarnings:       r.RiderEarnings,
		CustomerLocation:    PointView{Lat: r.CustomerLat, Lon: r.CustomerLon, Address: r.CustomerAddress},
		RiderLocationAt:     r.RiderRecordedAt,
		EstimatedPickupAt:   r.EstimatedPickupAt,
		EstimatedDeliveryAt: r.EstimatedDeliveryAt,
		PromisedDeliveryAt:  r.PromisedDeliveryAt,
		ActualPickupAt:      r.ActualPickupAt,
		ActualDeliveryAt:    r.ActualDeliveryAt,
		AssignedAt:          r.AssignedAt,
		AcceptedAt:          r.AcceptedAt,
		AutoAssigned:        r.AutoAssigned,
		CancellationReason:  r.CancellationReason,
		RejectionReason:     r.RejectionReason,
		Items:               []OrderItemView{},
		History:             []StatusChangeView{},
		Notifications:       []NotificationView{},
		Version:             r.Version,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}

	if r.VendorLat != nil && r.VendorLon != nil {
		p := PointView{Lat: *r.VendorLat, Lon: *r.VendorLon}
		if r.VendorAddress != nil {
			p.Address = *r.VendorAddress
		}
		v.VendorLocation = &p
	}
	if r.RiderLat != nil && r.RiderLon != nil {
		v.RiderLocation = &PointView{Lat: *r.RiderLat, Lon: *r.RiderLon}
	}
	if r.RatingScore != nil && r.RatedAt != nil {
		v.Rating = &RatingView{Score: *r.RatingScore, RatedAt: *r.RatedAt}
		if r.RatingComment != nil {
			v.Rating.Comment = *r.RatingComment
		}
	}

	for name, target := range map[string]struct {
		raw datatypes.JSON
		out any
	}{
		"items":         {r.Items, &v.Items},
		"history":       {r.History, &v.History},
		"notifications": {r.Notifications, &v.Notifications},
	} {
		if len(target.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(target.raw, target.out); err != nil {
			return OrderView{}, fmt.Errorf("decode %s of order %s: %w", name, r.ID, err)
		}
	}

	return v, nil
}

// scope restricts a query to the orders the actor is a party of.
// Admins and the system actor see every order.
func scope(actor kernel.Actor) (string, []any, error) {
	switch actor.Role {
	case kernel.RoleAdmin, kernel.RoleSystem:
		return "TRUE", nil, nil
	case kernel.RoleCustomer:
		return "customer_id = ?", []any{actor.UserID.Bytes()}, nil
	case kernel.RoleVendor:
		return "vendor_id = ?", []any{actor.UserID.Bytes()}, nil
	case kernel.RoleRider:
		return "rider_id = ?", []any{actor.UserID.Bytes()}, nil
	default:
		return "", nil, errs.NewAccessDeniedError("role " + actor.Role.String() + " cannot read orders")
	}
}
