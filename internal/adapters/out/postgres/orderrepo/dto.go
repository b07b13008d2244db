// Package orderrepo maps the order aggregate to the orders table.
// Scalars that are filtered or indexed get their own columns; value lists
// (items, history, notifications, excluded riders) are stored as JSONB.
package orderrepo

import (
	"encoding/json"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	VendorID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	RiderID    *uuid.UUID `gorm:"type:uuid;index"`

	OrderType string         `gorm:"type:varchar(16);not null"`
	Priority  string         `gorm:"type:varchar(16);not null"`
	Items     datatypes.JSON `gorm:"type:jsonb;not null"`
	Notes     string

	ItemTotal     decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Tax           decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	DeliveryFee   decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Tip           decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Total         decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	RiderEarnings *decimal.Decimal `gorm:"type:numeric(12,2)"`

	Status  string         `gorm:"type:varchar(24);not null;index"`
	History datatypes.JSON `gorm:"type:jsonb;not null"`

	Customer LocationDTO `gorm:"embedded;embeddedPrefix:customer_"`
	// Vendor is nullable; Pickup is the vendor point or the customer point.
	VendorLat       *float64
	VendorLon       *float64
	VendorAddress   *string
	Pickup          LocationDTO `gorm:"embedded;embeddedPrefix:pickup_"`
	RiderLat        *float64
	RiderLon        *float64
	RiderRecordedAt *time.Time

	EstimatedPickupAt   *time.Time
	EstimatedDeliveryAt *time.Time
	PromisedDeliveryAt  *time.Time
	ActualPickupAt      *time.Time
	ActualDeliveryAt    *time.Time

	AssignedAt                *time.Time
	AcceptedAt                *time.Time
	AssignmentRejectedAt      *time.Time
	AssignmentRejectionReason string
	AutoAssigned              bool
	RejectedRiderIDs          datatypes.JSON `gorm:"type:jsonb;not null"`

	RatingScore   *int
	RatingComment *string
	RatedAt       *time.Time

	CancellationReason string
	RejectionReason    string
	SettledAt          *time.Time
	Notifications      datatypes.JSON `gorm:"type:jsonb;not null"`

	Version   int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO is an embedded non-null point.
type LocationDTO struct {
	Lat     float64 `gorm:"not null"`
	Lon     float64 `gorm:"not null"`
	Address string
}

type itemJSON struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Unit      string          `json:"unit,omitempty"`
	Category  string          `json:"category,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

type pointJSON struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}

type historyJSON struct {
	Status    string     `json:"status"`
	ActorID   uuid.UUID  `json:"actorId"`
	ActorRole string     `json:"actorRole"`
	At        time.Time  `json:"at"`
	Note      string     `json:"note,omitempty"`
	Location  *pointJSON `json:"location,omitempty"`
}

// NotificationJSON is the stored shape of one timeline entry. Queries read
// notifications back in this shape.
type NotificationJSON = order.Notification

func fromDomain(o *order.Order) (OrderDTO, error) {
	s := o.Snapshot()

	items := make([]itemJSON, 0, len(s.Items))
	for _, it := range s.Items {
		items = append(items, itemJSON{
			ProductID: it.ProductID.Bytes(),
			Name:      it.Name,
			Image:     it.Image,
			Unit:      it.Unit,
			Category:  it.Category,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	history := make([]historyJSON, 0, len(s.History))
	for _, h := range s.History {
		entry := historyJSON{
			Status:    h.Status.String(),
			ActorID:   h.Actor.UserID.Bytes(),
			ActorRole: h.Actor.Role.String(),
			At:        h.At,
			Note:      h.Note,
		}
		if h.Location != nil {
			entry.Location = &pointJSON{Lat: h.Location.Lat(), Lon: h.Location.Lon(), Address: h.Location.Address()}
		}
		history = append(history, entry)
	}

	rejected := make([]uuid.UUID, 0, len(s.Assignment.RejectedRiderIDs))
	for _, id := range s.Assignment.RejectedRiderIDs {
		rejected = append(rejected, id.Bytes())
	}

	notifications := s.Notifications
	if notifications == nil {
		notifications = []order.Notification{}
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return OrderDTO{}, err
	}
	historyRaw, err := json.Marshal(history)
	if err != nil {
		return OrderDTO{}, err
	}
	rejectedRaw, err := json.Marshal(rejected)
	if err != nil {
		return OrderDTO{}, err
	}
	notificationsRaw, err := json.Marshal(notifications)
	if err != nil {
		return OrderDTO{}, err
	}

	dto := OrderDTO{
		ID:                        s.ID.Bytes(),
		CustomerID:                s.CustomerID.Bytes(),
		VendorID:                  s.VendorID.Bytes(),
		OrderType:                 string(s.Type),
		Priority:                  string(s.Priority),
		Items:                     itemsJSON,
		Notes:                     s.Notes,
		ItemTotal:                 s.Financials.ItemTotal,
		Tax:                       s.Financials.Tax,
		DeliveryFee:               s.Financials.DeliveryFee,
		Tip:                       s.Financials.Tip,
		Total:                     s.Financials.Total,
		RiderEarnings:             s.RiderEarnings,
		Status:                    s.Status.String(),
		History:                   historyRaw,
		Customer:                  toLocationDTO(s.CustomerLocation),
		Pickup:                    toLocationDTO(o.PickupLocation()),
		EstimatedPickupAt:         s.Schedule.EstimatedPickupTime,
		EstimatedDeliveryAt:       s.Schedule.EstimatedDeliveryTime,
		PromisedDeliveryAt:        s.Schedule.PromisedDeliveryTime,
		ActualPickupAt:            s.Schedule.ActualPickupTime,
		ActualDeliveryAt:          s.Schedule.ActualDeliveryTime,
		AssignedAt:                s.Assignment.AssignedAt,
		AcceptedAt:                s.Assignment.AcceptedAt,
		AssignmentRejectedAt:      s.Assignment.RejectedAt,
		AssignmentRejectionReason: s.Assignment.RejectionReason,
		AutoAssigned:              s.Assignment.AutoAssigned,
		RejectedRiderIDs:          rejectedRaw,
		CancellationReason:        s.CancellationReason,
		RejectionReason:           s.RejectionReason,
		SettledAt:                 s.SettledAt,
		Notifications:             notificationsRaw,
		Version:                   s.Version,
		CreatedAt:                 s.CreatedAt,
		UpdatedAt:                 s.UpdatedAt,
	}

	if s.RiderID != nil {
		raw := s.RiderID.Bytes()
		dto.RiderID = &raw
	}
	if s.VendorLocation != nil {
		lat, lon, addr := s.VendorLocation.Lat(), s.VendorLocation.Lon(), s.VendorLocation.Address()
		dto.VendorLat, dto.VendorLon, dto.VendorAddress = &lat, &lon, &addr
	}
	if s.RiderLocation != nil {
		lat, lon, at := s.RiderLocation.Location.Lat(), s.RiderLocation.Location.Lon(), s.RiderLocation.RecordedAt
		dto.RiderLat, dto.RiderLon, dto.RiderRecordedAt = &lat, &lon, &at
	}
	if s.Rating != nil {
		score, comment, at := s.Rating.Score, s.Rating.Comment, s.Rating.RatedAt
		dto.RatingScore, dto.RatingComment, dto.RatedAt = &score, &comment, &at
	}

	return dto, nil
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	vendorID, err := kernel.UUIDFromBytes(dto.VendorID[:])
	if err != nil {
		return nil, err
	}

	s := order.Snapshot{
		ID:                 id,
		CustomerID:         customerID,
		VendorID:           vendorID,
		Type:               order.Type(dto.OrderType),
		Priority:           order.Priority(dto.Priority),
		Notes:              dto.Notes,
		RiderEarnings:      dto.RiderEarnings,
		CancellationReason: dto.CancellationReason,
		RejectionReason:    dto.RejectionReason,
		SettledAt:          dto.SettledAt,
		Version:            dto.Version,
		CreatedAt:          dto.CreatedAt,
		UpdatedAt:          dto.UpdatedAt,
		Schedule: order.Schedule{
			EstimatedPickupTime:   dto.EstimatedPickupAt,
			EstimatedDeliveryTime: dto.EstimatedDeliveryAt,
			PromisedDeliveryTime:  dto.PromisedDeliveryAt,
			ActualPickupTime:      dto.ActualPickupAt,
			ActualDeliveryTime:    dto.ActualDeliveryAt,
		},
		Assignment: order.Assignment{
			AssignedAt:      dto.AssignedAt,
			AcceptedAt:      dto.AcceptedAt,
			RejectedAt:      dto.AssignmentRejectedAt,
			RejectionReason: dto.AssignmentRejectionReason,
			AutoAssigned:    dto.AutoAssigned,
		},
	}

	if s.Financials, err = order.NewFinancials(dto.ItemTotal, dto.Tax, dto.DeliveryFee, dto.Tip); err != nil {
		return nil, err
	}
	if s.Status, err = order.ParseStatus(dto.Status); err != nil {
		return nil, err
	}
	if s.CustomerLocation, err = kernel.NewLocation(dto.Customer.Lat, dto.Customer.Lon, dto.Customer.Address); err != nil {
		return nil, err
	}

	if dto.RiderID != nil {
		riderID, riderErr := kernel.UUIDFromBytes(dto.RiderID[:])
		if riderErr != nil {
			return nil, riderErr
		}
		s.RiderID = &riderID
	}
	if dto.VendorLat != nil && dto.VendorLon != nil {
		var addr string
		if dto.VendorAddress != nil {
			addr = *dto.VendorAddress
		}
		loc, locErr := kernel.NewLocation(*dto.VendorLat, *dto.VendorLon, addr)
		if locErr != nil {
			return nil, locErr
		}
		s.VendorLocation = &loc
	}
	if dto.RiderLat != nil && dto.RiderLon != nil && dto.RiderRecordedAt != nil {
		loc, locErr := kernel.NewLocation(*dto.RiderLat, *dto.RiderLon, "")
		if locErr != nil {
			return nil, locErr
		}
		s.RiderLocation = &kernel.Position{Location: loc, RecordedAt: *dto.RiderRecordedAt}
	}
	if dto.RatingScore != nil && dto.RatedAt != nil {
		rating := order.Rating{Score: *dto.RatingScore, RatedAt: *dto.RatedAt}
		if dto.RatingComment != nil {
			rating.Comment = *dto.RatingComment
		}
		s.Rating = &rating
	}

	if s.Items, err = decodeItems(dto.Items); err != nil {
		return nil, err
	}
	if s.History, err = decodeHistory(dto.History); err != nil {
		return nil, err
	}
	if s.Assignment.RejectedRiderIDs, err = decodeUUIDs(dto.RejectedRiderIDs); err != nil {
		return nil, err
	}
	if s.Notifications, err = DecodeNotifications(dto.Notifications); err != nil {
		return nil, err
	}

	return order.RestoreOrder(s)
}

func toLocationDTO(l kernel.Location) LocationDTO {
	return LocationDTO{Lat: l.Lat(), Lon: l.Lon(), Address: l.Address()}
}

func decodeItems(raw datatypes.JSON) ([]order.Item, error) {
	var stored []itemJSON
	if err := unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	items := make([]order.Item, 0, len(stored))
	for _, it := range stored {
		productID, err := kernel.UUIDFromBytes(it.ProductID[:])
		if err != nil {
			return nil, err
		}
		items = append(items, order.Item{
			ProductID: productID,
			Name:      it.Name,
			Image:     it.Image,
			Unit:      it.Unit,
			Category:  it.Category,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}
	return items, nil
}

func decodeHistory(raw datatypes.JSON) ([]order.StatusChange, error) {
	var stored []historyJSON
	if err := unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	history := make([]order.StatusChange, 0, len(stored))
	for _, h := range stored {
		status, err := order.ParseStatus(h.Status)
		if err != nil {
			return nil, err
		}
		actorID, err := kernel.UUIDFromBytes(h.ActorID[:])
		if err != nil {
			return nil, err
		}
		change := order.StatusChange{
			Status: status,
			Actor:  kernel.Actor{UserID: actorID, Role: kernel.Role(h.ActorRole)},
			At:     h.At,
			Note:   h.Note,
		}
		if h.Location != nil {
			loc, locErr := kernel.NewLocation(h.Location.Lat, h.Location.Lon, h.Location.Address)
			if locErr != nil {
				return nil, locErr
			}
			change.Location = &loc
		}
		history = append(history, change)
	}
	return history, nil
}

func decodeUUIDs(raw datatypes.JSON) ([]kernel.UUID, error) {
	var stored []uuid.UUID
	if err := unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	ids := make([]kernel.UUID, 0, len(stored))
	for _, raw := range stored {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DecodeNotifications reads the JSONB notification list of an order row.
func DecodeNotifications(raw datatypes.JSON) ([]order.Notification, error) {
	var stored []NotificationJSON
	if err := unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func unmarshal(raw datatypes.JSON, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
