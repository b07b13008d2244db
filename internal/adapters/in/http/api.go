package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request and response bodies. Shapes match openapi.yaml.

type Point struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Address string  `json:"address,omitempty"`
}

type OrderLine struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type PlaceOrderRequest struct {
	VendorID         uuid.UUID        `json:"vendorId"`
	OrderType        string           `json:"orderType"`
	Items            []OrderLine      `json:"items"`
	CustomerLocation Point            `json:"customerLocation"`
	Tip              *decimal.Decimal `json:"tip,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

type Created struct {
	ID uuid.UUID `json:"id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

type AssignRequest struct {
	RiderID *uuid.UUID `json:"riderId,omitempty"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type RatingRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

type WorkingHours struct {
	StartMinute int `json:"startMinute"`
	EndMinute   int `json:"endMinute"`
}

type RegisterRiderRequest struct {
	UserID         uuid.UUID     `json:"userId"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email,omitempty"`
	LicensePlate   string        `json:"licensePlate"`
	VehicleType    string        `json:"vehicleType,omitempty"`
	PreferredAreas []string      `json:"preferredAreas,omitempty"`
	MaxDistanceKm  float64       `json:"maxDistanceKm,omitempty"`
	WorkingHours   *WorkingHours `json:"workingHours,omitempty"`
	Approve        bool          `json:"approve"`
}

type LocationRequest struct {
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Address    string     `json:"address,omitempty"`
	RecordedAt *time.Time `json:"recordedAt,omitempty"`
}

type AvailabilityRequest struct {
	Online bool `json:"online"`
}
