package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Type distinguishes regular orders from tmart (grocery) orders.
type Type string

const (
	TypeRegular Type = "regular"
	TypeTmart   Type = "tmart"
)

// Validate rejects unknown order types.
func (t Type) Validate() error {
	if t != TypeRegular && t != TypeTmart {
		return errs.NewValueIsInvalidErrorWithCause("orderType", fmt.Errorf("%q is not a valid order type", string(t)))
	}
	return nil
}

// Priority is derived at placement from the order type and value.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Validate rejects unknown priorities.
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", string(p)))
	}
}

// Item is one order line with the catalog data captured at placement.
// Prices never change after the order is created.
type Item struct {
	ProductID kernel.UUID
	Name      string
	Image     string
	Unit      string
	Category  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Validate checks the product reference, quantity and price of the line.
func (i Item) Validate() error {
	var quantityErr, priceErr error
	if i.Quantity < 1 {
		quantityErr = errs.NewValueIsOutOfRangeError("quantity", i.Quantity, 1, "unbounded")
	}
	if i.UnitPrice.IsNegative() {
		priceErr = errs.NewValueIsInvalidErrorWithCause("unitPrice", fmt.Errorf("%s is negative", i.UnitPrice))
	}
	return errors.Join(i.ProductID.Validate(), quantityErr, priceErr)
}

// LineTotal returns UnitPrice × Quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Financials holds the monetary breakdown of an order.
// Total always equals ItemTotal + Tax + DeliveryFee + Tip.
type Financials struct {
	ItemTotal   decimal.Decimal
	Tax         decimal.Decimal
	DeliveryFee decimal.Decimal
	Tip         decimal.Decimal
	Total       decimal.Decimal
}

// NewFinancials computes Total from its four parts. No part may be negative.
func NewFinancials(itemTotal, tax, deliveryFee, tip decimal.Decimal) (Financials, error) {
	f := Financials{ItemTotal: itemTotal, Tax: tax, DeliveryFee: deliveryFee, Tip: tip}
	f.Total = itemTotal.Add(tax).Add(deliveryFee).Add(tip)
	if err := f.Validate(); err != nil {
		return Financials{}, err
	}
	return f, nil
}

// Validate checks that no component is negative and that Total is their sum.
func (f Financials) Validate() error {
	var problems []error
	for name, v := range map[string]decimal.Decimal{
		"itemTotal": f.ItemTotal, "tax": f.Tax, "deliveryFee": f.DeliveryFee, "tip": f.Tip,
	} {
		if v.IsNegative() {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", v)))
		}
	}
	if sum := f.ItemTotal.Add(f.Tax).Add(f.DeliveryFee).Add(f.Tip); !sum.Equal(f.Total) {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"total", fmt.Errorf("%s does not equal the sum of its parts %s", f.Total, sum)))
	}
	return errors.Join(problems...)
}

// StatusChange is one entry of the append-only status history.
type StatusChange struct {
	Status   Status
	Actor    kernel.Actor
	At       time.Time
	Note     string
	Location *kernel.Location
}

// Assignment tracks the rider binding protocol (propose, accept or reject).
type Assignment struct {
	AssignedAt       *time.Time
	AcceptedAt       *time.Time
	RejectedAt       *time.Time
	RejectionReason  string
	AutoAssigned     bool
	RejectedRiderIDs []kernel.UUID
}

// Rating is the one-time customer feedback on a delivered order.
type Rating struct {
	Score   int
	Comment string
	RatedAt time.Time
}

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

// NewRating validates the score range [1,5].
func NewRating(score int, comment string, at time.Time) (Rating, error) {
	if score < MinRatingScore || score > MaxRatingScore {
		return Rating{}, errs.NewValueIsOutOfRangeError("rating", score, MinRatingScore, MaxRatingScore)
	}
	return Rating{Score: score, Comment: strings.TrimSpace(comment), RatedAt: at.UTC()}, nil
}

// Schedule groups the estimated and actual pickup/delivery times.
// PromisedDeliveryTime is fixed when the order is placed; EstimatedDeliveryTime
// follows the rider's pings.
type Schedule struct {
	EstimatedPickupTime   *time.Time
	EstimatedDeliveryTime *time.Time
	PromisedDeliveryTime  *time.Time
	ActualPickupTime      *time.Time
	ActualDeliveryTime    *time.Time
}

func validateReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	if len([]rune(trimmed)) < MinReasonLength {
		return "", ErrReasonTooShort
	}
	return trimmed, nil
}

func timePtr(t time.Time) *time.Time {
	utc := t.UTC()
	return &utc
}
