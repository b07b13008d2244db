package queries

import (
	"time"

	"orderdispatch/internal/core/domain/model/rider"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PerformanceView holds the delivery counters of a rider.
type PerformanceView struct {
	TotalDeliveries     int     `json:"totalDeliveries"`
	CompletedDeliveries int     `json:"completedDeliveries"`
	CancelledDeliveries int     `json:"cancelledDeliveries"`
	OnTimeDeliveries    int     `json:"onTimeDeliveries"`
	LateDeliveries      int     `json:"lateDeliveries"`
	AverageRating       float64 `json:"averageRating"`
	RatingCount         int     `json:"ratingCount"`
}

// EarningsView holds the money counters. ThisWeek and ThisMonth cover the
// current ISO week and calendar month at the time of the read.
type EarningsView struct {
	Total         decimal.Decimal `json:"total"`
	ThisWeek      decimal.Decimal `json:"thisWeek"`
	ThisMonth     decimal.Decimal `json:"thisMonth"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	LastSettledAt *time.Time      `json:"lastSettledAt,omitempty"`
}

// RiderView is the rider's own profile.
type RiderView struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Phone             string          `json:"phone"`
	LicensePlate      string          `json:"licensePlate"`
	VehicleType       string          `json:"vehicleType,omitempty"`
	Status            string          `json:"status"`
	IsAvailable       bool            `json:"isAvailable"`
	IsApproved        bool            `json:"isApproved"`
	Location          *PointView      `json:"location,omitempty"`
	LocationAt        *time.Time      `json:"locationUpdatedAt,omitempty"`
	CurrentAssignment *uuid.UUID      `json:"currentAssignment,omitempty"`
	Performance       PerformanceView `json:"performance"`
	Earnings          EarningsView    `json:"earnings"`
}

type riderRow struct {
	ID                  uuid.UUID
	Name                string
	Phone               string
	LicensePlate        string
	VehicleType         string
	Status              string
	IsAvailable         bool
	IsApproved          bool
	LocationLat         *float64
	LocationLon         *float64
	LocationRecordedAt  *time.Time
	CurrentAssignment   *uuid.UUID
	TotalDeliveries     int
	CompletedDeliveries int
	CancelledDeliveries int
	OnTimeDeliveries    int
	LateDeliveries      int
	AverageRating       float64
	RatingCount         int
	EarningsTotal       decimal.Decimal
	EarningsThisWeek    decimal.Decimal
	EarningsThisMonth   decimal.Decimal
	WalletBalance       decimal.Decimal
	LastSettledAt       *time.Time
}

func (r riderRow) toView(now time.Time) RiderView {
	earnings := rider.Earnings{
		Total:         r.EarningsTotal,
		ThisWeek:      r.EarningsThisWeek,
		ThisMonth:     r.EarningsThisMonth,
		WalletBalance: r.WalletBalance,
		LastSettledAt: r.LastSettledAt,
	}.AsOf(now)

	v := RiderView{
		ID:                r.ID,
		Name:              r.Name,
		Phone:             r.Phone,
		LicensePlate:      r.LicensePlate,
		VehicleType:       r.VehicleType,
		Status:            r.Status,
		IsAvailable:       r.IsAvailable,
		IsApproved:        r.IsApproved,
		LocationAt:        r.LocationRecordedAt,
		CurrentAssignment: r.CurrentAssignment,
		Performance: PerformanceView{
			TotalDeliveries:     r.TotalDeliveries,
			CompletedDeliveries: r.CompletedDeliveries,
			CancelledDeliveries: r.CancelledDeliveries,
			OnTimeDeliveries:    r.OnTimeDeliveries,
			LateDeliveries:      r.LateDeliveries,
			AverageRating:       r.AverageRating,
			RatingCount:         r.RatingCount,
		},
		Earnings: EarningsView{
			Total:         earnings.Total,
			ThisWeek:      earnings.ThisWeek,
			ThisMonth:     earnings.ThisMonth,
			WalletBalance: earnings.WalletBalance,
			LastSettledAt: earnings.LastSettledAt,
		},
	}
	if r.LocationLat != nil && r.LocationLon != nil {
		v.Location = &PointView{Lat: *r.LocationLat, Lon: *r.LocationLon}
	}
	return v
}
