// Package riderrepo maps the rider aggregate to the riders table. The current
// position is kept as plain latitude/longitude columns; proximity queries cast
// them to a PostGIS geography on the fly, backed by an expression index.
package riderrepo

import (
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/rider"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// RiderDTO represents the database structure for persisting rider aggregates.
type RiderDTO struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Name         string  `gorm:"not null"`
	Phone        string  `gorm:"not null;uniqueIndex"`
	Email        *string `gorm:"uniqueIndex"`
	LicensePlate string  `gorm:"not null;uniqueIndex"`
	VehicleType  string

	Status string `gorm:"type:varchar(16);not null;index"`

	LocationLat        *float64
	LocationLon        *float64
	LocationRecordedAt *time.Time

	IsAvailable       bool `gorm:"not null"`
	WorkStartMinute   *int
	WorkEndMinute     *int
	PreferredAreas    pq.StringArray `gorm:"type:text[]"`
	MaxDistanceKm     float64        `gorm:"not null;default:0"`
	IsVerified        bool           `gorm:"not null"`
	IsApproved        bool           `gorm:"not null"`
	CurrentAssignment *uuid.UUID     `gorm:"type:uuid"`

	TotalDeliveries     int     `gorm:"not null"`
	CompletedDeliveries int     `gorm:"not null"`
	CancelledDeliveries int     `gorm:"not null"`
	OnTimeDeliveries    int     `gorm:"not null"`
	LateDeliveries      int     `gorm:"not null"`
	AverageRating       float64 `gorm:"not null"`
	RatingCount         int     `gorm:"not null"`

	EarningsTotal     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	EarningsThisWeek  decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	EarningsThisMonth decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	WalletBalance     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LastSettledAt     *time.Time

	Version   int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName specifies the database table name for rider entities.
func (RiderDTO) TableName() string {
	return "riders"
}

func fromDomain(r *rider.Rider) RiderDTO {
	s := r.Snapshot()

	dto := RiderDTO{
		ID:                  s.ID.Bytes(),
		Name:                s.Profile.Name,
		Phone:               s.Profile.Phone,
		LicensePlate:        s.Profile.LicensePlate,
		VehicleType:         s.Profile.VehicleType,
		Status:              s.Status.String(),
		IsAvailable:         s.Preferences.IsAvailable,
		PreferredAreas:      pq.StringArray(s.Preferences.PreferredAreas),
		MaxDistanceKm:       s.Preferences.MaxDistanceKm,
		IsVerified:          s.Verification.IsVerified,
		IsApproved:          s.Verification.IsApproved,
		TotalDeliveries:     s.Performance.TotalDeliveries,
		CompletedDeliveries: s.Performance.CompletedDeliveries,
		CancelledDeliveries: s.Performance.CancelledDeliveries,
		OnTimeDeliveries:    s.Performance.OnTimeDeliveries,
		LateDeliveries:      s.Performance.LateDeliveries,
		AverageRating:       s.Performance.AverageRating,
		RatingCount:         s.Performance.RatingCount,
		EarningsTotal:       s.Earnings.Total,
		EarningsThisWeek:    s.Earnings.ThisWeek,
		EarningsThisMonth:   s.Earnings.ThisMonth,
		WalletBalance:       s.Earnings.WalletBalance,
		LastSettledAt:       s.Earnings.LastSettledAt,
		Version:             s.Version,
		CreatedAt:           s.CreatedAt,
	}

	if s.Profile.Email != "" {
		email := s.Profile.Email
		dto.Email = &email
	}
	if s.CurrentLocation != nil {
		lat, lon, at := s.CurrentLocation.Location.Lat(), s.CurrentLocation.Location.Lon(), s.CurrentLocation.RecordedAt
		dto.LocationLat, dto.LocationLon, dto.LocationRecordedAt = &lat, &lon, &at
	}
	if wh := s.Preferences.WorkingHours; wh != nil {
		start, end := wh.StartMinute, wh.EndMinute
		dto.WorkStartMinute, dto.WorkEndMinute = &start, &end
	}
	if s.CurrentAssignment != nil {
		raw := s.CurrentAssignment.Bytes()
		dto.CurrentAssignment = &raw
	}

	return dto
}

func toDomain(dto RiderDTO) (*rider.Rider, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	status, err := rider.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	s := rider.Snapshot{
		ID: id,
		Profile: rider.Profile{
			Name:         dto.Name,
			Phone:        dto.Phone,
			LicensePlate: dto.LicensePlate,
			VehicleType:  dto.VehicleType,
		},
		Status: status,
		Preferences: rider.Preferences{
			IsAvailable:    dto.IsAvailable,
			PreferredAreas: []string(dto.PreferredAreas),
			MaxDistanceKm:  dto.MaxDistanceKm,
		},
		Verification: rider.Verification{IsVerified: dto.IsVerified, IsApproved: dto.IsApproved},
		Performance: rider.Performance{
			TotalDeliveries:     dto.TotalDeliveries,
			CompletedDeliveries: dto.CompletedDeliveries,
			CancelledDeliveries: dto.CancelledDeliveries,
			OnTimeDeliveries:    dto.OnTimeDeliveries,
			LateDeliveries:      dto.LateDeliveries,
			AverageRating:       dto.AverageRating,
			RatingCount:         dto.RatingCount,
		},
		Earnings: rider.Earnings{
			Total:         dto.EarningsTotal,
			ThisWeek:      dto.EarningsThisWeek,
			ThisMonth:     dto.EarningsThisMonth,
			WalletBalance: dto.WalletBalance,
			LastSettledAt: dto.LastSettledAt,
		},
		Version:   dto.Version,
		CreatedAt: dto.CreatedAt,
	}

	if dto.Email != nil {
		s.Profile.Email = *dto.Email
	}
	if dto.WorkStartMinute != nil && dto.WorkEndMinute != nil {
		s.Preferences.WorkingHours = &rider.WorkingHours{StartMinute: *dto.WorkStartMinute, EndMinute: *dto.WorkEndMinute}
	}
	if dto.LocationLat != nil && dto.LocationLon != nil && dto.LocationRecordedAt != nil {
		loc, locErr := kernel.NewLocation(*dto.LocationLat, *dto.LocationLon, "")
		if locErr != nil {
			return nil, locErr
		}
		s.CurrentLocation = &kernel.Position{Location: loc, RecordedAt: *dto.LocationRecordedAt}
	}
	if dto.CurrentAssignment != nil {
		orderID, idErr := kernel.UUIDFromBytes(dto.CurrentAssignment[:])
		if idErr != nil {
			return nil, idErr
		}
		s.CurrentAssignment = &orderID
	}

	return rider.RestoreRider(s)
}
