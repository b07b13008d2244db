package rider

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Profile holds the contact and vehicle data captured at onboarding.
type Profile struct {
	Name         string
	Phone        string
	Email        string
	LicensePlate string
	VehicleType  string
}

// Validate requires name, phone and license plate.
func (p Profile) Validate() error {
	var problems []error
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("name"))
	}
	if strings.TrimSpace(p.Phone) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("phone"))
	}
	if strings.TrimSpace(p.LicensePlate) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("licensePlate"))
	}
	return errors.Join(problems...)
}

// WorkingHours is a daily window in minutes after midnight (UTC). End before
// Start means the window crosses midnight.
type WorkingHours struct {
	StartMinute int
	EndMinute   int
}

const minutesPerDay = 24 * 60

// Validate checks both bounds lie within a day.
func (w WorkingHours) Validate() error {
	var problems []error
	if w.StartMinute < 0 || w.StartMinute >= minutesPerDay {
		problems = append(problems, errs.NewValueIsOutOfRangeError("workingHours.start", w.StartMinute, 0, minutesPerDay-1))
	}
	if w.EndMinute < 0 || w.EndMinute >= minutesPerDay {
		problems = append(problems, errs.NewValueIsOutOfRangeError("workingHours.end", w.EndMinute, 0, minutesPerDay-1))
	}
	return errors.Join(problems...)
}

// Contains reports whether t falls inside the window.
func (w WorkingHours) Contains(t time.Time) bool {
	utc := t.UTC()
	m := utc.Hour()*60 + utc.Minute()
	if w.StartMinute == w.EndMinute {
		return true
	}
	if w.StartMinute < w.EndMinute {
		return m >= w.StartMinute && m < w.EndMinute
	}
	return m >= w.StartMinute || m < w.EndMinute
}

// Preferences are the rider's own dispatch constraints.
type Preferences struct {
	IsAvailable    bool
	WorkingHours   *WorkingHours
	PreferredAreas []string
	MaxDistanceKm  float64
}

// Validate checks the working hours window and a non-negative max distance.
func (p Preferences) Validate() error {
	var problems []error
	if p.WorkingHours != nil {
		problems = append(problems, p.WorkingHours.Validate())
	}
	if p.MaxDistanceKm < 0 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
			"maxDistanceKm", fmt.Errorf("%v is negative", p.MaxDistanceKm)))
	}
	return errors.Join(problems...)
}

// Accepts reports whether a job distanceKm away at time at fits the preferences.
func (p Preferences) Accepts(distanceKm float64, at time.Time) bool {
	if p.MaxDistanceKm > 0 && distanceKm > p.MaxDistanceKm {
		return false
	}
	if p.WorkingHours != nil && !p.WorkingHours.Contains(at) {
		return false
	}
	return true
}

// Verification gates eligibility for dispatch.
type Verification struct {
	IsVerified bool
	IsApproved bool
}

// Performance holds cumulative delivery counters and the running rating mean.
type Performance struct {
	TotalDeliveries     int
	CompletedDeliveries int
	CancelledDeliveries int
	OnTimeDeliveries    int
	LateDeliveries      int
	AverageRating       float64
	RatingCount         int
}

// CompletionRate is completed/total, or 0 without history.
func (p Performance) CompletionRate() float64 {
	if p.TotalDeliveries == 0 {
		return 0
	}
	return float64(p.CompletedDeliveries) / float64(p.TotalDeliveries)
}

// OnTimeRate is onTime/completed, or 0 without completions.
func (p Performance) OnTimeRate() float64 {
	if p.CompletedDeliveries == 0 {
		return 0
	}
	return float64(p.OnTimeDeliveries) / float64(p.CompletedDeliveries)
}

// Earnings holds the cumulative money counters of a rider.
type Earnings struct {
	Total         decimal.Decimal
	ThisWeek      decimal.Decimal
	ThisMonth     decimal.Decimal
	WalletBalance decimal.Decimal
	LastSettledAt *time.Time
}

// AsOf returns the counters as they stand at now: ThisWeek is zero when the
// last settlement was in an earlier ISO week, ThisMonth when it was in an
// earlier calendar month. The stored values only roll over on the next credit.
func (e Earnings) AsOf(now time.Time) Earnings {
	if e.LastSettledAt == nil {
		return e
	}
	now = now.UTC()
	last := e.LastSettledAt.UTC()
	lastYear, lastWeek := last.ISOWeek()
	year, week := now.ISOWeek()
	if lastYear != year || lastWeek != week {
		e.ThisWeek = decimal.Zero
	}
	if last.Year() != now.Year() || last.Month() != now.Month() {
		e.ThisMonth = decimal.Zero
	}
	return e
}

// credit adds amount to every counter after rolling the period totals over to at.
func (e Earnings) credit(amount decimal.Decimal, at time.Time) Earnings {
	at = at.UTC()
	e = e.AsOf(at)

	e.Total = e.Total.Add(amount)
	e.ThisWeek = e.ThisWeek.Add(amount)
	e.ThisMonth = e.ThisMonth.Add(amount)
	e.WalletBalance = e.WalletBalance.Add(amount)
	e.LastSettledAt = &at
	return e
}
