package rider

import (
	"errors"
	"strings"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// Domain errors for rider operations.
var (
	// ErrRiderIsNotConstructed is returned when using an improperly initialized Rider.
	ErrRiderIsNotConstructed = errors.New("Rider must be created via NewRider or RestoreRider")
	// ErrAlreadyAssigned is returned when the rider already holds an assignment.
	ErrAlreadyAssigned = errs.NewConflictError("rider", "already has an active assignment")
	// ErrNotEligible is returned when a rider cannot be dispatched right now.
	ErrNotEligible = errs.NewConflictError("rider", "is not eligible for dispatch")
	// ErrHasActiveAssignment is returned when going offline while holding an order.
	ErrHasActiveAssignment = errs.NewConflictError("rider", "cannot go offline with an active assignment")
	// ErrNotAssignedToOrder is returned when an operation names an order the rider does not hold.
	ErrNotAssignedToOrder = errs.NewConflictError("rider", "is not assigned to this order")
	// ErrLocationUnknown is returned when the rider has never reported a position.
	ErrLocationUnknown = errs.NewConflictError("rider", "has no known location")
)

// Rider is a courier's operational profile. It is longer-lived than any order
// and is mutated by dispatch (assignment), rider actions (status, location)
// and the earnings ledger.
//
// Business rules:
//   - A rider holds at most one current assignment
//   - Status is Busy or OnDelivery iff the current assignment is set
//   - Only approved, available, online riders without an assignment are dispatched
//   - A rider's id is the id of the user account it belongs to
//
// Example usage:
//
//	r, err := rider.NewRider(userID, rider.Profile{Name: "Sita", Phone: "98...", LicensePlate: "BA 2 PA 1234"}, time.Now())
//	if err != nil {
//	    return err
//	}
//	r.Approve()
//	_ = r.GoOnline()
type Rider struct {
	id      kernel.UUID
	profile Profile
	status  Status

	currentLocation   *kernel.Position
	preferences       Preferences
	verification      Verification
	performance       Performance
	earnings          Earnings
	currentAssignment *kernel.UUID

	version   int
	createdAt time.Time
	guard     guard.ConstructorGuard
}

// NewRider onboards a rider: offline, available, not yet approved.
//
// Parameters:
//   - id: the user account id the profile belongs to
//   - profile: contact and vehicle data; name, phone and license plate are required
//   - at: creation time
//
// Returns:
//   - *Rider: the new rider
//   - error: joined validation errors
func NewRider(id kernel.UUID, profile Profile, at time.Time) (*Rider, error) {
	r := &Rider{
		status:      Offline,
		preferences: Preferences{IsAvailable: true},
		earnings:    Earnings{Total: decimal.Zero, ThisWeek: decimal.Zero, ThisMonth: decimal.Zero, WalletBalance: decimal.Zero},
		version:     1,
		createdAt:   at.UTC(),
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(r.setID(id), r.setProfile(profile)); err != nil {
		return nil, err
	}

	return r, nil
}

// Snapshot is the complete persisted state of a rider.
type Snapshot struct {
	ID                kernel.UUID
	Profile           Profile
	Status            Status
	CurrentLocation   *kernel.Position
	Preferences       Preferences
	Verification      Verification
	Performance       Performance
	Earnings          Earnings
	CurrentAssignment *kernel.UUID
	Version           int
	CreatedAt         time.Time
}

// RestoreRider rebuilds a rider from persistence and re-checks the
// status/assignment invariant.
func RestoreRider(s Snapshot) (*Rider, error) {
	r := &Rider{
		currentLocation:   s.CurrentLocation,
		verification:      s.Verification,
		performance:       s.Performance,
		earnings:          s.Earnings,
		currentAssignment: s.CurrentAssignment,
		version:           s.Version,
		createdAt:         s.CreatedAt,
		guard:             guard.NewConstructorGuard(),
	}

	var consistencyErr error
	if s.Status.IsEngaged() != (s.CurrentAssignment != nil) {
		consistencyErr = errs.NewValueIsInvalidError("rider status " + s.Status.String() + " does not match its assignment")
	}
	var versionErr error
	if s.Version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, 1, "unbounded")
	}

	if err := errors.Join(
		r.setID(s.ID),
		r.setProfile(s.Profile),
		r.setPreferences(s.Preferences),
		s.Status.Validate(),
		consistencyErr,
		versionErr,
	); err != nil {
		return nil, err
	}

	r.status = s.Status
	return r, nil
}

// Snapshot returns a copy of the rider state for persistence.
func (r *Rider) Snapshot() Snapshot {
	return Snapshot{
		ID:                r.id,
		Profile:           r.profile,
		Status:            r.status,
		CurrentLocation:   r.currentLocation,
		Preferences:       r.preferences,
		Verification:      r.verification,
		Performance:       r.performance,
		Earnings:          r.earnings,
		CurrentAssignment: r.currentAssignment,
		Version:           r.version,
		CreatedAt:         r.createdAt,
	}
}

// Validate checks the Rider was built through a constructor.
func (r *Rider) Validate() error {
	if r == nil {
		return ErrRiderIsNotConstructed
	}
	return r.guard.Validate(ErrRiderIsNotConstructed)
}

// IsEqual compares riders by id.
func (r *Rider) IsEqual(other *Rider) bool {
	return other != nil && r.id.IsEqual(other.id)
}

// ID returns the rider id, which is also the owning user's id.
func (r *Rider) ID() kernel.UUID {
	return r.id
}

func (r *Rider) Profile() Profile {
	return r.profile
}

func (r *Rider) Status() Status {
	return r.status
}

func (r *Rider) Preferences() Preferences {
	return r.preferences
}

func (r *Rider) Verification() Verification {
	return r.verification
}

func (r *Rider) Performance() Performance {
	return r.performance
}

// Earnings returns the counters as last stored; see Earnings.AsOf.
func (r *Rider) Earnings() Earnings {
	return r.earnings
}

func (r *Rider) Version() int {
	return r.version
}

// CurrentLocation returns the last reported position, or nil.
func (r *Rider) CurrentLocation() *kernel.Position {
	return r.currentLocation
}

// CurrentAssignment returns the order the rider holds, or nil.
func (r *Rider) CurrentAssignment() *kernel.UUID {
	return r.currentAssignment
}

// AdvanceVersion is called by the persistence layer after a guarded write succeeded.
func (r *Rider) AdvanceVersion() {
	r.version++
}

// Approve marks the rider verified and approved for dispatch.
func (r *Rider) Approve() {
	r.verification = Verification{IsVerified: true, IsApproved: true}
}

// SetPreferences replaces the work preferences.
func (r *Rider) SetPreferences(p Preferences) error {
	return r.setPreferences(p)
}

// GoOnline makes an offline rider available for dispatch. Engaged riders are
// already online and stay as they are.
func (r *Rider) GoOnline() error {
	if r.status == Offline {
		r.status = Online
	}
	r.preferences.IsAvailable = true
	return nil
}

// GoOffline removes the rider from dispatch. Not allowed while holding an order.
func (r *Rider) GoOffline() error {
	if r.currentAssignment != nil {
		return ErrHasActiveAssignment
	}
	r.status = Offline
	r.preferences.IsAvailable = false
	return nil
}

// UpdateLocation records a position ping.
func (r *Rider) UpdateLocation(position kernel.Position) error {
	if position.IsZero() {
		return errs.NewValueIsRequiredError("position")
	}
	p := position
	r.currentLocation = &p
	return nil
}

// DistanceToKm returns the distance from the rider's last position to target.
func (r *Rider) DistanceToKm(target kernel.Location) (float64, error) {
	if r.currentLocation == nil {
		return 0, ErrLocationUnknown
	}
	return r.currentLocation.Location.DistanceKm(target)
}

// CheckEligible returns ErrNotEligible (wrapped with the reason) unless the rider
// is online, available, approved and free.
func (r *Rider) CheckEligible() error {
	var reasons []string
	if r.status != Online {
		reasons = append(reasons, "status is "+r.status.String())
	}
	if !r.preferences.IsAvailable {
		reasons = append(reasons, "not available")
	}
	if !r.verification.IsApproved {
		reasons = append(reasons, "not approved")
	}
	if r.currentAssignment != nil {
		return ErrAlreadyAssigned
	}
	if len(reasons) > 0 {
		return errors.Join(ErrNotEligible, errors.New(strings.Join(reasons, ", ")))
	}
	return nil
}

// Assign gives the rider an order and makes it Busy.
func (r *Rider) Assign(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if r.currentAssignment != nil {
		return ErrAlreadyAssigned
	}

	id := orderID
	r.currentAssignment = &id
	r.status = Busy
	return nil
}

// StartDelivery moves a Busy rider to OnDelivery once the order is picked up.
func (r *Rider) StartDelivery(orderID kernel.UUID) error {
	if !r.holds(orderID) {
		return ErrNotAssignedToOrder
	}
	r.status = OnDelivery
	return nil
}

// Release clears the assignment for orderID and puts the rider back Online.
// Releasing a rider that no longer holds the order is a no-op.
func (r *Rider) Release(orderID kernel.UUID) {
	if !r.holds(orderID) {
		return
	}
	r.currentAssignment = nil
	r.status = Online
}

// ApplyDelivery credits earnings and counts a completed delivery.
func (r *Rider) ApplyDelivery(orderID kernel.UUID, earnings decimal.Decimal, onTime bool, at time.Time) {
	r.performance.TotalDeliveries++
	r.performance.CompletedDeliveries++
	if onTime {
		r.performance.OnTimeDeliveries++
	} else {
		r.performance.LateDeliveries++
	}
	r.earnings = r.earnings.credit(earnings, at)
	r.Release(orderID)
}

// ApplyCancellation counts a cancelled delivery and releases the rider.
func (r *Rider) ApplyCancellation(orderID kernel.UUID) {
	r.performance.TotalDeliveries++
	r.performance.CancelledDeliveries++
	r.Release(orderID)
}

// ApplyRating folds a customer score into the running average.
func (r *Rider) ApplyRating(score int) error {
	if score < 1 || score > 5 {
		return errs.NewValueIsOutOfRangeError("rating", score, 1, 5)
	}
	n := float64(r.performance.RatingCount)
	r.performance.AverageRating = (r.performance.AverageRating*n + float64(score)) / (n + 1)
	r.performance.RatingCount++
	return nil
}

func (r *Rider) holds(orderID kernel.UUID) bool {
	return r.currentAssignment != nil && r.currentAssignment.IsEqual(orderID)
}

func (r *Rider) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Rider) setProfile(p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.profile = Profile{
		Name:         strings.TrimSpace(p.Name),
		Phone:        strings.TrimSpace(p.Phone),
		Email:        strings.TrimSpace(p.Email),
		LicensePlate: strings.ToUpper(strings.TrimSpace(p.LicensePlate)),
		VehicleType:  strings.TrimSpace(p.VehicleType),
	}
	return nil
}

func (r *Rider) setPreferences(p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.PreferredAreas = append([]string(nil), p.PreferredAreas...)
	r.preferences = p
	return nil
}
