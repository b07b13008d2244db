package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// Order is the aggregate root of a delivery. It owns the priced items, the status
// state machine with its history, the rider assignment protocol, live rider
// tracking and the one-time rating and settlement marks.
//
// Order follows these invariants:
//   - Financials.Total equals ItemTotal + Tax + DeliveryFee + Tip
//   - Status only moves along the edges of the transition table, or to Cancelled
//     from Pending, Accepted or Preparing
//   - riderID changes owner only through RejectByRider; Assign never overwrites it
//   - Every status change appends exactly one StatusChange to the history
//   - Settlement and rating happen at most once
//
// Orders are created with NewOrder (placement) or RestoreOrder (persistence).
type Order struct {
	id         kernel.UUID
	customerID kernel.UUID
	vendorID   kernel.UUID
	riderID    *kernel.UUID

	orderType Type
	priority  Priority
	items     []Item
	notes     string

	financials    Financials
	riderEarnings *decimal.Decimal

	status  Status
	history []StatusChange

	customerLocation kernel.Location
	vendorLocation   *kernel.Location
	riderLocation    *kernel.Position

	schedule   Schedule
	assignment Assignment

	rating             *Rating
	cancellationReason string
	rejectionReason    string
	settledAt          *time.Time

	notifications []Notification
	events        []Event

	version   int
	createdAt time.Time
	updatedAt time.Time

	guard guard.ConstructorGuard
}

// Placement carries everything known about an order when a customer places it.
type Placement struct {
	ID                    kernel.UUID
	Customer              kernel.Actor
	VendorID              kernel.UUID
	Type                  Type
	Priority              Priority
	Items                 []Item
	Financials            Financials
	CustomerLocation      kernel.Location
	VendorLocation        *kernel.Location
	EstimatedPickupTime   time.Time
	EstimatedDeliveryTime time.Time
	Notes                 string
	PlacedAt              time.Time
}

// NewOrder creates a priced order in Pending status.
//
// Parameters:
//   - p: placement data; the customer actor must have the customer role
//
// Returns:
//   - *Order: the new order with one history entry and status_update events for
//     the customer and the vendor
//   - error: joined validation errors for every invalid field
//
// Example:
//
//	o, err := order.NewOrder(order.Placement{
//	    ID:               kernel.NewUUID(),
//	    Customer:         actor,
//	    VendorID:         vendorID,
//	    Type:             order.TypeRegular,
//	    Priority:         order.PriorityNormal,
//	    Items:            items,
//	    Financials:       quote.Financials,
//	    CustomerLocation: dropOff,
//	    PlacedAt:         time.Now(),
//	})
func NewOrder(p Placement) (*Order, error) {
	o := &Order{
		status:  Pending,
		version: 1,
		guard:   guard.NewConstructorGuard(),
	}

	var customerErr error
	if p.Customer.Role != kernel.RoleCustomer {
		customerErr = errs.NewAccessDeniedError("only customers place orders")
	}

	if err := errors.Join(
		customerErr,
		o.setID(p.ID),
		o.setParties(p.Customer.UserID, p.VendorID),
		o.setType(p.Type),
		o.setPriority(p.Priority),
		o.setItems(p.Items),
		o.setFinancials(p.Financials),
		o.setCustomerLocation(p.CustomerLocation),
		o.setVendorLocation(p.VendorLocation),
		requiredTime("placedAt", p.PlacedAt),
	); err != nil {
		return nil, err
	}

	at := p.PlacedAt.UTC()
	o.notes = strings.TrimSpace(p.Notes)
	o.createdAt = at
	o.updatedAt = at
	if !p.EstimatedPickupTime.IsZero() {
		o.schedule.EstimatedPickupTime = timePtr(p.EstimatedPickupTime)
	}
	if !p.EstimatedDeliveryTime.IsZero() {
		o.schedule.EstimatedDeliveryTime = timePtr(p.EstimatedDeliveryTime)
		o.schedule.PromisedDeliveryTime = timePtr(p.EstimatedDeliveryTime)
	}

	o.history = []StatusChange{{Status: Pending, Actor: p.Customer, At: at, Note: "order placed"}}
	o.record(NotificationStatusUpdate, kernel.RoleCustomer, "Your order has been placed", at)
	o.record(NotificationStatusUpdate, kernel.RoleVendor, "New order received", at)

	return o, nil
}

// Snapshot is the complete persisted state of an order.
type Snapshot struct {
	ID                 kernel.UUID
	CustomerID         kernel.UUID
	VendorID           kernel.UUID
	RiderID            *kernel.UUID
	Type               Type
	Priority           Priority
	Items              []Item
	Notes              string
	Financials         Financials
	RiderEarnings      *decimal.Decimal
	Status             Status
	History            []StatusChange
	CustomerLocation   kernel.Location
	VendorLocation     *kernel.Location
	RiderLocation      *kernel.Position
	Schedule           Schedule
	Assignment         Assignment
	Rating             *Rating
	CancellationReason string
	RejectionReason    string
	SettledAt          *time.Time
	Notifications      []Notification
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RestoreOrder rebuilds an order from persisted state without recording events.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		riderID:            s.RiderID,
		notes:              s.Notes,
		riderEarnings:      s.RiderEarnings,
		history:            s.History,
		riderLocation:      s.RiderLocation,
		schedule:           s.Schedule,
		assignment:         s.Assignment,
		rating:             s.Rating,
		cancellationReason: s.CancellationReason,
		rejectionReason:    s.RejectionReason,
		settledAt:          s.SettledAt,
		notifications:      s.Notifications,
		createdAt:          s.CreatedAt,
		updatedAt:          s.UpdatedAt,
		guard:              guard.NewConstructorGuard(),
	}

	var versionErr error
	if s.Version < 1 {
		versionErr = errs.NewValueIsOutOfRangeError("version", s.Version, 1, "unbounded")
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setParties(s.CustomerID, s.VendorID),
		o.setType(s.Type),
		o.setPriority(s.Priority),
		o.setItems(s.Items),
		o.setFinancials(s.Financials),
		o.setCustomerLocation(s.CustomerLocation),
		o.setVendorLocation(s.VendorLocation),
		s.Status.Validate(),
		versionErr,
	); err != nil {
		return nil, err
	}

	o.status = s.Status
	o.version = s.Version
	return o, nil
}

// Snapshot returns a copy of the order state for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:                 o.id,
		CustomerID:         o.customerID,
		VendorID:           o.vendorID,
		RiderID:            o.riderID,
		Type:               o.orderType,
		Priority:           o.priority,
		Items:              append([]Item(nil), o.items...),
		Notes:              o.notes,
		Financials:         o.financials,
		RiderEarnings:      o.riderEarnings,
		Status:             o.status,
		History:            append([]StatusChange(nil), o.history...),
		CustomerLocation:   o.customerLocation,
		VendorLocation:     o.vendorLocation,
		RiderLocation:      o.riderLocation,
		Schedule:           o.schedule,
		Assignment:         o.assignment,
		Rating:             o.rating,
		CancellationReason: o.cancellationReason,
		RejectionReason:    o.rejectionReason,
		SettledAt:          o.settledAt,
		Notifications:      append([]Notification(nil), o.notifications...),
		Version:            o.version,
		CreatedAt:          o.createdAt,
		UpdatedAt:          o.updatedAt,
	}
}

// Validate ensures the Order was built by NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by id.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) VendorID() kernel.UUID {
	return o.vendorID
}

func (o *Order) Type() Type {
	return o.orderType
}

func (o *Order) Priority() Priority {
	return o.priority
}

func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

func (o *Order) Financials() Financials {
	return o.financials
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) CustomerLocation() kernel.Location {
	return o.customerLocation
}

func (o *Order) Schedule() Schedule {
	return o.schedule
}

func (o *Order) Assignment() Assignment {
	return o.assignment
}

func (o *Order) Rating() *Rating {
	return o.rating
}

func (o *Order) SettledAt() *time.Time {
	return o.settledAt
}

// Version is the optimistic concurrency counter of the persisted row.
func (o *Order) Version() int {
	return o.version
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) CancellationReason() string {
	return o.cancellationReason
}

func (o *Order) RejectionReason() string {
	return o.rejectionReason
}

func (o *Order) RiderEarnings() *decimal.Decimal {
	return o.riderEarnings
}

// History returns a copy of the status history, oldest first.
func (o *Order) History() []StatusChange {
	return append([]StatusChange(nil), o.history...)
}

// RiderID returns the bound rider, or nil.
func (o *Order) RiderID() *kernel.UUID {
	return o.riderID
}

// VendorLocation returns the vendor pickup point if known.
func (o *Order) VendorLocation() *kernel.Location {
	return o.vendorLocation
}

// RiderLocation returns the last rider ping recorded on the order.
func (o *Order) RiderLocation() *kernel.Position {
	return o.riderLocation
}

// PickupLocation is the vendor location when known, otherwise the customer location.
func (o *Order) PickupLocation() kernel.Location {
	if o.vendorLocation != nil {
		return *o.vendorLocation
	}
	return o.customerLocation
}

// DeliveryDistanceKm is the straight-line distance from pickup to drop-off.
func (o *Order) DeliveryDistanceKm() float64 {
	d, err := o.PickupLocation().DistanceKm(o.customerLocation)
	if err != nil {
		return 0
	}
	return d
}

// IsAssignedTo reports whether riderID is the bound rider.
func (o *Order) IsAssignedTo(riderID kernel.UUID) bool {
	return o.riderID != nil && o.riderID.IsEqual(riderID)
}

// IsVisibleTo reports whether actor may read the order: its customer, its vendor,
// its bound rider, or any admin.
func (o *Order) IsVisibleTo(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleAdmin, kernel.RoleSystem:
		return true
	case kernel.RoleCustomer:
		return o.customerID.IsEqual(actor.UserID)
	case kernel.RoleVendor:
		return o.vendorID.IsEqual(actor.UserID)
	case kernel.RoleRider:
		return o.IsAssignedTo(actor.UserID)
	default:
		return false
	}
}

// AdvanceVersion is called by the persistence layer after a guarded write succeeded.
func (o *Order) AdvanceVersion() {
	o.version++
}

// Transition moves the order along one edge of the transition table.
//
// This method enforces the following business rules:
//   - vendors act only on their own orders
//   - riders act only on orders bound to them and only after accepting
//   - the edge must exist for the actor's role (admins own every vendor and rider edge)
//   - rider edges need a bound rider even when taken by an admin
//
// Cancelled and Rejected are reached through Cancel and Reject, which need a reason.
//
// Parameters:
//   - actor: who requests the change
//   - to: requested status
//   - note: optional free text stored in the history
//   - at: server timestamp
//
// Returns:
//   - nil on success; the history gains one entry and status events are recorded
//   - *IllegalTransitionError if the edge is not in the table
//   - ErrNotOrderParty if the actor does not own the order
//
// Example:
//
//	if err := o.Transition(vendor, order.Accepted, "", time.Now()); err != nil {
//	    return err
//	}
func (o *Order) Transition(actor kernel.Actor, to Status, note string, at time.Time) error {
	if err := errors.Join(actor.Validate(), to.Validate()); err != nil {
		return err
	}

	switch to {
	case Cancelled:
		return o.Cancel(actor, note, at)
	case Rejected:
		return o.Reject(actor, note, at)
	}

	if err := o.checkParty(actor); err != nil {
		return err
	}

	next, err := o.status.TransitionTo(actor.Role, to)
	if err != nil {
		return err
	}

	if o.status.IsRiderEdge(to) {
		if o.riderID == nil {
			return ErrRiderNotAssigned
		}
		if actor.Role == kernel.RoleRider && o.assignment.AcceptedAt == nil {
			return ErrAssignmentNotAccepted
		}
	}

	switch next {
	case PickedUp:
		o.schedule.ActualPickupTime = timePtr(at)
	case Delivered:
		o.schedule.ActualDeliveryTime = timePtr(at)
	}

	o.apply(next, actor, strings.TrimSpace(note), at)
	return nil
}

// Cancel moves the order to Cancelled from Pending, Accepted or Preparing.
// Customers and vendors may cancel their own orders; admins any order.
// The bound rider, if any, stays on the order for history; releasing the rider
// is the caller's job.
func (o *Order) Cancel(actor kernel.Actor, reason string, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}

	switch actor.Role {
	case kernel.RoleCustomer, kernel.RoleVendor, kernel.RoleAdmin:
		if err := o.checkParty(actor); err != nil {
			return err
		}
	default:
		return ErrNotOrderParty
	}

	if !o.status.CanCancel() {
		return NewIllegalTransitionError(o.status, Cancelled)
	}

	trimmed, err := validateReason(reason)
	if err != nil {
		return err
	}

	o.cancellationReason = trimmed
	o.apply(Cancelled, actor, trimmed, at)
	if o.riderID != nil {
		o.record(NotificationStatusUpdate, kernel.RoleRider, "Order cancelled: "+trimmed, at)
	}
	return nil
}

// Reject is the vendor refusing a pending order.
func (o *Order) Reject(actor kernel.Actor, reason string, at time.Time) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if err := o.checkParty(actor); err != nil {
		return err
	}

	if _, err := o.status.TransitionTo(actor.Role, Rejected); err != nil {
		return err
	}

	trimmed, err := validateReason(reason)
	if err != nil {
		return err
	}

	o.rejectionReason = trimmed
	o.apply(Rejected, actor, trimmed, at)
	return nil
}

// CheckDispatchable returns nil if the order is waiting for a rider.
func (o *Order) CheckDispatchable() error {
	if !o.status.IsAssignable() {
		return fmt.Errorf("%w: status is %s", ErrNotAssignable, o.status)
	}
	if o.riderID != nil {
		return ErrAlreadyAssigned
	}
	return nil
}

// CheckAssignable returns nil if riderID could be bound to the order now.
func (o *Order) CheckAssignable(riderID kernel.UUID) error {
	if err := riderID.Validate(); err != nil {
		return err
	}
	if err := o.CheckDispatchable(); err != nil {
		return err
	}
	if kernel.ContainsUUID(o.assignment.RejectedRiderIDs, riderID) {
		return ErrRiderExcluded
	}
	return nil
}

// Assign binds a rider to an unassigned order. Status is unchanged; the rider
// still has to accept.
//
// Returns:
//   - ErrAlreadyAssigned if another rider is bound
//   - ErrNotAssignable once the order has been picked up or is terminal
//   - ErrRiderExcluded if this rider already rejected the order
func (o *Order) Assign(riderID kernel.UUID, autoAssigned bool, at time.Time) error {
	if err := o.CheckAssignable(riderID); err != nil {
		return err
	}

	id := riderID
	o.riderID = &id
	o.assignment.AssignedAt = timePtr(at)
	o.assignment.AcceptedAt = nil
	o.assignment.RejectedAt = nil
	o.assignment.RejectionReason = ""
	o.assignment.AutoAssigned = autoAssigned
	o.updatedAt = at.UTC()

	o.record(NotificationRiderAssigned, kernel.RoleRider, "New delivery assigned to you", at)
	return nil
}

// Accept confirms the assignment on behalf of the bound rider.
func (o *Order) Accept(actor kernel.Actor, at time.Time) error {
	if actor.Role != kernel.RoleRider || !o.IsAssignedTo(actor.UserID) {
		return ErrNotOrderParty
	}
	if o.status.IsTerminal() {
		return ErrOrderNotActive
	}
	if o.assignment.AcceptedAt != nil {
		return ErrAssignmentAlreadyAccepted
	}

	o.assignment.AcceptedAt = timePtr(at)
	o.updatedAt = at.UTC()
	o.record(NotificationRiderAssigned, kernel.RoleCustomer, "A rider has accepted your order", at)
	return nil
}

// RejectByRider unbinds the rider before acceptance and excludes them from
// future dispatch of this order.
//
// Returns the id of the released rider.
func (o *Order) RejectByRider(actor kernel.Actor, reason string, at time.Time) (kernel.UUID, error) {
	if actor.Role != kernel.RoleRider || !o.IsAssignedTo(actor.UserID) {
		return kernel.UUID{}, ErrNotOrderParty
	}
	if o.assignment.AcceptedAt != nil {
		return kernel.UUID{}, ErrAssignmentAlreadyAccepted
	}

	trimmed, err := validateReason(reason)
	if err != nil {
		return kernel.UUID{}, err
	}

	released := *o.riderID
	o.riderID = nil
	o.assignment.RejectedAt = timePtr(at)
	o.assignment.RejectionReason = trimmed
	if !kernel.ContainsUUID(o.assignment.RejectedRiderIDs, released) {
		o.assignment.RejectedRiderIDs = append(o.assignment.RejectedRiderIDs, released)
	}
	o.updatedAt = at.UTC()

	o.history = append(o.history, StatusChange{
		Status:   o.status,
		Actor:    actor,
		At:       at.UTC(),
		Note:     "rider rejected assignment: " + trimmed,
		Location: o.lastRiderPoint(),
	})
	o.record(NotificationStatusUpdate, kernel.RoleAdmin, "Rider rejected the order: "+trimmed, at)
	return released, nil
}

// Rate stores the customer's one-time rating of a delivered order.
//
// Returns:
//   - ErrNotOrderParty unless actor is the order's customer
//   - ErrNotDeliverable unless the order is Delivered
//   - ErrAlreadyRated on the second attempt
//   - errs.ValueIsOutOfRangeError for scores outside [1,5]
func (o *Order) Rate(actor kernel.Actor, score int, comment string, at time.Time) error {
	if !actor.Is(kernel.RoleCustomer, o.customerID) {
		return ErrNotOrderParty
	}
	if o.status != Delivered {
		return ErrNotDeliverable
	}
	if o.rating != nil {
		return ErrAlreadyRated
	}

	rating, err := NewRating(score, comment, at)
	if err != nil {
		return err
	}

	o.rating = &rating
	o.updatedAt = at.UTC()
	return nil
}

// TrackRider records a rider ping on an active order bound to that rider and,
// when eta is non-zero, replaces the estimated delivery time.
func (o *Order) TrackRider(riderID kernel.UUID, position kernel.Position, eta time.Time) error {
	if !o.IsAssignedTo(riderID) {
		return ErrNotOrderParty
	}
	if !o.status.IsActive() {
		return ErrOrderNotActive
	}
	if position.IsZero() {
		return errs.NewValueIsRequiredError("position")
	}

	p := position
	o.riderLocation = &p
	at := position.RecordedAt
	o.record(NotificationRiderLocation, kernel.RoleCustomer, "Rider location updated", at)

	if !eta.IsZero() {
		o.schedule.EstimatedDeliveryTime = timePtr(eta)
		o.record(NotificationDeliveryETA, kernel.RoleCustomer,
			"Estimated delivery at "+eta.UTC().Format(time.RFC3339), at)
	}
	return nil
}

// Settle marks the order as settled by the ledger. riderEarnings is stored for
// delivered orders and may be nil otherwise. Returns false if the order was
// already settled.
func (o *Order) Settle(riderEarnings *decimal.Decimal, at time.Time) (bool, error) {
	if !o.status.IsTerminal() {
		return false, ErrOrderNotActive
	}
	if o.settledAt != nil {
		return false, nil
	}

	if riderEarnings != nil {
		e := *riderEarnings
		o.riderEarnings = &e
		o.record(NotificationPayment, kernel.RoleRider, "Earned "+e.StringFixed(2)+" for this delivery", at)
	}
	o.settledAt = timePtr(at)
	return true, nil
}

func (o *Order) apply(next Status, actor kernel.Actor, note string, at time.Time) {
	var loc *kernel.Location
	if actor.Role == kernel.RoleRider {
		loc = o.lastRiderPoint()
	}

	o.status = next
	o.updatedAt = at.UTC()
	o.history = append(o.history, StatusChange{Status: next, Actor: actor, At: at.UTC(), Note: note, Location: loc})

	message := "Order is now " + next.String()
	o.record(NotificationStatusUpdate, kernel.RoleCustomer, message, at)
	if actor.Role != kernel.RoleVendor {
		o.record(NotificationStatusUpdate, kernel.RoleVendor, message, at)
	}
	if next == Delivered {
		o.record(NotificationPayment, kernel.RoleCustomer,
			"Payment of "+o.financials.Total.StringFixed(2)+" is due on delivery", at)
	}
}

func (o *Order) lastRiderPoint() *kernel.Location {
	if o.riderLocation == nil {
		return nil
	}
	loc := o.riderLocation.Location
	return &loc
}

func (o *Order) checkParty(actor kernel.Actor) error {
	switch actor.Role {
	case kernel.RoleAdmin:
		return nil
	case kernel.RoleCustomer:
		if o.customerID.IsEqual(actor.UserID) {
			return nil
		}
	case kernel.RoleVendor:
		if o.vendorID.IsEqual(actor.UserID) {
			return nil
		}
	case kernel.RoleRider:
		if o.IsAssignedTo(actor.UserID) {
			return nil
		}
	}
	return ErrNotOrderParty
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setParties(customerID, vendorID kernel.UUID) error {
	if err := errors.Join(customerID.Validate(), vendorID.Validate()); err != nil {
		return err
	}
	o.customerID = customerID
	o.vendorID = vendorID
	return nil
}

func (o *Order) setType(t Type) error {
	if err := t.Validate(); err != nil {
		return err
	}
	o.orderType = t
	return nil
}

func (o *Order) setPriority(p Priority) error {
	if err := p.Validate(); err != nil {
		return err
	}
	o.priority = p
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	var problems []error
	for i, item := range items {
		if err := item.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("item %d: %w", i, err))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}

	o.items = append([]Item(nil), items...)
	return nil
}

func (o *Order) setFinancials(f Financials) error {
	if err := f.Validate(); err != nil {
		return err
	}
	o.financials = f
	return nil
}

func (o *Order) setCustomerLocation(loc kernel.Location) error {
	if err := loc.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerLocation", err)
	}
	o.customerLocation = loc
	return nil
}

func (o *Order) setVendorLocation(loc *kernel.Location) error {
	if loc == nil {
		return nil
	}
	if err := loc.Validate(); err != nil {
		return err
	}
	l := *loc
	o.vendorLocation = &l
	return nil
}

func requiredTime(name string, t time.Time) error {
	if t.IsZero() {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
