// Package order implements the Order aggregate root of the dispatch domain.
//
// The package includes:
//   - Order: priced items, parties, locations, schedule, rider assignment, rating
//   - Status: the nine-state lifecycle and the role-keyed transition table
//   - Item, Financials, Rating, Assignment, StatusChange: value types owned by the order
//   - Event and Notification: timeline records emitted on every state change
//
// Key business rules:
//   - Total is always ItemTotal + Tax + DeliveryFee + Tip; prices are captured at placement
//   - Status changes only along the transition table; cancellation is a side path
//     from pending, accepted or preparing and needs a reason of at least three characters
//   - A rider is bound only to an unassigned order and leaves it only by rejecting
//     before acceptance
//   - Rating is allowed once, by the customer, after delivery
//
// Events are buffered on the aggregate and collected by the unit of work after
// commit, so recording a notification can never undo a state change.
package order
