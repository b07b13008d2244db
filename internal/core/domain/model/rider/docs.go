// Package rider implements the Rider aggregate: a courier's operational profile
// with status, live position, work preferences, verification, cumulative
// performance counters and earnings.
//
// Key business rules:
//   - A rider holds at most one current assignment, and is Busy or OnDelivery iff it does
//   - Dispatch only considers online, available, approved riders without an assignment
//   - Weekly and monthly earnings restart when a settlement falls in a new ISO week or month
//   - The average rating is a running mean over every rating received
package rider
