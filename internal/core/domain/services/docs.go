// Package services provides domain services that coordinate the order and rider
// aggregates in operations no single aggregate owns.
//
// The package includes:
//   - PricingCalculator: itemized totals, tax, delivery fee and priority of a new order
//   - OrderDispatcher: candidate filtering, scoring and binding of a rider to an order
//   - RiderScorer / WeightedScorer: the pluggable ranking strategy used by dispatch
//   - EarningsLedger: one-time settlement of terminal orders into rider counters
//   - ETAEstimator: pickup and delivery estimates from straight-line distance
//
// Services are stateless values configured with policy structs; callers persist
// the aggregates they mutate.
package services
