// Package kernel provides the shared value objects of the order dispatch domain.
//
// The package includes:
//   - UUID: identifier value object for orders, riders, products, vendors and users
//   - Location: a validated WGS84 point with great-circle distance (haversine)
//   - Position: a Location stamped with the time it was observed
//   - Role and Actor: who performs an operation (customer, vendor, rider, admin, system)
//
// Values are immutable and their zero values fail validation, so a domain object
// can never be built from an unchecked coordinate or identifier.
package kernel
