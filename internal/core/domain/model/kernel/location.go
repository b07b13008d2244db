package kernel

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"orderdispatch/internal/pkg/errs"
	"orderdispatch/internal/pkg/guard"
)

const (
	// LatitudeMin is the smallest valid latitude in degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the largest valid latitude in degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the smallest valid longitude in degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the largest valid longitude in degrees.
	LongitudeMax = 180.0

	// EarthRadiusKm is the mean Earth radius used for great-circle distances.
	EarthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
// Locations must be created using NewLocation to ensure validity.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation constructor")

// Location is an immutable geographic point (WGS84 degrees) with an optional
// human-readable address. It is used for customer drop-off points, vendor pickup
// points and rider positions.
//
// The zero value of Location is invalid and fails validation - use NewLocation.
//
// Example:
//
//	dropOff, err := kernel.NewLocation(27.7172, 85.3240, "Thamel, Kathmandu")
//	if err != nil {
//	    // latitude or longitude out of bounds
//	}
//	km, _ := dropOff.DistanceKm(pickup)
type Location struct { //nolint:recvcheck //using for validation
	lat     float64
	lon     float64
	address string
	guard   guard.ConstructorGuard
}

// NewLocation creates a Location after checking coordinate bounds.
//
// Parameters:
//   - lat: latitude in degrees, must lie in [LatitudeMin, LatitudeMax]
//   - lon: longitude in degrees, must lie in [LongitudeMin, LongitudeMax]
//   - address: free-form address, may be empty
//
// Returns:
//   - Location: a valid location
//   - error: joined out-of-range errors for every invalid coordinate
func NewLocation(lat, lon float64, address string) (Location, error) {
	loc := Location{
		address: strings.TrimSpace(address),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLat(lat), loc.setLon(lon)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// ValidateCoordinates checks latitude and longitude bounds without building a Location.
func ValidateCoordinates(lat, lon float64) error {
	var l Location
	return errors.Join(l.setLat(lat), l.setLon(lon))
}

// Validate checks that the Location was created through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude in degrees.
func (l Location) Lat() float64 {
	return l.lat
}

// Lon returns the longitude in degrees.
func (l Location) Lon() float64 {
	return l.lon
}

// Address returns the address attached to the point, possibly empty.
func (l Location) Address() string {
	return l.address
}

// String returns "Location(lat,lon)" with six decimals.
func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.lat, l.lon)
}

// IsEqual compares coordinates of two valid locations; addresses are ignored.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.lat == other.lat && l.lon == other.lon, nil
}

// DistanceKm returns the great-circle distance to other in kilometres.
// Both locations must be valid.
//
// Example:
//
//	a, _ := NewLocation(0, 0, "")
//	b, _ := NewLocation(0, 1, "")
//	km, _ := a.DistanceKm(b) // ~111.19
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return HaversineKm(l.lat, l.lon, other.lat, other.lon), nil
}

// HaversineKm computes the great-circle distance between two coordinates in kilometres
// on a sphere of radius EarthRadiusKm.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Position is a Location observed at a point in time, used for live rider pings.
type Position struct {
	Location   Location
	RecordedAt time.Time
}

// NewPosition validates the location and stamps it with recordedAt (UTC).
func NewPosition(location Location, recordedAt time.Time) (Position, error) {
	if err := location.Validate(); err != nil {
		return Position{}, err
	}
	if recordedAt.IsZero() {
		return Position{}, errs.NewValueIsRequiredError("recordedAt")
	}
	return Position{Location: location, RecordedAt: recordedAt.UTC()}, nil
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Location.Validate() != nil
}

func (l *Location) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < LatitudeMin || lat > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}

	l.lat = lat
	return nil
}

func (l *Location) setLon(lon float64) error {
	if math.IsNaN(lon) || lon < LongitudeMin || lon > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", lon, LongitudeMin, LongitudeMax)
	}

	l.lon = lon
	return nil
}
