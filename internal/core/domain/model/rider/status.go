package rider

import (
	"fmt"

	"orderdispatch/internal/pkg/errs"
)

// Status is the operational state of a rider.
//
//	Offline <-> Online -> Busy -> OnDelivery
//	               ^________|_________|   (released on terminal order states)
//
// Busy and OnDelivery hold exactly one current assignment.
type Status int

const (
	Unknown Status = iota
	Offline
	Online
	Busy
	OnDelivery
)

var statusNames = map[Status]string{
	Offline:    "offline",
	Online:     "online",
	Busy:       "busy",
	OnDelivery: "on_delivery",
}

// ParseStatus converts a persisted status name into a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("rider status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("rider status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsEngaged reports whether the status implies a current assignment.
func (s Status) IsEngaged() bool {
	return s == Busy || s == OnDelivery
}
