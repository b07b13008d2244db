package kernel

import (
	"errors"
	"fmt"
	"strings"

	"orderdispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// Role is the kind of party acting on an order.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
	// RoleSystem is used by background jobs (dispatch sweep).
	RoleSystem Role = "system"
)

// ParseRole converts a lower-case role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

// Validate returns a ValueIsInvalidError for unknown roles.
func (r Role) Validate() error {
	switch r {
	case RoleCustomer, RoleVendor, RoleRider, RoleAdmin, RoleSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", string(r)))
	}
}

func (r Role) String() string {
	return string(r)
}

// Actor identifies who performs an operation. For riders UserID is also the rider
// profile id.
type Actor struct {
	UserID UUID
	Role   Role
}

// NewActor validates both parts of the identity.
func NewActor(userID UUID, role Role) (Actor, error) {
	if err := errors.Join(userID.Validate(), role.Validate()); err != nil {
		return Actor{}, err
	}
	return Actor{UserID: userID, Role: role}, nil
}

// SystemActor returns the identity used by scheduled jobs.
func SystemActor() Actor {
	return Actor{UserID: systemUserID, Role: RoleSystem}
}

// Validate checks the user id and role.
func (a Actor) Validate() error {
	return errors.Join(a.UserID.Validate(), a.Role.Validate())
}

// Is reports whether the actor has the given role and user id.
func (a Actor) Is(role Role, userID UUID) bool {
	return a.Role == role && a.UserID.IsEqual(userID)
}

func (a Actor) String() string {
	return string(a.Role) + ":" + a.UserID.String()
}

var systemUserID = UUID{id: uuid.MustParse("ffffffff-ffff-4fff-bfff-ffffffffffff")}
