package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const actorContextKey = "actor"

// Claims carried by access tokens. The subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator turns a Bearer token into a kernel.Actor.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	return &Authenticator{secret: []byte(secret)}, nil
}

// Issue signs a token for actor valid for ttl.
func (a *Authenticator) Issue(actor kernel.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: actor.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates the token and returns the actor it names.
func (a *Authenticator) Parse(token string) (kernel.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return kernel.Actor{}, err
	}

	userID, err := kernel.UUIDFromString(claims.Subject)
	if err != nil {
		return kernel.Actor{}, fmt.Errorf("subject: %w", err)
	}
	role, err := kernel.ParseRole(claims.Role)
	if err != nil {
		return kernel.Actor{}, err
	}
	if role == kernel.RoleSystem {
		return kernel.Actor{}, errors.New("system role cannot be used by clients")
	}
	return kernel.Actor{UserID: userID, Role: role}, nil
}

// Middleware rejects requests without a valid Bearer token and stores the
// actor on the echo context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			actor, err := a.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) (kernel.Actor, bool) {
	actor, ok := c.Get(actorContextKey).(kernel.Actor)
	return actor, ok
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// DefaultPolicy lists which role may run which operation.
const DefaultPolicy = `
p, customer, orders, place
p, customer, orders, read
p, customer, orders, cancel
p, customer, orders, rate
p, vendor, orders, read
p, vendor, orders, status
p, vendor, orders, assign
p, vendor, orders, cancel
p, rider, orders, read
p, rider, orders, status
p, rider, orders, accept
p, rider, orders, reject
p, rider, orders, nearby
p, rider, riders, read
p, rider, riders, location
p, rider, riders, availability
p, admin, orders, read
p, admin, orders, status
p, admin, orders, assign
p, admin, orders, cancel
p, admin, riders, register
`

// Authorizer checks role permissions with a casbin enforcer.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer builds an enforcer from CSV policy lines.
func NewAuthorizer(policy string) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}

	lines := make([]string, 0)
	for _, line := range strings.Split(policy, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	enforcer, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(strings.Join(lines, "\n")))
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed reports whether role may perform act on obj.
func (a *Authorizer) Allowed(role kernel.Role, obj, act string) (bool, error) {
	return a.enforcer.Enforce(role.String(), obj, act)
}

// Require returns a middleware answering 403 unless the actor's role may
// perform act on obj. It must run after Authenticator.Middleware.
func (a *Authorizer) Require(obj, act string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := actorFrom(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			allowed, err := a.Allowed(actor.Role, obj, act)
			if err != nil {
				return fmt.Errorf("authorization check: %w", err)
			}
			if !allowed {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}
