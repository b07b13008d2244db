// Package http exposes the order and rider use cases over REST. Requests are
// authenticated with HS256 bearer tokens, authorized per role with casbin and
// validated against the embedded OpenAPI document.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/application/usecases/queries"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/domain/services"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// CommandHandler runs one state-changing use case.
type CommandHandler[C any] interface {
	Handle(ctx context.Context, cmd C) error
}

// QueryHandler runs one read use case.
type QueryHandler[Q, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Handlers groups the use cases the server exposes.
type Handlers struct {
	PlaceOrder           CommandHandler[commands.PlaceOrderCommand]
	UpdateOrderStatus    CommandHandler[commands.UpdateOrderStatusCommand]
	AssignRider          CommandHandler[commands.AssignRiderCommand]
	AcceptOrder          CommandHandler[commands.AcceptOrderCommand]
	RejectOrder          CommandHandler[commands.RejectOrderCommand]
	CancelOrder          CommandHandler[commands.CancelOrderCommand]
	RateOrder            CommandHandler[commands.RateOrderCommand]
	RegisterRider        CommandHandler[commands.RegisterRiderCommand]
	UpdateRiderLocation  CommandHandler[commands.UpdateRiderLocationCommand]
	SetRiderAvailability CommandHandler[commands.SetRiderAvailabilityCommand]

	GetOrder     QueryHandler[queries.GetOrderQuery, queries.OrderView]
	ListOrders   QueryHandler[queries.ListOrdersQuery, []queries.OrderSummaryView]
	NearbyOrders QueryHandler[queries.NearbyOrdersQuery, []queries.OrderSummaryView]
	GetRider     QueryHandler[queries.GetRiderQuery, queries.RiderView]
}

// Server coordinates between HTTP requests and application use cases.
type Server struct {
	handlers Handlers
	auth     *Authenticator
	authz    *Authorizer
	doc      *openapi3.T
}

// NewServer creates a server with the required handlers and security components.
func NewServer(handlers Handlers, auth *Authenticator, authz *Authorizer, doc *openapi3.T) *Server {
	return &Server{
		handlers: handlers,
		auth:     auth,
		authz:    authz,
		doc:      doc,
	}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) error {
	if err := registerSwaggerDoc(s.doc); err != nil {
		return err
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", s.auth.Middleware())
	can := s.authz.Require
	body := func(schema string) echo.MiddlewareFunc {
		return bodySchema(s.doc, schema)
	}

	api.POST("/orders", s.PlaceOrder, can("orders", "place"), body("PlaceOrderRequest"))
	api.GET("/orders", s.ListOrders, can("orders", "read"))
	api.GET("/orders/:orderId", s.GetOrder, can("orders", "read"))
	api.POST("/orders/:orderId/status", s.UpdateOrderStatus, can("orders", "status"), body("UpdateStatusRequest"))
	api.POST("/orders/:orderId/assign", s.AssignRider, can("orders", "assign"), body("AssignRequest"))
	api.POST("/orders/:orderId/accept", s.AcceptOrder, can("orders", "accept"))
	api.POST("/orders/:orderId/reject", s.RejectOrder, can("orders", "reject"), body("ReasonRequest"))
	api.POST("/orders/:orderId/cancel", s.CancelOrder, can("orders", "cancel"), body("ReasonRequest"))
	api.POST("/orders/:orderId/rating", s.RateOrder, can("orders", "rate"), body("RatingRequest"))

	api.POST("/riders", s.RegisterRider, can("riders", "register"), body("RegisterRiderRequest"))
	api.POST("/riders/me/location", s.UpdateRiderLocation, can("riders", "location"), body("LocationRequest"))
	api.POST("/riders/me/availability", s.SetRiderAvailability, can("riders", "availability"), body("AvailabilityRequest"))
	api.GET("/riders/me", s.GetRider, can("riders", "read"))
	api.GET("/riders/me/nearby-orders", s.NearbyOrders, can("orders", "nearby"))

	return nil
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var req PlaceOrderRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	vendorID, err := toKernelUUID(req.VendorID)
	if err != nil {
		return err
	}
	lines := make([]services.LineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := toKernelUUID(item.ProductID)
		if err != nil {
			return err
		}
		lines = append(lines, services.LineRequest{ProductID: productID, Quantity: item.Quantity})
	}
	dropOff, err := kernel.NewLocation(req.CustomerLocation.Lat, req.CustomerLocation.Lon, req.CustomerLocation.Address)
	if err != nil {
		return err
	}
	orderType := order.TypeRegular
	if req.OrderType != "" {
		orderType = order.Type(req.OrderType)
	}
	tip := decimal.Zero
	if req.Tip != nil {
		tip = *req.Tip
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewPlaceOrderCommand(orderID, actor, vendorID, orderType, lines, dropOff, tip, req.Notes)
	if err != nil {
		return err
	}
	if err = s.handlers.PlaceOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/api/v1/orders/"+orderID.String())
	return c.JSON(http.StatusCreated, Created{ID: orderID.Bytes()})
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var (
		status        string
		limit, offset int
	)
	params := c.QueryParams()
	if err = errors.Join(
		runtime.BindQueryParameter("form", true, false, "status", params, &status),
		runtime.BindQueryParameter("form", true, false, "limit", params, &limit),
		runtime.BindQueryParameter("form", true, false, "offset", params, &offset),
	); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}

	query, err := queries.NewListOrdersQuery(actor, status, limit, offset)
	if err != nil {
		return err
	}
	orders, err := s.handlers.ListOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderQuery(actor, orderID)
	if err != nil {
		return err
	}
	view, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// UpdateOrderStatus handles POST /api/v1/orders/{orderId}/status.
func (s *Server) UpdateOrderStatus(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}
	var req UpdateStatusRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}
	cmd, err := commands.NewUpdateOrderStatusCommand(actor, orderID, status, req.Note)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.UpdateOrderStatus.Handle(c.Request().Context(), cmd))
}

// AssignRider handles POST /api/v1/orders/{orderId}/assign. Without a
// riderId the best scoring rider is chosen.
func (s *Server) AssignRider(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}
	var req AssignRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	var cmd commands.AssignRiderCommand
	if req.RiderID != nil {
		riderID, err := toKernelUUID(*req.RiderID)
		if err != nil {
			return err
		}
		cmd, err = commands.NewManualAssignRiderCommand(actor, orderID, riderID)
		if err != nil {
			return err
		}
	} else {
		cmd, err = commands.NewAssignRiderCommand(actor, orderID)
		if err != nil {
			return err
		}
	}
	return s.noContent(c, s.handlers.AssignRider.Handle(c.Request().Context(), cmd))
}

// AcceptOrder handles POST /api/v1/orders/{orderId}/accept.
func (s *Server) AcceptOrder(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAcceptOrderCommand(actor, orderID)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.AcceptOrder.Handle(c.Request().Context(), cmd))
}

// RejectOrder handles POST /api/v1/orders/{orderId}/reject.
func (s *Server) RejectOrder(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}
	var req ReasonRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewRejectOrderCommand(actor, orderID, req.Reason)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.RejectOrder.Handle(c.Request().Context(), cmd))
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}
	var req ReasonRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewCancelOrderCommand(actor, orderID, req.Reason)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.CancelOrder.Handle(c.Request().Context(), cmd))
}

// RateOrder handles POST /api/v1/orders/{orderId}/rating.
func (s *Server) RateOrder(c echo.Context) error {
	actor, orderID, err := actorAndOrder(c)
	if err != nil {
		return err
	}
	var req RatingRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewRateOrderCommand(actor, orderID, req.Score, req.Comment)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.RateOrder.Handle(c.Request().Context(), cmd))
}

// RegisterRider handles POST /api/v1/riders.
func (s *Server) RegisterRider(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var req RegisterRiderRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	userID, err := toKernelUUID(req.UserID)
	if err != nil {
		return err
	}
	preferences := rider.Preferences{
		IsAvailable:    true,
		PreferredAreas: req.PreferredAreas,
		MaxDistanceKm:  req.MaxDistanceKm,
	}
	if req.WorkingHours != nil {
		preferences.WorkingHours = &rider.WorkingHours{
			StartMinute: req.WorkingHours.StartMinute,
			EndMinute:   req.WorkingHours.EndMinute,
		}
	}
	profile := rider.Profile{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		LicensePlate: req.LicensePlate,
		VehicleType:  req.VehicleType,
	}

	cmd, err := commands.NewRegisterRiderCommand(actor, userID, profile, preferences, req.Approve)
	if err != nil {
		return err
	}
	if err = s.handlers.RegisterRider.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, Created{ID: req.UserID})
}

// UpdateRiderLocation handles POST /api/v1/riders/me/location.
func (s *Server) UpdateRiderLocation(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var req LocationRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	location, err := kernel.NewLocation(req.Lat, req.Lon, req.Address)
	if err != nil {
		return err
	}
	var recordedAt time.Time
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}

	cmd, err := commands.NewUpdateRiderLocationCommand(actor, location, recordedAt)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.UpdateRiderLocation.Handle(c.Request().Context(), cmd))
}

// SetRiderAvailability handles POST /api/v1/riders/me/availability.
func (s *Server) SetRiderAvailability(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}
	var req AvailabilityRequest
	if err = c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewSetRiderAvailabilityCommand(actor, req.Online)
	if err != nil {
		return err
	}
	return s.noContent(c, s.handlers.SetRiderAvailability.Handle(c.Request().Context(), cmd))
}

// GetRider handles GET /api/v1/riders/me.
func (s *Server) GetRider(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetRiderQuery(actor)
	if err != nil {
		return err
	}
	view, err := s.handlers.GetRider.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// NearbyOrders handles GET /api/v1/riders/me/nearby-orders.
func (s *Server) NearbyOrders(c echo.Context) error {
	actor, err := mustActor(c)
	if err != nil {
		return err
	}

	var (
		radiusKm float64
		limit    int
	)
	params := c.QueryParams()
	if err = errors.Join(
		runtime.BindQueryParameter("form", true, false, "radiusKm", params, &radiusKm),
		runtime.BindQueryParameter("form", true, false, "limit", params, &limit),
	); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters: "+err.Error())
	}

	query, err := queries.NewNearbyOrdersQuery(actor, radiusKm, limit)
	if err != nil {
		return err
	}
	orders, err := s.handlers.NearbyOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

func (s *Server) noContent(c echo.Context, err error) error {
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func mustActor(c echo.Context) (kernel.Actor, error) {
	actor, ok := actorFrom(c)
	if !ok {
		return kernel.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
	}
	return actor, nil
}

func actorAndOrder(c echo.Context) (kernel.Actor, kernel.UUID, error) {
	actor, err := mustActor(c)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}

	var id uuid.UUID
	err = runtime.BindStyledParameterWithOptions("simple", "orderId", c.Param("orderId"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, "Invalid format for parameter orderId")
	}

	orderID, err := toKernelUUID(id)
	if err != nil {
		return kernel.Actor{}, kernel.UUID{}, err
	}
	return actor, orderID, nil
}

func toKernelUUID(id uuid.UUID) (kernel.UUID, error) {
	return kernel.UUIDFromBytes(id[:])
}
