package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	httpadapter "orderdispatch/internal/adapters/in/http"
	"orderdispatch/internal/adapters/out/eventbus"
	"orderdispatch/internal/adapters/out/kafka"
	"orderdispatch/internal/adapters/out/notifications"
	"orderdispatch/internal/adapters/out/postgres"
	"orderdispatch/internal/adapters/out/postgres/orderrepo"
	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/application/usecases/queries"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	bus        *eventbus.Bus
	producer   *kafka.OrderEventProducer
	uowFactory *postgres.GormUnitOfWorkFactory

	pricing    services.PricingCalculator
	eta        services.ETAEstimator
	dispatcher services.OrderDispatcher
	ledger     services.EarningsLedger
}

// NewCompositionRoot wires the domain services, the event bus subscribers
// and the unit of work factory. Kafka publishing is enabled when KafkaHost is set.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) *CompositionRoot {
	bus := eventbus.New(logger)
	bus.Subscribe("notifications", notifications.NewRecorder(orderrepo.NewGormNotificationStore(gormDB)))

	var producer *kafka.OrderEventProducer
	if config.KafkaHost != "" {
		producer = kafka.NewOrderEventProducer(config.KafkaHost, config.KafkaOrderChangedTopic, logger)
		bus.Subscribe("kafka", producer)
	}

	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		logger:     logger,
		bus:        bus,
		producer:   producer,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, bus),
		pricing:    services.NewPricingCalculator(config.Pricing),
		eta:        services.NewETAEstimator(config.ETA),
		dispatcher: services.NewOrderDispatcher(
			services.NewWeightedScorer(config.Weights, config.Dispatch.RadiusKm),
			config.Dispatch,
		),
		ledger: services.NewEarningsLedger(config.Earnings),
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) riderUoW() commands.RiderUoWFactory {
	return FuncRiderUoWFactory(func() commands.RiderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) placeOrderUoW() commands.PlaceOrderUoWFactory {
	return FuncPlaceOrderUoWFactory(func() commands.PlaceOrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.placeOrderUoW(), c.pricing, c.eta)
}

func (c *CompositionRoot) CreateUpdateOrderStatusCommandHandler() commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(c.uow(), c.ledger)
}

func (c *CompositionRoot) CreateAssignRiderCommandHandler() commands.AssignRiderCommandHandler {
	return commands.NewAssignRiderCommandHandler(c.uow(), c.dispatcher)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoW())
}

func (c *CompositionRoot) CreateRejectOrderCommandHandler() commands.RejectOrderCommandHandler {
	return commands.NewRejectOrderCommandHandler(c.uow(), c.dispatcher)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.uow(), c.ledger)
}

func (c *CompositionRoot) CreateRateOrderCommandHandler() commands.RateOrderCommandHandler {
	return commands.NewRateOrderCommandHandler(c.uow(), c.ledger)
}

func (c *CompositionRoot) CreateRegisterRiderCommandHandler() commands.RegisterRiderCommandHandler {
	return commands.NewRegisterRiderCommandHandler(c.riderUoW())
}

func (c *CompositionRoot) CreateUpdateRiderLocationCommandHandler() commands.UpdateRiderLocationCommandHandler {
	return commands.NewUpdateRiderLocationCommandHandler(c.uow(), c.eta)
}

func (c *CompositionRoot) CreateSetRiderAvailabilityCommandHandler() commands.SetRiderAvailabilityCommandHandler {
	return commands.NewSetRiderAvailabilityCommandHandler(c.riderUoW())
}

func (c *CompositionRoot) CreateDispatchPendingOrdersCommandHandler() commands.DispatchPendingOrdersCommandHandler {
	return commands.NewDispatchPendingOrdersCommandHandler(c.orderUoW(), c.CreateAssignRiderCommandHandler())
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateNearbyOrdersQueryHandler() queries.NearbyOrdersQueryHandler {
	return queries.NewNearbyOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRiderQueryHandler() queries.GetRiderQueryHandler {
	return queries.NewGetRiderQueryHandler(c.gormDB)
}

// CreateJobManager builds the scheduled jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateDispatchPendingOrdersCommandHandler(),
		c.config.DispatchSchedule,
		c.config.DispatchBatch,
		c.logger,
	)
}

// CreateHTTPServer builds the REST adapter with authentication, the role
// policy and the embedded OpenAPI document.
func (c *CompositionRoot) CreateHTTPServer(ctx context.Context) (*httpadapter.Server, error) {
	auth, err := httpadapter.NewAuthenticator(c.config.JWTSecret)
	if err != nil {
		return nil, err
	}

	policy := httpadapter.DefaultPolicy
	if c.config.AuthPolicyFile != "" {
		raw, err := os.ReadFile(c.config.AuthPolicyFile)
		if err != nil {
			return nil, fmt.Errorf("read auth policy: %w", err)
		}
		policy = string(raw)
	}
	authz, err := httpadapter.NewAuthorizer(policy)
	if err != nil {
		return nil, err
	}

	doc, err := httpadapter.LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	return httpadapter.NewServer(httpadapter.Handlers{
		PlaceOrder:           c.CreatePlaceOrderCommandHandler(),
		UpdateOrderStatus:    c.CreateUpdateOrderStatusCommandHandler(),
		AssignRider:          c.CreateAssignRiderCommandHandler(),
		AcceptOrder:          c.CreateAcceptOrderCommandHandler(),
		RejectOrder:          c.CreateRejectOrderCommandHandler(),
		CancelOrder:          c.CreateCancelOrderCommandHandler(),
		RateOrder:            c.CreateRateOrderCommandHandler(),
		RegisterRider:        c.CreateRegisterRiderCommandHandler(),
		UpdateRiderLocation:  c.CreateUpdateRiderLocationCommandHandler(),
		SetRiderAvailability: c.CreateSetRiderAvailabilityCommandHandler(),
		GetOrder:             c.CreateGetOrderQueryHandler(),
		ListOrders:           c.CreateListOrdersQueryHandler(),
		NearbyOrders:         c.CreateNearbyOrdersQueryHandler(),
		GetRider:             c.CreateGetRiderQueryHandler(),
	}, auth, authz, doc), nil
}

// Close releases the Kafka writer.
func (c *CompositionRoot) Close() error {
	if c.producer == nil {
		return nil
	}
	return c.producer.Close()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncRiderUoWFactory func() commands.RiderUoW

func (f FuncRiderUoWFactory) Create() commands.RiderUoW {
	return f()
}

type FuncPlaceOrderUoWFactory func() commands.PlaceOrderUoW

func (f FuncPlaceOrderUoWFactory) Create() commands.PlaceOrderUoW {
	return f()
}
