package commands_test

import (
	"testing"

	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStatusHandler(factory commands.UoWFactory) commands.UpdateOrderStatusCommandHandler {
	return commands.NewUpdateOrderStatusCommandHandler(
		factory,
		services.NewEarningsLedger(services.DefaultEarningsPolicy()),
	)
}

func TestUpdateOrderStatusCommandHandler_Handle_VendorAccepts(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(vendorActor(o), o.ID(), order.Accepted, "")
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	riders := new(MockRiderRepository)
	uow := newUoW(orders, riders)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = newStatusHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Accepted, o.Status())
	history := o.History()
	assert.Equal(t, order.Accepted, history[len(history)-1].Status)
	riders.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_PickupStartsDelivery(t *testing.T) {
	ctx := t.Context()
	placed := placedOrder(t)
	r := busyRider(t, placed.ID(), rider.Busy)
	o := withStatus(t, placed, order.ReadyForPickup, r)
	cmd, err := commands.NewUpdateOrderStatusCommand(riderActor(r), o.ID(), order.PickedUp, "")
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	riders := new(MockRiderRepository)
	uow := newUoW(orders, riders)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		riders.On("Get", ctx, r.ID()).Return(r, nil).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		riders.On("Update", ctx, r).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = newStatusHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.PickedUp, o.Status())
	assert.NotNil(t, o.Schedule().ActualPickupTime)
	assert.Equal(t, rider.OnDelivery, r.Status())
	riders.AssertExpectations(t)
}

func TestUpdateOrderStatusCommandHandler_Handle_DeliverySettlesEarnings(t *testing.T) {
	ctx := t.Context()
	placed := placedOrder(t)
	r := busyRider(t, placed.ID(), rider.OnDelivery)
	o := withStatus(t, placed, order.OnTheWay, r)
	cmd, err := commands.NewUpdateOrderStatusCommand(riderActor(r), o.ID(), order.Delivered, "left at the door")
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	riders := new(MockRiderRepository)
	uow := newUoW(orders, riders)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		riders.On("Get", ctx, r.ID()).Return(r, nil).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		riders.On("Update", ctx, r).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = newStatusHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Delivered, o.Status())
	require.NotNil(t, o.SettledAt())
	require.NotNil(t, o.RiderEarnings())
	// 3 km is below the bonus threshold: base 50 plus the 20 tip
	assert.True(t, o.RiderEarnings().Equal(decimal.NewFromInt(70)), o.RiderEarnings().String())
	assert.True(t, r.Earnings().Total.Equal(decimal.NewFromInt(70)))
	assert.Equal(t, 1, r.Performance().CompletedDeliveries)
	assert.Equal(t, rider.Online, r.Status())
	assert.Nil(t, r.CurrentAssignment())
}

func TestUpdateOrderStatusCommandHandler_Handle_IllegalTransition(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)
	cmd, err := commands.NewUpdateOrderStatusCommand(vendorActor(o), o.ID(), order.Delivered, "")
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	uow := newUoW(orders, new(MockRiderRepository))

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = newStatusHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrIllegalTransition)
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Equal(t, order.Pending, o.Status())
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateOrderStatusCommandHandler_Handle_HiddenFromOtherVendors(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)
	other := kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleVendor}
	cmd, err := commands.NewUpdateOrderStatusCommand(other, o.ID(), order.Accepted, "")
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	uow := newUoW(orders, nil)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = newStatusHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}
