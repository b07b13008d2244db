package commands_test

import (
	"errors"
	"testing"

	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
	"orderdispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDispatchPendingOrdersCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	served := placedOrder(t)
	starved := placedOrder(t)
	broken := placedOrder(t)
	r := onlineRider(t, 1)
	cmd, err := commands.NewDispatchPendingOrdersCommand(10)
	require.NoError(t, err)

	listOrders := new(MockOrderRepository)
	listUoW := newUoW(listOrders, nil)
	mock.InOrder(
		listUoW.On("Begin", ctx).Return(nil).Once(),
		listOrders.On("FindUnassignedActive", ctx, 10).Return([]*order.Order{served, starved, broken}, nil).Once(),
		listUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	listFactory := new(MockOrderUoWFactory)
	listFactory.On("Create").Return(listUoW).Once()

	servedOrders, servedRiders := new(MockOrderRepository), new(MockRiderRepository)
	servedUoW := newUoW(servedOrders, servedRiders)
	mock.InOrder(
		servedUoW.On("Begin", ctx).Return(nil).Once(),
		servedOrders.On("Get", ctx, served.ID()).Return(served, nil).Once(),
		servedRiders.On("FindCandidates", ctx, served.PickupLocation(), 5.0, 20).Return([]*rider.Rider{r}, nil).Once(),
		servedOrders.On("Update", ctx, served).Return(nil).Once(),
		servedRiders.On("Update", ctx, r).Return(nil).Once(),
		servedUoW.On("Commit", ctx).Return(nil).Once(),
		servedUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	starvedOrders, starvedRiders := new(MockOrderRepository), new(MockRiderRepository)
	starvedUoW := newUoW(starvedOrders, starvedRiders)
	mock.InOrder(
		starvedUoW.On("Begin", ctx).Return(nil).Once(),
		starvedOrders.On("Get", ctx, starved.ID()).Return(starved, nil).Once(),
		starvedRiders.On("FindCandidates", ctx, starved.PickupLocation(), 5.0, 20).Return([]*rider.Rider{}, nil).Once(),
		starvedUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	brokenOrders := new(MockOrderRepository)
	brokenUoW := newUoW(brokenOrders, new(MockRiderRepository))
	mock.InOrder(
		brokenUoW.On("Begin", ctx).Return(nil).Once(),
		brokenOrders.On("Get", ctx, broken.ID()).Return(nil, errors.New("connection reset")).Once(),
		brokenUoW.On("Rollback", ctx).Return(nil).Once(),
	)

	assignFactory := new(MockUoWFactory)
	assignFactory.On("Create").Return(servedUoW).Once()
	assignFactory.On("Create").Return(starvedUoW).Once()
	assignFactory.On("Create").Return(brokenUoW).Once()

	handler := commands.NewDispatchPendingOrdersCommandHandler(listFactory, newAssignHandler(assignFactory))
	dispatched, err := handler.Handle(ctx, cmd)

	require.EqualError(t, err, "connection reset")
	assert.Equal(t, 1, dispatched)
	assert.True(t, served.IsAssignedTo(r.ID()))
	assert.Nil(t, starved.RiderID())
	listUoW.AssertExpectations(t)
	servedUoW.AssertExpectations(t)
	starvedUoW.AssertExpectations(t)
	brokenUoW.AssertExpectations(t)
	assignFactory.AssertExpectations(t)
}

func TestDispatchPendingOrdersCommandHandler_Handle_NothingPending(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewDispatchPendingOrdersCommand(5)
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	uow := newUoW(orders, nil)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("FindUnassignedActive", ctx, 5).Return([]*order.Order{}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	listFactory := new(MockOrderUoWFactory)
	listFactory.On("Create").Return(uow).Once()
	assignFactory := new(MockUoWFactory)

	dispatched, err := commands.NewDispatchPendingOrdersCommandHandler(listFactory, newAssignHandler(assignFactory)).
		Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Zero(t, dispatched)
	assignFactory.AssertNotCalled(t, "Create")
}

func TestNewDispatchPendingOrdersCommand_Limit(t *testing.T) {
	_, err := commands.NewDispatchPendingOrdersCommand(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
