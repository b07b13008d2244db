package commands_test

import (
	"testing"
	"time"

	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/ports"
	"orderdispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcceptOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)
	r := onlineRider(t, 1)
	require.NoError(t, newDispatcher().Bind(o, r, time.Now().UTC()))
	o.PullEvents()
	cmd, err := commands.NewAcceptOrderCommand(riderActor(r), o.ID())
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	uow := newUoW(orders, nil)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		orders.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = commands.NewAcceptOrderCommandHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.NotNil(t, o.Assignment().AcceptedAt)
	assert.Equal(t, order.Pending, o.Status())
	events := o.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, order.NotificationRiderAssigned, events[0].Notification.Type)
	uow.AssertExpectations(t)
}

func TestAcceptOrderCommandHandler_Handle_OtherRider(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)
	assigned := onlineRider(t, 1)
	require.NoError(t, newDispatcher().Bind(o, assigned, time.Now().UTC()))
	cmd, err := commands.NewAcceptOrderCommand(riderActor(onlineRider(t, 2)), o.ID())
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	uow := newUoW(orders, nil)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = commands.NewAcceptOrderCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Nil(t, o.Assignment().AcceptedAt)
}

func TestAcceptOrderCommandHandler_Handle_ConcurrentChange(t *testing.T) {
	ctx := t.Context()
	o := placedOrder(t)
	r := onlineRider(t, 1)
	require.NoError(t, newDispatcher().Bind(o, r, time.Now().UTC()))
	cmd, err := commands.NewAcceptOrderCommand(riderActor(r), o.ID())
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	uow := newUoW(orders, nil)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orders.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		orders.On("Update", ctx, o).Return(ports.ErrConcurrentModification).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = commands.NewAcceptOrderCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, ports.ErrConcurrentModification)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}
