package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"orderdispatch/internal/adapters/out/notifications"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationStore struct {
	mock.Mock
}

func (m *MockNotificationStore) AppendNotifications(ctx context.Context, orderID kernel.UUID, list []order.Notification) error {
	args := m.Called(ctx, orderID, list)
	return args.Error(0)
}

func TestRecorder_Handle(t *testing.T) {
	ctx := context.Background()
	orderID := kernel.NewUUID()
	n := order.Notification{
		Type:      order.NotificationRiderAssigned,
		Recipient: kernel.RoleRider,
		Message:   "New delivery assigned",
		CreatedAt: time.Now().UTC(),
	}

	t.Run("appends the notification to its order", func(t *testing.T) {
		store := new(MockNotificationStore)
		store.On("AppendNotifications", ctx, orderID, []order.Notification{n}).Return(nil).Once()

		err := notifications.NewRecorder(store).Handle(ctx, order.Event{OrderID: orderID, Notification: n})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("returns store failures to the bus", func(t *testing.T) {
		store := new(MockNotificationStore)
		boom := errors.New("connection reset")
		store.On("AppendNotifications", ctx, orderID, mock.Anything).Return(boom).Once()

		err := notifications.NewRecorder(store).Handle(ctx, order.Event{OrderID: orderID, Notification: n})

		assert.ErrorIs(t, err, boom)
	})

	t.Run("skips events without a message", func(t *testing.T) {
		store := new(MockNotificationStore)

		err := notifications.NewRecorder(store).Handle(ctx, order.Event{OrderID: orderID})

		require.NoError(t, err)
		store.AssertNotCalled(t, "AppendNotifications", mock.Anything, mock.Anything, mock.Anything)
	})
}
