package commands_test

import (
	"testing"

	"orderdispatch/internal/core/application/usecases/commands"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/services"
	"orderdispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlaceOrderCommand_ValidInput(t *testing.T) {
	id := kernel.NewUUID()
	customer := customerActor()
	vendorID := kernel.NewUUID()
	lines := []services.LineRequest{{ProductID: kernel.NewUUID(), Quantity: 2}}
	dropOff := north(t, vendorPoint(t), 2)

	cmd, err := commands.NewPlaceOrderCommand(id, customer, vendorID, order.TypeTmart, lines, dropOff, decimal.NewFromInt(15), "  gate 3  ")

	require.NoError(t, err)
	assert.Equal(t, id, cmd.OrderID())
	assert.Equal(t, customer, cmd.Customer())
	assert.Equal(t, vendorID, cmd.VendorID())
	assert.Equal(t, order.TypeTmart, cmd.Type())
	assert.Equal(t, lines, cmd.Lines())
	assert.Equal(t, dropOff, cmd.DropOff())
	assert.True(t, cmd.Tip().Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "gate 3", cmd.Notes())
}

func TestNewPlaceOrderCommand_InvalidInput(t *testing.T) {
	lines := []services.LineRequest{{ProductID: kernel.NewUUID(), Quantity: 1}}
	dropOff := vendorPoint(t)

	t.Run("only customers", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), adminActor(), kernel.NewUUID(),
			order.TypeRegular, lines, dropOff, decimal.Zero, "")
		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("empty basket", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), customerActor(), kernel.NewUUID(),
			order.TypeRegular, nil, dropOff, decimal.Zero, "")
		require.ErrorIs(t, err, order.ErrItemsAreRequired)
	})

	t.Run("negative tip", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), customerActor(), kernel.NewUUID(),
			order.TypeRegular, lines, dropOff, decimal.NewFromInt(-5), "")
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("missing drop-off", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.NewUUID(), customerActor(), kernel.NewUUID(),
			order.TypeRegular, lines, kernel.Location{}, decimal.Zero, "")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero order id", func(t *testing.T) {
		_, err := commands.NewPlaceOrderCommand(kernel.UUID{}, customerActor(), kernel.NewUUID(),
			order.TypeRegular, lines, dropOff, decimal.Zero, "")
		require.Error(t, err)
	})
}

func TestNewAssignRiderCommand(t *testing.T) {
	orderID := kernel.NewUUID()

	cmd, err := commands.NewAssignRiderCommand(kernel.SystemActor(), orderID)
	require.NoError(t, err)
	assert.False(t, cmd.IsManual())
	assert.Nil(t, cmd.RiderID())

	riderID := kernel.NewUUID()
	manual, err := commands.NewManualAssignRiderCommand(adminActor(), orderID, riderID)
	require.NoError(t, err)
	assert.True(t, manual.IsManual())
	assert.Equal(t, riderID, *manual.RiderID())

	_, err = commands.NewAssignRiderCommand(customerActor(), orderID)
	require.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestRiderOnlyCommands(t *testing.T) {
	orderID := kernel.NewUUID()
	customer := customerActor()

	_, err := commands.NewAcceptOrderCommand(customer, orderID)
	require.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = commands.NewRejectOrderCommand(customer, orderID, "no thanks")
	require.ErrorIs(t, err, errs.ErrAccessDenied)

	_, err = commands.NewSetRiderAvailabilityCommand(customer, true)
	require.ErrorIs(t, err, errs.ErrAccessDenied)
}

func TestNewRateOrderCommand_ScoreRange(t *testing.T) {
	for _, score := range []int{0, 6} {
		_, err := commands.NewRateOrderCommand(customerActor(), kernel.NewUUID(), score, "")
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange, "score %d", score)
	}

	cmd, err := commands.NewRateOrderCommand(customerActor(), kernel.NewUUID(), 5, "great")
	require.NoError(t, err)
	assert.Equal(t, 5, cmd.Score())
}

func TestCommandsMustBeConstructed(t *testing.T) {
	require.ErrorIs(t, commands.AcceptOrderCommand{}.Validate(), commands.ErrAcceptOrderCommandIsNotConstructed)
	require.ErrorIs(t, commands.AssignRiderCommand{}.Validate(), commands.ErrAssignRiderCommandIsNotConstructed)
	require.ErrorIs(t, commands.RejectOrderCommand{}.Validate(), commands.ErrRejectOrderCommandIsNotConstructed)
	require.ErrorIs(t, commands.RateOrderCommand{}.Validate(), commands.ErrRateOrderCommandIsNotConstructed)
	require.ErrorIs(t, commands.UpdateOrderStatusCommand{}.Validate(), commands.ErrUpdateOrderStatusCommandIsNotConstructed)
	require.ErrorIs(t, commands.UpdateRiderLocationCommand{}.Validate(), commands.ErrUpdateRiderLocationCommandIsNotConstructed)
	require.ErrorIs(t, commands.DispatchPendingOrdersCommand{}.Validate(), commands.ErrDispatchPendingOrdersCommandIsNotConstructed)
}
