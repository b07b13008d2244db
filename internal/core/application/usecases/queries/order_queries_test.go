package queries_test

import (
	"testing"

	"orderdispatch/internal/core/application/usecases/queries"
	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func riderActor() kernel.Actor {
	return kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleRider}
}

func TestNewGetOrderQuery(t *testing.T) {
	actor := kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleCustomer}
	orderID := kernel.NewUUID()

	query, err := queries.NewGetOrderQuery(actor, orderID)

	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.True(t, query.OrderID().IsEqual(orderID))
	assert.Equal(t, actor, query.Actor())

	_, err = queries.NewGetOrderQuery(actor, kernel.UUID{})
	require.Error(t, err)
}

func TestGetOrderQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
}

func TestNewListOrdersQuery(t *testing.T) {
	actor := kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleAdmin}

	t.Run("defaults", func(t *testing.T) {
		query, err := queries.NewListOrdersQuery(actor, "", 0, 0)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Nil(t, query.Status())
		assert.Equal(t, queries.DefaultPageSize, query.Limit())
		assert.Equal(t, 0, query.Offset())
	})

	t.Run("status filter", func(t *testing.T) {
		query, err := queries.NewListOrdersQuery(actor, "on_the_way", 5, 10)

		require.NoError(t, err)
		require.NotNil(t, query.Status())
		assert.Equal(t, order.OnTheWay, *query.Status())
		assert.Equal(t, 5, query.Limit())
		assert.Equal(t, 10, query.Offset())
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(actor, "lost", 10, 0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = queries.NewListOrdersQuery(actor, "", queries.MaxPageSize+1, 0)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = queries.NewListOrdersQuery(actor, "", 10, -1)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestListOrdersQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.ListOrdersQuery{}
	assert.ErrorIs(t, query.Validate(), queries.ErrListOrdersQueryIsNotConstructed)
}

func TestNewNearbyOrdersQuery(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		query, err := queries.NewNearbyOrdersQuery(riderActor(), 0, 0)

		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.InDelta(t, queries.DefaultNearbyRadiusKm, query.RadiusKm(), 1e-9)
		assert.Equal(t, queries.DefaultPageSize, query.Limit())
	})

	t.Run("only riders", func(t *testing.T) {
		customer := kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleCustomer}

		_, err := queries.NewNearbyOrdersQuery(customer, 3, 10)

		require.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("radius bounds", func(t *testing.T) {
		_, err := queries.NewNearbyOrdersQuery(riderActor(), queries.MaxNearbyRadiusKm+0.5, 10)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		_, err = queries.NewNearbyOrdersQuery(riderActor(), -1, 10)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

		query, err := queries.NewNearbyOrdersQuery(riderActor(), queries.MaxNearbyRadiusKm, 10)
		require.NoError(t, err)
		assert.InDelta(t, queries.MaxNearbyRadiusKm, query.RadiusKm(), 1e-9)
	})
}

func TestNearbyOrdersQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.NearbyOrdersQuery{}
	assert.ErrorIs(t, query.Validate(), queries.ErrNearbyOrdersQueryIsNotConstructed)
}

func TestNewGetRiderQuery(t *testing.T) {
	query, err := queries.NewGetRiderQuery(riderActor())
	require.NoError(t, err)
	require.NoError(t, query.Validate())

	_, err = queries.NewGetRiderQuery(kernel.Actor{UserID: kernel.NewUUID(), Role: kernel.RoleCustomer})
	assert.ErrorIs(t, err, errs.ErrAccessDenied)

	assert.ErrorIs(t, queries.GetRiderQuery{}.Validate(), queries.ErrGetRiderQueryIsNotConstructed)
}
