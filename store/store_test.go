package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/store"
	"marketplace/store/storetest"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()

	first := &models.User{Name: "a", Email: "dup@example.com", PasswordHash: "h", Role: models.RoleCustomer}
	require.NoError(t, s.CreateUser(ctx, first))
	assert.NotEmpty(t, first.ID)

	second := &models.User{Name: "b", Email: "dup@example.com", PasswordHash: "h", Role: models.RoleDelivery}
	err := s.CreateUser(ctx, second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUserLookups(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	user := storetest.User(t, s, "carol", models.RoleCustomer)

	byID, err := s.UserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", byID.Email)

	byEmail, err := s.UserByEmail(ctx, "carol@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = s.UserByID(ctx, "missing")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListProductsScopedAndPaged(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	d1 := storetest.User(t, s, "d1", models.RoleDelivery)
	d2 := storetest.User(t, s, "d2", models.RoleDelivery)
	for i := 0; i < 3; i++ {
		storetest.Product(t, s, d1, "p", "fruit", 1)
	}
	storetest.Product(t, s, d2, "q", "tools", 2)

	all, total, err := s.ListProducts(ctx, "", store.Page{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 2)

	own, total, err := s.ListProducts(ctx, d2.ID, store.Page{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, d2.ID, own[0].CreatedBy)

	categories, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fruit", "tools"}, categories)

	inTools, err := s.ProductsInCategories(ctx, []string{"tools"}, 5)
	require.NoError(t, err)
	require.Len(t, inTools, 1)
	assert.Equal(t, "q", inTools[0].Name)
}

func TestOrderStatusConditionalUpdate(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	c := storetest.User(t, s, "c", models.RoleCustomer)
	d := storetest.User(t, s, "d", models.RoleDelivery)
	p := storetest.Product(t, s, d, "p", "", 3)

	order := &models.Order{CustomerID: c.ID, DeliveryPartnerID: d.ID, ProductID: p.ID, Quantity: 1, Location: "X", Status: models.StatusPending}
	require.NoError(t, s.CreateOrder(ctx, order, c.ID))

	applied, err := s.UpdateOrderStatus(ctx, order.ID, models.StatusPending, models.StatusAccepted, d.ID)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.UpdateOrderStatus(ctx, order.ID, models.StatusPending, models.StatusAccepted, d.ID)
	require.NoError(t, err)
	assert.False(t, applied, "stale from-status must not apply")

	timeline, err := s.OrderTimeline(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, models.StatusPending, timeline[0].ToStatus)
	assert.Equal(t, models.StatusAccepted, timeline[1].ToStatus)

	loaded, err := s.OrderByID(ctx, order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, loaded.Status)
	require.NotNil(t, loaded.Customer)
	require.NotNil(t, loaded.Product)
	assert.Equal(t, "c", loaded.Customer.Name)
}

func TestDeleteOrderOnlyInStatus(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	c := storetest.User(t, s, "c", models.RoleCustomer)
	d := storetest.User(t, s, "d", models.RoleDelivery)
	p := storetest.Product(t, s, d, "p", "", 3)
	order := &models.Order{CustomerID: c.ID, DeliveryPartnerID: d.ID, ProductID: p.ID, Quantity: 1, Location: "X", Status: models.StatusAccepted}
	require.NoError(t, s.CreateOrder(ctx, order, c.ID))

	deleted, err := s.DeleteOrder(ctx, order.ID, models.StatusPending)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteOrder(ctx, order.ID, models.StatusAccepted)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.OrderByID(ctx, order.ID, false)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
	timeline, err := s.OrderTimeline(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestListOrdersFilters(t *testing.T) {
	s := storetest.New(t)
	ctx := context.Background()
	c := storetest.User(t, s, "c", models.RoleCustomer)
	d := storetest.User(t, s, "d", models.RoleDelivery)
	p := storetest.Product(t, s, d, "p", "", 3)
	for _, st := range []models.OrderStatus{models.StatusPending, models.StatusAccepted, models.StatusDelivered} {
		require.NoError(t, s.CreateOrder(ctx, &models.Order{
			CustomerID: c.ID, DeliveryPartnerID: d.ID, ProductID: p.ID, Quantity: 1, Location: "X", Status: st,
		}, c.ID))
	}

	open, total, err := s.ListOrders(ctx, store.OrderFilter{CustomerID: c.ID, ExcludeStatus: models.StatusDelivered}, store.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, open, 2)
	require.NotNil(t, open[0].Product)

	delivered, _, err := s.ListOrders(ctx, store.OrderFilter{DeliveryPartnerID: d.ID, Status: models.StatusDelivered}, store.Page{})
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, models.StatusDelivered, delivered[0].Status)
}
