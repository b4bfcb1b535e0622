package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/services"
	"marketplace/store/storetest"
)

func TestCatalogScopesByRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := storetest.User(t, f.store, "c", models.RoleCustomer)
	d1 := storetest.User(t, f.store, "d1", models.RoleDelivery)
	d2 := storetest.User(t, f.store, "d2", models.RoleDelivery)

	_, err := f.catalog.Create(ctx, callerOf(d1), services.CreateProductInput{Name: "a", Price: 1})
	require.NoError(t, err)
	_, err = f.catalog.Create(ctx, callerOf(d1), services.CreateProductInput{Name: "b", Price: 1})
	require.NoError(t, err)
	own, err := f.catalog.Create(ctx, callerOf(d2), services.CreateProductInput{Name: "c", Price: 1, Category: " tools "})
	require.NoError(t, err)
	require.Len(t, own.Products, 1)
	assert.Equal(t, "tools", own.Products[0].Category)
	assert.Equal(t, d2.ID, own.Products[0].CreatedBy)

	all, err := f.catalog.List(ctx, callerOf(c), 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Len(t, all.Products, 2)
	assert.Equal(t, 2, all.TotalPages)

	second, err := f.catalog.List(ctx, callerOf(c), 2)
	require.NoError(t, err)
	assert.Len(t, second.Products, 1)

	mine, err := f.catalog.List(ctx, callerOf(d1), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Page)
	assert.EqualValues(t, 2, mine.Total)
	for _, p := range mine.Products {
		assert.Equal(t, d1.ID, p.CreatedBy)
	}
}

func TestCatalogCreateValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := storetest.User(t, f.store, "c", models.RoleCustomer)
	d := storetest.User(t, f.store, "d", models.RoleDelivery)

	_, err := f.catalog.Create(ctx, callerOf(c), services.CreateProductInput{Name: "a", Price: 1})
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	_, err = f.catalog.Create(ctx, callerOf(d), services.CreateProductInput{Price: 1})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	_, err = f.catalog.Create(ctx, callerOf(d), services.CreateProductInput{Name: "a", Price: -3})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))
}

func TestCatalogDeleteOwnerOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	d1 := storetest.User(t, f.store, "d1", models.RoleDelivery)
	d2 := storetest.User(t, f.store, "d2", models.RoleDelivery)
	p := storetest.Product(t, f.store, d1, "a", "", 1)
	storetest.Product(t, f.store, d1, "b", "", 1)

	_, err := f.catalog.Delete(ctx, callerOf(d2), p.ID)
	assert.Equal(t, apperror.Forbidden, apperror.KindOf(err))

	_, err = f.catalog.Delete(ctx, callerOf(d1), "missing")
	assert.Equal(t, apperror.NotFound, apperror.KindOf(err))

	_, err = f.catalog.Delete(ctx, callerOf(d1), "")
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	remaining, err := f.catalog.Delete(ctx, callerOf(d1), p.ID)
	require.NoError(t, err)
	require.Len(t, remaining.Products, 1)
	assert.Equal(t, "b", remaining.Products[0].Name)
}
