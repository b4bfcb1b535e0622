// Package storetest opens an isolated in-memory store for tests.
package storetest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"marketplace/config"
	"marketplace/models"
	"marketplace/store"
)

// New returns a migrated store backed by a private in-memory SQLite database
func New(t testing.TB) *store.Store {
	t.Helper()
	db, err := config.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise see its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return store.New(db)
}

// Seed helpers insert fixtures directly, bypassing services.

func User(t testing.TB, s *store.Store, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, s.DB().Create(user).Error)
	return user
}

func Product(t testing.TB, s *store.Store, owner *models.User, name, category string, price float64) *models.Product {
	t.Helper()
	product := &models.Product{Name: name, Category: category, Price: price, CreatedBy: owner.ID}
	require.NoError(t, s.DB().Create(product).Error)
	return product
}
