// Package services holds the marketplace's use cases: accounts, the
// product catalog and the order lifecycle. Handlers translate HTTP into
// these calls; services own every authorization decision.
package services

import (
	"context"
	"math"

	"marketplace/apperror"
	"marketplace/models"
	"marketplace/store"
)

// Caller is the verified identity behind a request
type Caller struct {
	ID   string
	Role models.UserRole
	Name string
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	UserByID(ctx context.Context, id string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProductStore interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, owner string, page store.Page) ([]models.Product, int64, error)
}

type OrderStore interface {
	UserByID(ctx context.Context, id string) (*models.User, error)
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateOrder(ctx context.Context, order *models.Order, changedBy string) error
	OrderByID(ctx context.Context, id string, withDetails bool) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, changedBy string) (bool, error)
	DeleteOrder(ctx context.Context, id string, status models.OrderStatus) (bool, error)
	ListOrders(ctx context.Context, filter store.OrderFilter, page store.Page) ([]models.Order, int64, error)
	OrderTimeline(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

var (
	_ UserStore    = (*store.Store)(nil)
	_ ProductStore = (*store.Store)(nil)
	_ OrderStore   = (*store.Store)(nil)
)

// window converts a 1-based page number into an offset/limit pair. Pages
// whose offset would not fit in an int are rejected.
func window(page, size int) (int, store.Page, error) {
	if page < 1 {
		page = 1
	}
	if size > 0 && page-1 > math.MaxInt/size {
		return 0, store.Page{}, apperror.New(apperror.Validation, "Page out of range")
	}
	return page, store.Page{Offset: (page - 1) * size, Limit: size}, nil
}

// totalPages never reports fewer than one page, so clients can always render page 1
func totalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}
