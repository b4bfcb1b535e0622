package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"marketplace/models"
)

// OrderFilter narrows ListOrders. Zero fields do not filter.
type OrderFilter struct {
	CustomerID        string
	DeliveryPartnerID string
	Status            models.OrderStatus
	ExcludeStatus     models.OrderStatus
	OldestFirst       bool
}

// CreateOrder inserts an order together with its first history row
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, changedBy string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Customer", "Product").Create(order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  order.Status,
			ChangedBy: changedBy,
		}).Error
	})
	return errors.Wrap(err, "creating order")
}

// OrderByID loads an order; withDetails also attaches customer and product
func (s *Store) OrderByID(ctx context.Context, id string, withDetails bool) (*models.Order, error) {
	q := s.db.WithContext(ctx)
	if withDetails {
		q = q.Preload("Customer").Preload("Product")
	}
	var order models.Order
	if err := q.First(&order, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Order")
	}
	return &order, nil
}

// UpdateOrderStatus moves an order from one status to another only if it
// is still in from. It reports whether the row was changed.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, from, to models.OrderStatus, changedBy string) (bool, error) {
	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    id,
			FromStatus: from,
			ToStatus:   to,
			ChangedBy:  changedBy,
		}).Error
	})
	return applied, errors.Wrap(err, "updating order status")
}

// DeleteOrder removes an order and its history if it is still in status.
// It reports whether the order was removed.
func (s *Store) DeleteOrder(ctx context.Context, id string, status models.OrderStatus) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", id, status).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("order_id = ?", id).Delete(&models.OrderStatusHistory{}).Error
	})
	return deleted, errors.Wrap(err, "deleting order")
}

// ListOrders returns one page of matching orders with their product attached
func (s *Store) ListOrders(ctx context.Context, filter OrderFilter, page Page) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.DeliveryPartnerID != "" {
		q = q.Where("delivery_partner_id = ?", filter.DeliveryPartnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ExcludeStatus != "" {
		q = q.Where("status <> ?", filter.ExcludeStatus)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "counting orders")
	}

	order := "created_at desc"
	if filter.OldestFirst {
		order = "created_at asc"
	}
	orders := []models.Order{}
	if err := page.apply(q.Preload("Product").Order(order)).Find(&orders).Error; err != nil {
		return nil, 0, errors.Wrap(err, "listing orders")
	}
	return orders, total, nil
}

// OrderTimeline returns the status history of an order, oldest first
func (s *Store) OrderTimeline(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error) {
	history := []models.OrderStatusHistory{}
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id asc").
		Find(&history).Error
	return history, errors.Wrap(err, "loading order timeline")
}
