package services

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"marketplace/apperror"
	"marketplace/events"
	"marketplace/models"
	"marketplace/statemachine"
	"marketplace/store"
)

const publishTimeout = 5 * time.Second

// Orders is the order lifecycle manager. It derives the delivery partner,
// enforces the status machine and who may drive it, and announces every
// mutation to the counterparty's room.
//
// Events are emitted after the store commits and are at-most-once: a
// failed or lost publish is logged and the mutation stands.
type Orders struct {
	store     OrderStore
	publisher events.Publisher
	pageSize  int
}

// NewOrders builds the lifecycle manager; a nil publisher discards events
func NewOrders(s OrderStore, publisher events.Publisher, pageSize int) *Orders {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Orders{store: s, publisher: publisher, pageSize: pageSize}
}

type CreateOrderInput struct {
	ProductID string
	Quantity  int
	Location  string
}

// Create places an order for caller. The delivery partner is always the
// product's owner.
func (o *Orders) Create(ctx context.Context, caller Caller, in CreateOrderInput) (*models.Order, error) {
	if caller.Role != models.RoleCustomer {
		return nil, apperror.New(apperror.Forbidden, "Only customers can place orders")
	}
	location := strings.TrimSpace(in.Location)
	if in.ProductID == "" || location == "" || in.Quantity == 0 {
		return nil, apperror.New(apperror.Validation, "Missing fields")
	}
	if in.Quantity < 0 {
		return nil, apperror.New(apperror.Validation, "Quantity must be a positive integer")
	}

	product, err := o.store.ProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	partner, err := o.store.UserByID(ctx, product.CreatedBy)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(apperror.NotFound, "Delivery partner not found")
		}
		return nil, err
	}
	if partner.Role != models.RoleDelivery {
		return nil, apperror.New(apperror.NotFound, "Delivery partner not found")
	}

	order := &models.Order{
		CustomerID:        caller.ID,
		DeliveryPartnerID: partner.ID,
		ProductID:         product.ID,
		Quantity:          in.Quantity,
		Location:          location,
		Status:            models.StatusPending,
	}
	if err := o.store.CreateOrder(ctx, order, caller.ID); err != nil {
		return nil, err
	}
	order.Product = product

	o.emit(ctx, order.DeliveryPartnerID, events.NewOrder, order)
	return order, nil
}

// AdvanceStatus moves an order one step forward. Only the assigned
// delivery partner may do so. Asking for the status the order already has
// is a no-op that returns the order unchanged and emits nothing.
func (o *Orders) AdvanceStatus(ctx context.Context, caller Caller, orderID string, next models.OrderStatus) (*models.Order, error) {
	if orderID == "" {
		return nil, apperror.New(apperror.Validation, "Order ID is required")
	}
	if next == "" {
		return nil, apperror.New(apperror.Validation, "Order status is required")
	}
	if !next.Valid() {
		return nil, apperror.New(apperror.Validation, "Unknown order status "+string(next))
	}

	order, err := o.store.OrderByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	if order.DeliveryPartnerID != caller.ID {
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	if order.Status == next {
		return order, nil
	}
	if err := statemachine.CanTransition(order.Status, next, statemachine.ActorDelivery); err != nil {
		return nil, apperror.Wrap(apperror.InvalidTransition, err.Error(), err)
	}

	applied, err := o.store.UpdateOrderStatus(ctx, orderID, order.Status, next, caller.ID)
	if err != nil {
		return nil, err
	}
	current, err := o.store.OrderByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	if !applied {
		// another request moved the order between our read and write
		if current.Status == next {
			return current, nil
		}
		return nil, apperror.New(apperror.Conflict, "Order status changed concurrently, now "+string(current.Status))
	}

	o.emit(ctx, current.CustomerID, events.OrderUpdate, current)
	return current, nil
}

// Cancel removes a pending order. Only the customer who placed it may.
func (o *Orders) Cancel(ctx context.Context, caller Caller, orderID string) error {
	if orderID == "" {
		return apperror.New(apperror.Validation, "Order ID is required")
	}
	order, err := o.store.OrderByID(ctx, orderID, false)
	if err != nil {
		return err
	}
	if order.CustomerID != caller.ID {
		return apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	if !statemachine.CanCancel(order.Status) {
		return apperror.New(apperror.InvalidTransition, "Only pending orders can be cancelled, order is "+string(order.Status))
	}

	deleted, err := o.store.DeleteOrder(ctx, orderID, order.Status)
	if err != nil {
		return err
	}
	if !deleted {
		current, err := o.store.OrderByID(ctx, orderID, false)
		if err != nil {
			return err
		}
		return apperror.New(apperror.InvalidTransition, "Only pending orders can be cancelled, order is "+string(current.Status))
	}

	o.emit(ctx, order.DeliveryPartnerID, events.OrderDelete, order.ID)
	return nil
}

type OrderPage struct {
	Orders     []models.Order `json:"orders"`
	Page       int            `json:"page"`
	TotalPages int            `json:"totalPages"`
	Total      int64          `json:"total"`
}

// ListForCustomer pages through a customer's own orders, newest first.
// Delivered orders are left out unless includeDelivered is set.
func (o *Orders) ListForCustomer(ctx context.Context, caller Caller, customerID string, includeDelivered bool, page int) (*OrderPage, error) {
	if caller.ID != customerID || caller.Role != models.RoleCustomer {
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	filter := store.OrderFilter{CustomerID: customerID}
	if !includeDelivered {
		filter.ExcludeStatus = models.StatusDelivered
	}
	return o.list(ctx, filter, page)
}

// PendingFor is a delivery partner's work queue: every order assigned to
// them that is not yet delivered, oldest first.
func (o *Orders) PendingFor(ctx context.Context, caller Caller) ([]models.Order, error) {
	if caller.Role != models.RoleDelivery {
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	orders, _, err := o.store.ListOrders(ctx, store.OrderFilter{
		DeliveryPartnerID: caller.ID,
		ExcludeStatus:     models.StatusDelivered,
		OldestFirst:       true,
	}, store.Page{})
	return orders, err
}

// History pages through delivered orders on the caller's side of the
// marketplace.
func (o *Orders) History(ctx context.Context, caller Caller, userID string, page int) (*OrderPage, error) {
	if caller.ID != userID {
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	filter := store.OrderFilter{Status: models.StatusDelivered}
	switch caller.Role {
	case models.RoleCustomer:
		filter.CustomerID = userID
	case models.RoleDelivery:
		filter.DeliveryPartnerID = userID
	default:
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	return o.list(ctx, filter, page)
}

// Timeline returns an order's status history to either party of the order
func (o *Orders) Timeline(ctx context.Context, caller Caller, orderID string) ([]models.OrderStatusHistory, error) {
	order, err := o.store.OrderByID(ctx, orderID, false)
	if err != nil {
		return nil, err
	}
	if caller.ID != order.CustomerID && caller.ID != order.DeliveryPartnerID {
		return nil, apperror.New(apperror.Unauthorized, "Unauthorized")
	}
	return o.store.OrderTimeline(ctx, orderID)
}

func (o *Orders) list(ctx context.Context, filter store.OrderFilter, page int) (*OrderPage, error) {
	page, w, err := window(page, o.pageSize)
	if err != nil {
		return nil, err
	}
	orders, total, err := o.store.ListOrders(ctx, filter, w)
	if err != nil {
		return nil, err
	}
	return &OrderPage{Orders: orders, Page: page, TotalPages: totalPages(total, o.pageSize), Total: total}, nil
}

func (o *Orders) emit(ctx context.Context, room, event string, payload any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := o.publisher.Publish(ctx, room, event, payload); err != nil {
		log.WithError(err).WithFields(log.Fields{"room": room, "event": event}).Warn("order event not delivered")
	}
}
