package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of an order
type OrderStatus string

const (
	StatusPending        OrderStatus = "Pending"
	StatusAccepted       OrderStatus = "Accepted"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
)

// Statuses lists the lifecycle in order
var Statuses = []OrderStatus{StatusPending, StatusAccepted, StatusOutForDelivery, StatusDelivered}

// Valid reports whether s is one of the four lifecycle labels
func (s OrderStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CustomerID        string      `json:"customerId" gorm:"type:varchar(36);index;not null"`
	Customer          *User       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	DeliveryPartnerID string      `json:"deliveryPartnerId" gorm:"type:varchar(36);index;not null;<-:create"`
	ProductID         string      `json:"productId" gorm:"type:varchar(36);not null"`
	Product           *Product    `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity          int         `json:"quantity" gorm:"not null"`
	Location          string      `json:"location" gorm:"not null"`
	Status            OrderStatus `json:"status" gorm:"not null;default:'Pending';index"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderStatusHistory tracks every status change of an order
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"orderId" gorm:"type:varchar(36);index;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  string      `json:"changedBy" gorm:"type:varchar(36)"`
	CreatedAt  time.Time   `json:"createdAt"`
}
