package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatusPending is the only status an order carries at creation.
// Cancellation and fulfillment transitions are handled outside this service.
const OrderStatusPending = "pending"

type Order struct {
	BaseModel
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	User            *User           `json:"user,omitempty"`
	Status          string          `gorm:"default:pending" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	PaymentMethodID uuid.UUID       `gorm:"type:uuid" json:"payment_method_id"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem snapshots a cart line at purchase time. Price is the product
// price read during order validation, never re-read later.
type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}
