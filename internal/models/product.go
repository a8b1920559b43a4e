package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Stock is the one field with a cross-request
// consistency requirement: it never goes negative and is decremented only
// by successful order placement.
type Product struct {
	BaseModel
	Name         string          `gorm:"not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock        int             `gorm:"not null;default:0" json:"stock"`
	Category     string          `gorm:"index" json:"category"`
	ImageURL     string          `json:"image_url"`
	Rating       decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"rating"`
	ReviewCount  int             `json:"review_count"`
	ShippingTime string          `json:"shipping_time"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"shipping_cost"`
	ExternalID   string          `gorm:"index" json:"external_id"`
	MerchantID   *uuid.UUID      `gorm:"type:uuid;index" json:"merchant_id"`
	Merchant     *User           `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"`
}
