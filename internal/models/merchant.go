package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MerchantProfile holds the business metadata for a merchant-role user.
type MerchantProfile struct {
	BaseModel
	UserID       uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	BusinessName string          `gorm:"not null" json:"business_name"`
	Description  string          `gorm:"type:text" json:"description"`
	LogoURL      string          `json:"logo_url"`
	Website      string          `json:"website"`
	Address      string          `gorm:"type:text" json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	PostalCode   string          `json:"postal_code"`
	Country      string          `json:"country"`
	Phone        string          `json:"phone"`
	Email        string          `json:"email"`
	IsVerified   bool            `json:"is_verified"`
	Rating       decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"rating"`
	ReviewCount  int             `json:"review_count"`
}
