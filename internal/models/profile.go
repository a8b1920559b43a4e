package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a shipping address owned by a user. At most one row per user
// carries IsDefault=true; the account service keeps that invariant.
type Address struct {
	BaseModel
	UserID               uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Name                 string    `gorm:"not null" json:"name"`
	AddressLine1         string    `gorm:"not null" json:"address_line1"`
	AddressLine2         string    `json:"address_line2"`
	City                 string    `gorm:"not null" json:"city"`
	State                string    `json:"state"`
	PostalCode           string    `gorm:"not null" json:"postal_code"`
	Country              string    `gorm:"not null" json:"country"`
	Phone                string    `json:"phone"`
	DeliveryInstructions string    `gorm:"type:text" json:"delivery_instructions"`
	IsDefault            bool      `json:"is_default"`
}

// PaymentMethod is a stored card reference. IsExpired is derived from the
// expiry fields on write, not recomputed continuously.
type PaymentMethod struct {
	BaseModel
	UserID         uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	CardType       string    `gorm:"not null" json:"card_type"`
	LastFour       string    `gorm:"size:4;not null" json:"last_four"`
	CardholderName string    `gorm:"not null" json:"cardholder_name"`
	ExpiryMonth    int       `json:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year"`
	IsDefault      bool      `json:"is_default"`
	IsExpired      bool      `json:"is_expired"`
}

// RefreshExpired recomputes the derived IsExpired flag against now. A card
// stays valid through the end of its expiry month.
func (p *PaymentMethod) RefreshExpired(now time.Time) {
	if p.ExpiryYear == 0 || p.ExpiryMonth == 0 {
		p.IsExpired = false
		return
	}
	p.IsExpired = p.ExpiryYear < now.Year() ||
		(p.ExpiryYear == now.Year() && p.ExpiryMonth < int(now.Month()))
}
