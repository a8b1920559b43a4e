package models

import "github.com/google/uuid"

// Role values for User.Role.
const (
	RoleShopper  = "shopper"
	RoleMerchant = "merchant"
)

// User represents a storefront account, either a shopper or a merchant.
// Email and Phone are optional but unique when present.
type User struct {
	BaseModel
	Username        string  `gorm:"uniqueIndex;not null" json:"username"`
	Email           *string `gorm:"uniqueIndex" json:"email"`
	Phone           *string `gorm:"uniqueIndex" json:"phone"`
	PasswordHash    string  `json:"-"`
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Role            string  `gorm:"default:shopper" json:"role"`
	DefaultCategory string  `json:"default_category"`

	Addresses       []Address        `json:"addresses,omitempty"`
	PaymentMethods  []PaymentMethod  `json:"payment_methods,omitempty"`
	CartItems       []CartItem       `json:"-"`
	Orders          []Order          `json:"orders,omitempty"`
	MerchantProfile *MerchantProfile `json:"merchant_profile,omitempty"`
}

// Session is a server-side session row referenced by the client's session
// token. Its ID doubles as the guest cart owner key until login assigns a
// user.
type Session struct {
	BaseModel
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
}
