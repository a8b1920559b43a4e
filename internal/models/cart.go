package models

import "github.com/google/uuid"

// CartItem belongs to exactly one of a user or a guest session. The
// services package enforces the owner exclusivity and the one-row-per-
// (owner, product) rule; the schema keeps the two owner columns nullable.
type CartItem struct {
	BaseModel
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionID *uuid.UUID `gorm:"type:uuid;index" json:"session_id,omitempty"`
	ProductID uuid.UUID  `gorm:"type:uuid;index;not null" json:"product_id"`
	Product   *Product   `json:"product,omitempty"`
	Quantity  int        `gorm:"not null" json:"quantity"`
}
