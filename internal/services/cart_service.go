package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// CartOwner is the resolved identity all cart rows are partitioned by:
// either an authenticated user or a guest session. Exactly one id is set.
type CartOwner struct {
	userID    *uuid.UUID
	sessionID *uuid.UUID
}

// OwnedByUser builds the owner key for an authenticated user.
func OwnedByUser(userID uuid.UUID) CartOwner {
	return CartOwner{userID: &userID}
}

// OwnedByGuest builds the owner key for a guest session.
func OwnedByGuest(sessionID uuid.UUID) CartOwner {
	return CartOwner{sessionID: &sessionID}
}

// IsUser reports whether the owner is an authenticated user.
func (o CartOwner) IsUser() bool { return o.userID != nil }

func (o CartOwner) scope(db *gorm.DB) *gorm.DB {
	if o.userID != nil {
		return db.Where("user_id = ?", *o.userID)
	}
	return db.Where("session_id = ?", *o.sessionID)
}

func (o CartOwner) owns(item *models.CartItem) bool {
	if o.userID != nil {
		return item.UserID != nil && *item.UserID == *o.userID
	}
	return item.SessionID != nil && *item.SessionID == *o.sessionID
}

func (o CartOwner) assign(item *models.CartItem) {
	item.UserID = o.userID
	item.SessionID = o.sessionID
}

// CartService implements cart reads and mutations, always scoped by a
// resolved CartOwner rather than any client-supplied id.
type CartService struct {
	db *gorm.DB
}

// NewCartService constructs CartService.
func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// ListItems returns the owner's cart rows, newest first.
func (s *CartService) ListItems(owner CartOwner) ([]models.CartItem, error) {
	var items []models.CartItem
	err := owner.scope(s.db).
		Preload("Product").
		Order("created_at desc").
		Find(&items).Error
	return items, err
}

// AddItem puts quantity units of a product into the owner's cart. An
// existing row for the same product is incremented instead of duplicated;
// the combined quantity must stay within the product's current stock.
func (s *CartService) AddItem(owner CartOwner, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, Validation("quantity must be at least 1")
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if quantity > product.Stock {
		return nil, &InsufficientStockError{ProductName: product.Name}
	}

	var item models.CartItem
	err := owner.scope(s.db).Where("product_id = ?", productID).First(&item).Error
	switch {
	case err == nil:
		combined := item.Quantity + quantity
		if combined > product.Stock {
			return nil, &InsufficientStockError{ProductName: product.Name}
		}
		item.Quantity = combined
		if err := s.db.Save(&item).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{ProductID: productID, Quantity: quantity}
		owner.assign(&item)
		if err := s.db.Create(&item).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	item.Product = &product
	return &item, nil
}

// UpdateItem sets a cart row's quantity. A quantity of zero or less removes
// the row; otherwise the new quantity is re-validated against current stock.
// Returns nil when the row was removed.
func (s *CartService) UpdateItem(owner CartOwner, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !owner.owns(&item) {
		return nil, ErrOwnership
	}

	if quantity <= 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", item.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if quantity > product.Stock {
		return nil, &InsufficientStockError{ProductName: product.Name}
	}

	item.Quantity = quantity
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}

	item.Product = &product
	return &item, nil
}

// RemoveItem deletes a cart row after an ownership check. Removing an
// already-removed item reports NotFound so replays stay deterministic.
func (s *CartService) RemoveItem(owner CartOwner, itemID uuid.UUID) error {
	var item models.CartItem
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !owner.owns(&item) {
		return ErrOwnership
	}

	return s.db.Delete(&item).Error
}

// mergeGuestCart folds guest cart rows into the user's cart inside the
// caller's transaction: quantities are summed for products the user already
// carries, other rows are re-owned wholesale.
func mergeGuestCart(tx *gorm.DB, sessionID, userID uuid.UUID) error {
	var guestItems []models.CartItem
	if err := tx.Where("session_id = ?", sessionID).Find(&guestItems).Error; err != nil {
		return err
	}

	for _, guest := range guestItems {
		var existing models.CartItem
		err := tx.Where("user_id = ? AND product_id = ?", userID, guest.ProductID).
			First(&existing).Error
		switch {
		case err == nil:
			existing.Quantity += guest.Quantity
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			if err := tx.Delete(&guest).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			updates := map[string]interface{}{"user_id": userID, "session_id": nil}
			if err := tx.Model(&models.CartItem{}).Where("id = ?", guest.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}

	return nil
}
