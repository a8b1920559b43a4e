package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// OrderService implements order placement, the one multi-step
// consistency-sensitive workflow: validate the cart against live stock,
// then atomically create the order, snapshot its lines, decrement stock
// and clear the cart.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// PlaceOrderInput carries the checkout fields.
type PlaceOrderInput struct {
	ShippingAddress string
	PaymentMethodID uuid.UUID
}

// PlaceOrder converts the user's cart into an order. Preconditions are
// checked in a fixed sequence, each with a distinct failure; no state is
// mutated until every cart line passes validation, and all writes commit
// or roll back as one unit.
func (s *OrderService) PlaceOrder(userID uuid.UUID, in PlaceOrderInput) (*models.Order, error) {
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, Validation("shipping address is required")
	}
	if in.PaymentMethodID == uuid.Nil {
		return nil, Validation("payment method is required")
	}

	var method models.PaymentMethod
	err := s.db.First(&method, "id = ? AND user_id = ?", in.PaymentMethodID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Validation("invalid payment method")
		}
		return nil, err
	}

	var order *models.Order
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return Validation("cart is empty")
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cartItems))
		for _, line := range cartItems {
			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &InsufficientStockError{}
				}
				return err
			}
			if product.Stock < line.Quantity {
				return &InsufficientStockError{ProductName: product.Name}
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: product.ID,
				Quantity:  line.Quantity,
				Price:     product.Price,
			})
		}

		created := models.Order{
			UserID:          userID,
			Status:          models.OrderStatusPending,
			TotalAmount:     total,
			ShippingAddress: in.ShippingAddress,
			PaymentMethodID: method.ID,
			Items:           items,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		// Guarded decrement: the stock >= quantity predicate makes the
		// check and decrement one statement, so concurrent placements
		// racing on the same product serialize at the row and the loser
		// aborts here instead of driving stock negative.
		for _, item := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				var product models.Product
				if err := tx.First(&product, "id = ?", item.ProductID).Error; err == nil {
					return &InsufficientStockError{ProductName: product.Name}
				}
				return &InsufficientStockError{}
			}
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		order = &created
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// ListOrders returns the user's orders with line items, newest first.
func (s *OrderService) ListOrders(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("user_id = ?", userID).
		Preload("Items").
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// GetOrder loads one order with an ownership check. An order held by
// another user surfaces as an ownership failure, not as missing.
func (s *OrderService) GetOrder(userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOwnership
	}
	return &order, nil
}
