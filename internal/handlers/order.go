package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/services"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	PaymentMethodID string `json:"payment_method_id"`
}

// CreateOrder converts the authenticated user's cart into an order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var paymentMethodID uuid.UUID
	if req.PaymentMethodID != "" {
		paymentMethodID, err = uuid.Parse(req.PaymentMethodID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payment method id")
		}
	}

	order, err := h.orders.PlaceOrder(userID, services.PlaceOrderInput{
		ShippingAddress: req.ShippingAddress,
		PaymentMethodID: paymentMethodID,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": order})
}

// ListOrders returns the authenticated user's orders.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	orders, err := h.orders.ListOrders(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": orders})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.GetOrder(userID, orderID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
