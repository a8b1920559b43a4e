package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// CartHandler manages cart endpoints for guests and authenticated users.
type CartHandler struct {
	db    *gorm.DB
	cfg   *config.Config
	carts *services.CartService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, cfg *config.Config, carts *services.CartService) *CartHandler {
	return &CartHandler{db: db, cfg: cfg, carts: carts}
}

// resolveOwner maps the request to a cart owner key: the authenticated
// user when the session carries one, otherwise a guest session created
// lazily on this first cart interaction.
func (h *CartHandler) resolveOwner(c *fiber.Ctx) (services.CartOwner, error) {
	if userID, ok := middleware.CurrentUserID(c); ok {
		return services.OwnedByUser(userID), nil
	}

	sess, err := middleware.EnsureSession(c, h.db, h.cfg)
	if err != nil {
		return services.CartOwner{}, err
	}
	return services.OwnedByGuest(sess.ID), nil
}

// ListCart returns the owner's cart rows, newest first.
func (h *CartHandler) ListCart(c *fiber.Ctx) error {
	owner, err := h.resolveOwner(c)
	if err != nil {
		return err
	}

	items, err := h.carts.ListItems(owner)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": items})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// AddItem puts a product into the cart, merging with an existing row for
// the same product.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	owner, err := h.resolveOwner(c)
	if err != nil {
		return err
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	item, err := h.carts.AddItem(owner, productID, quantity)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem changes a cart row's quantity; zero or below removes it.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	owner, err := h.resolveOwner(c)
	if err != nil {
		return err
	}

	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		return err
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	item, err := h.carts.UpdateItem(owner, itemID, req.Quantity)
	if err != nil {
		return err
	}

	if item == nil {
		return c.JSON(fiber.Map{"success": true, "message": "item removed"})
	}
	return c.JSON(fiber.Map{"success": true, "data": item})
}

// RemoveItem deletes a cart row.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	owner, err := h.resolveOwner(c)
	if err != nil {
		return err
	}

	itemID, err := parseIDParam(c, "item_id")
	if err != nil {
		return err
	}

	if err := h.carts.RemoveItem(owner, itemID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "item removed from cart"})
}
