package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// ProductHandler manages the catalog surface.
type ProductHandler struct {
	db      *gorm.DB
	imports *services.ImportService
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB, imports *services.ImportService) *ProductHandler {
	return &ProductHandler{db: db, imports: imports}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	// "local" selects marketplace products sold by a platform merchant
	// rather than drop-shipped catalog imports.
	if strings.EqualFold(c.Query("local"), "true") {
		query = query.Where("merchant_id IS NOT NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Limit(pg.PerPage).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.PerPage,
			"total_items":    total,
			"total_pages":    pg.Pages(total),
		},
	})
}

// GetProduct returns a single product.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// ListCategories returns the distinct non-empty product categories.
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	var categories []string
	if err := h.db.Model(&models.Product{}).
		Distinct("category").
		Where("category <> ''").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

type productRequest struct {
	Name         string  `json:"name" validate:"required"`
	Description  string  `json:"description"`
	Price        string  `json:"price" validate:"required"`
	Stock        int     `json:"stock" validate:"min=0"`
	Category     string  `json:"category"`
	ImageURL     string  `json:"image_url"`
	ShippingTime string  `json:"shipping_time"`
	ShippingCost string  `json:"shipping_cost"`
	Rating       float64 `json:"rating"`
	ReviewCount  int     `json:"review_count"`
}

// CreateProduct lets a merchant list a product.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if user.Role != models.RoleMerchant {
		return fiber.NewError(fiber.StatusForbidden, "merchant role required")
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing or malformed fields")
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid price")
	}

	shippingCost := decimal.Zero
	if req.ShippingCost != "" {
		shippingCost, err = decimal.NewFromString(req.ShippingCost)
		if err != nil || shippingCost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "invalid shipping cost")
		}
	}

	product := models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		Stock:        req.Stock,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
		ShippingTime: req.ShippingTime,
		ShippingCost: shippingCost,
		Rating:       decimal.NewFromFloat(req.Rating),
		ReviewCount:  req.ReviewCount,
		MerchantID:   &user.ID,
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

type importRequest struct {
	Count int `json:"count"`
}

// ImportProducts pulls records from the configured catalog source.
func (h *ProductHandler) ImportProducts(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		return err
	}
	if user.Role != models.RoleMerchant {
		return fiber.NewError(fiber.StatusForbidden, "merchant role required")
	}

	req := importRequest{Count: 100}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
	}

	added, err := h.imports.ImportProducts(req.Count)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"added": added}})
}
