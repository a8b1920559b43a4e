package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/models"
	"github.com/example/bazaar/internal/services"
	"github.com/example/bazaar/internal/utils"
)

// ProfileHandler manages address, payment-method and merchant-profile
// endpoints for the authenticated user.
type ProfileHandler struct {
	accounts *services.AccountService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(accounts *services.AccountService) *ProfileHandler {
	return &ProfileHandler{accounts: accounts}
}

func requireUser(c *fiber.Ctx) (uuid.UUID, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
	}
	return userID, nil
}

func parseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// Address endpoints

// ListAddresses returns the user's addresses.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	addresses, err := h.accounts.ListAddresses(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

// GetAddress returns one address.
func (h *ProfileHandler) GetAddress(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	addrID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	address, err := h.accounts.GetAddress(userID, addrID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": address})
}

type createAddressRequest struct {
	Name                 string `json:"name" validate:"required"`
	AddressLine1         string `json:"address_line1" validate:"required"`
	AddressLine2         string `json:"address_line2"`
	City                 string `json:"city" validate:"required"`
	State                string `json:"state"`
	PostalCode           string `json:"postal_code" validate:"required"`
	Country              string `json:"country" validate:"required"`
	Phone                string `json:"phone"`
	DeliveryInstructions string `json:"delivery_instructions"`
	IsDefault            bool   `json:"is_default"`
}

// CreateAddress creates an address for the user.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req createAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing required fields")
	}

	address := models.Address{
		Name:                 req.Name,
		AddressLine1:         req.AddressLine1,
		AddressLine2:         req.AddressLine2,
		City:                 req.City,
		State:                req.State,
		PostalCode:           req.PostalCode,
		Country:              req.Country,
		Phone:                req.Phone,
		DeliveryInstructions: req.DeliveryInstructions,
		IsDefault:            req.IsDefault,
	}

	if err := h.accounts.CreateAddress(userID, &address); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

type updateAddressRequest struct {
	Name                 *string `json:"name"`
	AddressLine1         *string `json:"address_line1"`
	AddressLine2         *string `json:"address_line2"`
	City                 *string `json:"city"`
	State                *string `json:"state"`
	PostalCode           *string `json:"postal_code"`
	Country              *string `json:"country"`
	Phone                *string `json:"phone"`
	DeliveryInstructions *string `json:"delivery_instructions"`
	IsDefault            *bool   `json:"is_default"`
}

// UpdateAddress updates a user address.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	addrID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updateAddressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.AddressLine1 != nil {
		updates["address_line1"] = *req.AddressLine1
	}
	if req.AddressLine2 != nil {
		updates["address_line2"] = *req.AddressLine2
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.State != nil {
		updates["state"] = *req.State
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.DeliveryInstructions != nil {
		updates["delivery_instructions"] = *req.DeliveryInstructions
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	address, err := h.accounts.UpdateAddress(userID, addrID, updates)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": address})
}

// DeleteAddress removes a user address.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	addrID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.accounts.DeleteAddress(userID, addrID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "address deleted"})
}

// Payment method endpoints

// ListPaymentMethods returns the user's stored cards.
func (h *ProfileHandler) ListPaymentMethods(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	methods, err := h.accounts.ListPaymentMethods(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": methods})
}

// GetPaymentMethod returns one stored card.
func (h *ProfileHandler) GetPaymentMethod(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	methodID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	method, err := h.accounts.GetPaymentMethod(userID, methodID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": method})
}

type createPaymentMethodRequest struct {
	CardType       string `json:"card_type" validate:"required"`
	LastFour       string `json:"last_four" validate:"required,len=4,numeric"`
	CardholderName string `json:"cardholder_name" validate:"required"`
	ExpiryMonth    int    `json:"expiry_month" validate:"omitempty,min=1,max=12"`
	ExpiryYear     int    `json:"expiry_year"`
	IsDefault      bool   `json:"is_default"`
}

// CreatePaymentMethod stores a new card reference.
func (h *ProfileHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req createPaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing or malformed fields")
	}

	method := models.PaymentMethod{
		CardType:       req.CardType,
		LastFour:       req.LastFour,
		CardholderName: req.CardholderName,
		ExpiryMonth:    req.ExpiryMonth,
		ExpiryYear:     req.ExpiryYear,
		IsDefault:      req.IsDefault,
	}

	if err := h.accounts.CreatePaymentMethod(userID, &method); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": method})
}

type updatePaymentMethodRequest struct {
	CardType       *string `json:"card_type"`
	LastFour       *string `json:"last_four"`
	CardholderName *string `json:"cardholder_name"`
	ExpiryMonth    *int    `json:"expiry_month"`
	ExpiryYear     *int    `json:"expiry_year"`
	IsDefault      *bool   `json:"is_default"`
}

// UpdatePaymentMethod updates a stored card.
func (h *ProfileHandler) UpdatePaymentMethod(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	methodID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	var req updatePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	updates := map[string]interface{}{}
	if req.CardType != nil {
		updates["card_type"] = *req.CardType
	}
	if req.LastFour != nil {
		updates["last_four"] = *req.LastFour
	}
	if req.CardholderName != nil {
		updates["cardholder_name"] = *req.CardholderName
	}
	if req.ExpiryMonth != nil {
		updates["expiry_month"] = *req.ExpiryMonth
	}
	if req.ExpiryYear != nil {
		updates["expiry_year"] = *req.ExpiryYear
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}

	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	method, err := h.accounts.UpdatePaymentMethod(userID, methodID, updates)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": method})
}

// DeletePaymentMethod removes a stored card.
func (h *ProfileHandler) DeletePaymentMethod(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	methodID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.accounts.DeletePaymentMethod(userID, methodID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "payment method deleted"})
}

// Merchant profile endpoints

// GetMerchantProfile returns the authenticated merchant's profile.
func (h *ProfileHandler) GetMerchantProfile(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	profile, err := h.accounts.GetMerchantProfile(userID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type merchantProfileRequest struct {
	BusinessName string `json:"business_name" validate:"required"`
	Description  string `json:"description"`
	LogoURL      string `json:"logo_url"`
	Website      string `json:"website"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Email        string `json:"email" validate:"omitempty,email"`
}

// UpsertMerchantProfile creates or updates the merchant profile.
func (h *ProfileHandler) UpsertMerchantProfile(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req merchantProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing or malformed fields")
	}

	profile, err := h.accounts.UpsertMerchantProfile(userID, &models.MerchantProfile{
		BusinessName: req.BusinessName,
		Description:  req.Description,
		LogoURL:      req.LogoURL,
		Website:      req.Website,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Phone:        req.Phone,
		Email:        req.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}
