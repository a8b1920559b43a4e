package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/example/bazaar/internal/services"
)

// ErrorHandler renders every handler error as {"error": message} JSON,
// mapping service-layer errors onto the HTTP taxonomy. Unrecognized
// errors, including rolled-back transactions, surface as a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	var validationErr *services.ValidationError
	var stockErr *services.InsufficientStockError

	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, services.ErrUnauthorized):
		code = fiber.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, services.ErrOwnership):
		code = fiber.StatusForbidden
		message = services.ErrOwnership.Error()
	case errors.Is(err, services.ErrNotFound):
		code = fiber.StatusNotFound
		message = services.ErrNotFound.Error()
	case errors.Is(err, services.ErrConflict):
		code = fiber.StatusConflict
		message = err.Error()
	case errors.As(err, &validationErr):
		code = fiber.StatusBadRequest
		message = validationErr.Error()
	case errors.As(err, &stockErr):
		code = fiber.StatusBadRequest
		message = stockErr.Error()
	default:
		log.Printf("[HTTP] unhandled error on %s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
