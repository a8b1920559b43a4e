package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the service layer. The HTTP error handler
// translates these into status codes; anything unrecognized becomes a
// generic 500 so transaction failures never leak partial state details.
var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrOwnership    = errors.New("resource belongs to another user")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the product whose stock cannot cover the
// requested quantity.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	if e.ProductName == "" {
		return "insufficient stock"
	}
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}
