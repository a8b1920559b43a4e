package utils

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// ValidateStruct runs struct tag validation on a request payload.
func ValidateStruct(payload any) error {
	return validate.Struct(payload)
}
