package store

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/safar/storefront-api/internal/database"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// requireFields checks the `validate:"required"` tags on req. Pointer and slice
// fields make "required" mean "present in the payload": a JSON null or a missing
// key fails, an empty string or empty list does not.
func requireFields(req any, message string) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return &database.ValidationError{Message: message}
	}
	return err
}
