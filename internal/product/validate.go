package product

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateInput checks a create/update payload before it reaches the backend.
func ValidateInput(in ProductInput) error {
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.Precio.IsNegative() {
		return fmt.Errorf("%w: precio must be non-negative", ErrInvalidInput)
	}
	return nil
}
