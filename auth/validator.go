package auth

import (
	"fmt"

	"help-desk/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateClaims rejects tokens naming an unknown role or plan, or a negative balance.
func ValidateClaims(c Claims) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidClaims, err)
	}
	return nil
}
