package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation is the parent of every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidUsername is returned when an invalid username is provided.
	ErrInvalidUsername = fmt.Errorf("%w: user name must not be empty", ErrValidation)
	// ErrInvalidPassword is returned when an invalid password is provided.
	ErrInvalidPassword = fmt.Errorf("%w: password must not be empty", ErrValidation)
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateUsername validates the provided username.
// A username only has to be present; uniqueness is checked against the store.
func ValidateUsername(username string) error {
	if err := validate.Var(username, "required"); err != nil {
		return ErrInvalidUsername
	}

	return nil
}

// ValidatePassword validates the provided password.
func ValidatePassword(password string) error {
	if err := validate.Var(password, "required"); err != nil {
		return ErrInvalidPassword
	}

	return nil
}
