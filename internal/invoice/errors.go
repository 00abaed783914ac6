package invoice

import (
	"errors"
	"fmt"
)

// Common invoice editing errors
var (
	// ErrUnknownField is returned when a form field name does not map to a
	// line item column.
	ErrUnknownField = errors.New("unknown line item field")

	// ErrUnknownPolicy is returned when a subtotal policy name is not recognised.
	ErrUnknownPolicy = errors.New("unknown subtotal policy")

	// ErrInvalidVATRate is returned for a VAT rate that is negative or not a number.
	ErrInvalidVATRate = errors.New("invalid VAT rate")
)

// ValidationError reports a rejected configuration or form value.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Unwrap returns the sentinel behind the validation failure, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     err,
	}
}
