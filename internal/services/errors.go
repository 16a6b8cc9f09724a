package services

import (
	"errors"
	"fmt"
)

// Common service errors
var (
	ErrNotFound       = errors.New("not found")
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	ErrCourseNotFound = fmt.Errorf("course %w", ErrNotFound)
	ErrNotEnrolled    = fmt.Errorf("not enrolled: %w", ErrNotFound)

	ErrPaymentNotVerified = errors.New("payment not verified")
	ErrValidationFailed   = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrConflict           = errors.New("conflict")
	ErrAccountDisabled    = errors.New("account disabled")
)

// validationError keeps the field errors reachable through errors.As while
// matching ErrValidationFailed.
func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}
