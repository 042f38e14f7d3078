package apperrors

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrAuthRequired         = errors.New("authentication required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEventNotFound        = errors.New("event not found or not owned by requester")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrIntentNotFound       = errors.New("pending registration not found")
	ErrInvalidEventDateTime = errors.New("invalid event date/time")
)

// ValidationError carries a user-facing message for a rejected submission.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
