package service

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by every service. Handlers map these onto HTTP
// statuses; storage-level constraint violations are translated here and
// never leak out as raw driver errors.
var (
	ErrNotFound              = errors.New("not found")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrAlreadyExists         = errors.New("already exists")
	ErrSelfSubscription      = errors.New("cannot subscribe to yourself")
	ErrDuplicateSubscription = errors.New("already subscribed to this author")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// ValidationError reports malformed input on a specific field. All validation
// runs before any write, so a ValidationError implies nothing was persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
