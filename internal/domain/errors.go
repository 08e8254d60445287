package domain

import (
	"errors"
	"fmt"
)

// Error codes for different failure scenarios
const (
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeExternalAPI    = "EXTERNAL_API_ERROR"
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeDatabaseError  = "DATABASE_ERROR"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// ErrNoData signals that an adapter completed without a transport failure but
// found nothing, even after its fuzzy fallback. It is distinct from transport
// errors: callers fall through on either, but only transport failures are
// logged as upstream faults.
var ErrNoData = errors.New("no data available")

// NotFoundError is the terminal error for a query neither identity source
// could resolve. It is the only error surfaced to callers; all section
// failures degrade to empty sections instead.
type NotFoundError struct {
	Query string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no protein data found for %q in either UniProt or NCBI databases", e.Query)
}

// NewNotFoundError creates a NotFoundError for a query.
func NewNotFoundError(query string) *NotFoundError {
	return &NotFoundError{Query: query}
}

// IsNotFound reports whether err is a terminal not-found result.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError represents malformed upstream data detected while shaping
// a record, such as a structure entry with no usable id or source.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// IsValidation reports whether err is a data validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
