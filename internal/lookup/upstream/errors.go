package upstream

import (
	"errors"
	"fmt"
)

// ErrorCategory is the normalized failure taxonomy for registry calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the registry took too long to respond.
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorFailure indicates the registry was unreachable or returned non-2xx.
	ErrorFailure ErrorCategory = "upstream_failure"

	// ErrorMalformed indicates the registry responded with data the gateway
	// could not interpret.
	ErrorMalformed ErrorCategory = "malformed_response"
)

// RegistryError wraps registry failures with normalized categorization.
type RegistryError struct {
	Category   ErrorCategory
	Message    string
	Underlying error
}

func (e *RegistryError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("registry [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("registry [%s]: %s", e.Category, e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Underlying
}

// NewRegistryError creates a categorized registry error.
func NewRegistryError(category ErrorCategory, message string, underlying error) *RegistryError {
	return &RegistryError{
		Category:   category,
		Message:    message,
		Underlying: underlying,
	}
}

// CategoryOf extracts the category from an error, defaulting to ErrorFailure.
func CategoryOf(err error) ErrorCategory {
	var re *RegistryError
	if errors.As(err, &re) {
		return re.Category
	}
	return ErrorFailure
}

// ErrNotFound reports that the registry holds no record for the identifier.
// It is a distinct outcome, not a registry failure.
var ErrNotFound = errors.New("no matching record in registry")
