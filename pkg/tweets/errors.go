// Package tweets implements the tweet aggregate: validation, the
// edit-as-new-version engine, and the relationship resolver over the
// persistence store.
package tweets

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error codes for tweet domain operations
const (
	// ErrCodeValidation indicates malformed or out-of-range input
	ErrCodeValidation = "VALIDATION"
	// ErrCodeNotFound indicates the referenced tweet is absent or already superseded
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeNotEditable indicates the edit window or budget is exhausted
	ErrCodeNotEditable = "NOT_EDITABLE"
	// ErrCodeConflict indicates a concurrent edit won the race; the caller may retry
	ErrCodeConflict = "CONFLICT"
)

// Error is the tweet domain error with a machine-readable code and,
// for validation failures, per-field detail.
type Error struct {
	Code    string            // Error code identifying the type of error
	Message string            // Human readable error message
	Err     error             // Underlying error if any
	Details map[string]string // Field-level validation detail, keyed by input field
}

// Error implements the error interface, including field detail for
// validation failures.
func (e *Error) Error() string {
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, e.Details[k]))
		}
		return fmt.Sprintf("[%s] %s (%s)", e.Code, e.Message, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a tweet domain error with the given code.
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewValidationError creates a VALIDATION error carrying field detail.
func NewValidationError(details map[string]string) *Error {
	return &Error{
		Code:    ErrCodeValidation,
		Message: "tweet input failed validation",
		Details: details,
	}
}

// IsCode reports whether err is (or wraps) a tweet Error with the given code.
func IsCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
