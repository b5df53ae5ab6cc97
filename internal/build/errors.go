package build

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies build errors for reporting and exit-code mapping.
type ErrorCategory string

const (
	// Per-document input errors; the build continues without the document.
	CategoryIO    ErrorCategory = "io"
	CategoryParse ErrorCategory = "parse"

	// Build-fatal errors.
	CategoryConfig    ErrorCategory = "config"
	CategoryCollision ErrorCategory = "collision"
	CategoryTemplate  ErrorCategory = "template" // internal invariant violation, indicates a bug
	CategoryInternal  ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // stops the build
	SeverityError   ErrorSeverity = "error"   // fatal to one document, build continues
	SeverityWarning ErrorSeverity = "warning" // degraded, build continues
)

// Error is a structured build error with category, severity and context.
type Error struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	// Paths identifies the offending source file(s). Collision errors carry
	// both colliding paths.
	Paths []string `json:"paths,omitempty"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// WithPaths attaches offending source paths to the error.
func (e *Error) WithPaths(paths ...string) *Error {
	e.Paths = append(e.Paths, paths...)
	return e
}

// NewError creates a structured build error.
func NewError(category ErrorCategory, severity ErrorSeverity, message string) *Error {
	return &Error{Category: category, Severity: severity, Message: message}
}

// WrapError wraps an existing error with build classification.
func WrapError(err error, category ErrorCategory, severity ErrorSeverity, message string) *Error {
	return &Error{Category: category, Severity: severity, Message: message, Cause: err}
}

// IsCategory checks whether err (or anything it wraps) carries the category.
func IsCategory(err error, category ErrorCategory) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Category == category
	}
	return false
}

// GetCategory extracts the category from an error chain, defaulting to
// CategoryInternal for unclassified errors.
func GetCategory(err error) ErrorCategory {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}
