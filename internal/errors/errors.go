// Package errors provides a lightweight structured error type (RefDocsError)
// for category-based classification in the CLI and the build pipeline.
package errors

import (
	"fmt"
)

// ErrorCategory represents the category of a refdocs error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryMetadata   ErrorCategory = "metadata"

	// Build and processing errors
	CategoryLayout     ErrorCategory = "layout"
	CategoryResolve    ErrorCategory = "resolve"
	CategoryRender     ErrorCategory = "render"
	CategoryFileSystem ErrorCategory = "filesystem"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RefDocsError is a structured error with category, severity, and context
type RefDocsError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for RefDocsError
type ContextFields map[string]any

// Error implements the error interface
func (e *RefDocsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for Go 1.13+ error handling
func (e *RefDocsError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the error
func (e *RefDocsError) WithContext(key string, value any) *RefDocsError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new RefDocsError
func New(category ErrorCategory, severity ErrorSeverity, message string) *RefDocsError {
	return &RefDocsError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new RefDocsError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *RefDocsError {
	return &RefDocsError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// ConfigError creates a fatal configuration error
func ConfigError(message string) *RefDocsError {
	return &RefDocsError{
		Category: CategoryConfig,
		Severity: SeverityFatal,
		Message:  message,
	}
}

// ValidationError creates a new validation error
func ValidationError(message string) *RefDocsError {
	return &RefDocsError{
		Category: CategoryValidation,
		Severity: SeverityWarning,
		Message:  message,
	}
}

// IsCategory checks if an error belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if re, ok := err.(*RefDocsError); ok {
		return re.Category == category
	}
	return false
}

// IsFatal reports whether err carries fatal severity.
func IsFatal(err error) bool {
	if re, ok := err.(*RefDocsError); ok {
		return re.Severity == SeverityFatal
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a RefDocsError
func GetCategory(err error) ErrorCategory {
	if re, ok := err.(*RefDocsError); ok {
		return re.Category
	}
	return CategoryInternal
}
