// Package errs defines the structured terminal errors surfaced at the
// orchestration boundary. Internal failures wrap normally with %w; only the
// boundary converts them into coded errors, so raw internals never leak to
// callers.
package errs

import "fmt"

// Stable machine-readable error codes.
const (
	CodeImportFailed               = "IMPORT_FAILED"
	CodeProjectNotFound            = "PROJECT_NOT_FOUND"
	CodeProjectNotConverted        = "PROJECT_NOT_CONVERTED"
	CodeConversionFailed           = "CONVERSION_FAILED"
	CodeDeploymentFailed           = "DEPLOYMENT_FAILED"
	CodeDeploymentNotFound         = "DEPLOYMENT_NOT_FOUND"
	CodeDeploymentValidationFailed = "DEPLOYMENT_VALIDATION_FAILED"
	CodeStatusCheckFailed          = "STATUS_CHECK_FAILED"
)

// Error is a coded terminal error with a human message and a details map.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	cause error
}

// New creates a coded error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded error around an underlying cause.
func Wrap(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// With attaches a detail entry and returns the error for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}
