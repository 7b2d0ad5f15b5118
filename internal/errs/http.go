package errs

import "strings"

// FieldError represents a field-level validation error.
// Example:
//
//	{ "field": "title", "error": "is required" }
type FieldError struct {
	// Field is the field name/key the error relates to (e.g. "email").
	Field string `json:"field"`

	// Error is the human-readable error message.
	Error string `json:"error"`
}

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// It is designed to be serialized directly to JSON.
// Fields:
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message, serialized as "error".
//   - Status: HTTP status code.
//   - Override: true when the message is safe to show to end users as-is.
//   - Errors: list of per-field errors (validation).
type HTTPError struct {
	Code     string `json:"code"`
	Message  string `json:"error"`
	Status   int    `json:"status"`
	Override bool   `json:"override"`

	// Errors holds field-level validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// Error makes *HTTPError satisfy the built-in `error` interface.
func (e *HTTPError) Error() string {
	return e.Message
}

// Is reports whether target is an *HTTPError with the same status.
// A target with Status 0 matches any *HTTPError.
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return t.Status == 0 || t.Status == e.Status
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
//
// Useful if you have a base error template and want to customize message
// without mutating the original.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Code:     e.Code,
		Message:  message,
		Status:   e.Status,
		Override: e.Override,
		Errors:   e.Errors,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
//
// Used to create stable machine-readable error codes from HTTP status text.
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
