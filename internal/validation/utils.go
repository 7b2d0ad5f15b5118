package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/deppfellow/go-todo/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// validate is safe for concurrent use and caches struct metadata,
// so one instance is shared by every request type.
var validate = validator.New()

// Struct runs the tag-based validation for v.
func Struct(v any) error {
	return validate.Struct(v)
}

// Validatable is implemented by request payload types that know how to validate themselves.
//
// Typical pattern:
// - Define a request struct with validator tags (`validate:"required"`)
// - Implement Validate() error that runs validation.Struct(req)
// - Return validator.ValidationErrors (or CustomValidationErrors for custom cases)
type Validatable interface {
	Validate() error
}

// CustomValidationError represents a single validation issue for a specific field.
// This is used for validation errors that cannot be expressed via validator tags.
type CustomValidationError struct {
	Field   string
	Message string
}

// CustomValidationErrors is a slice of custom validation errors that satisfies error.
type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds request data into payload and validates it.
//
// Flow:
// 1) c.Bind(payload) populates request struct from path params and body.
// 2) payload.Validate() applies validation rules.
// 3) Returns *errs.HTTPError (400) with field-level errors if validation fails.
//
// NOTE: c.Bind expects a pointer to a struct.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors)
	}

	return nil
}

// bindErrorMessage pulls the client-facing message out of an echo bind error.
func bindErrorMessage(err error) string {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		if msg, ok := echoErr.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return "Invalid request"
}

// validateStruct calls v.Validate() and extracts field errors if validation fails.
func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	var validationErrors validator.ValidationErrors

	switch {
	case errors.As(err, &customValidationErrors):
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}

	case errors.As(err, &validationErrors):
		for _, err := range validationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: strings.ToLower(err.Field()),
				Error: tagMessage(err),
			})
		}

	default:
		return err.Error(), []errs.FieldError{}
	}

	return summarize(fieldErrors), fieldErrors
}

// tagMessage converts a validator failure into a user-friendly message.
func tagMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"

	case "min":
		// - for strings: minimum length
		// - for numbers: minimum value
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())

	case "max":
		if err.Type().Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", err.Param())
		}
		return fmt.Sprintf("must not exceed %s", err.Param())

	case "gt", "gte":
		return fmt.Sprintf("must be greater than %s", err.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())

	default:
		field := strings.ToLower(err.Field())
		if err.Param() != "" {
			return fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
		}
		return fmt.Sprintf("%s: %s", field, err.Tag())
	}
}

// summarize picks the top-level message: a single failure reads as a
// sentence ("Title is required"), several collapse to "Validation failed".
func summarize(fieldErrors []errs.FieldError) string {
	if len(fieldErrors) != 1 {
		return "Validation failed"
	}
	fe := fieldErrors[0]
	return cases.Title(language.English).String(fe.Field) + " " + fe.Error
}
