// Package validation contains the logic for validating
// request data.
//
// It uses the `validator` library to enforce rules defined in
// struct tags and extracts validation errors into a format the
// client can understand.
package validation

import "strings"

// Blank reports whether s is empty or whitespace-only.
func Blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
