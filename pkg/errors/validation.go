package errors

import (
	"strings"
	"unicode"
)

// maxIDLength bounds window IDs and classes accepted from scenario files
// and HTTP requests.
const maxIDLength = 256

// ValidateWindowID rejects window IDs that are empty, overlong, contain
// control characters or contain a slash, which would break URL routing.
func ValidateWindowID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidWindowID, "window id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidWindowID, "window id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidWindowID, "window id contains control characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidWindowID, "window id cannot contain path separators")
	}
	return nil
}

// ValidateClass checks a WM class name. Empty classes are allowed.
func ValidateClass(class string) error {
	if len(class) > maxIDLength {
		return New(ErrCodeInvalidInput, "window class too long (max %d characters)", maxIDLength)
	}
	for _, r := range class {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "window class contains control characters")
		}
	}
	return nil
}

// ValidateIndex checks that i is a valid index into a collection of n
// items, naming the collection in the error.
func ValidateIndex(what string, i, n int) error {
	if i < 0 || i >= n {
		return New(ErrCodeInvalidInput, "%s %d out of range [0, %d)", what, i, n)
	}
	return nil
}
