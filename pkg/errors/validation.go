package errors

import (
	"strings"
	"unicode"
)

// maxJunctionIDLength bounds junction identifiers accepted from the API.
const maxJunctionIDLength = 256

// ValidateJunctionID validates a junction identifier for safety.
//
// Junction IDs come from SUMO network files or API requests and end up in
// cache keys and catalog documents, so the rules are conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No whitespace
//   - Maximum length of 256 characters
//
// SUMO itself allows most printable characters (e.g. "cluster_1_2", ":J0_0"),
// so nothing beyond that is rejected.
func ValidateJunctionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidJunction, "junction ID cannot be empty")
	}

	if len(id) > maxJunctionIDLength {
		return New(ErrCodeInvalidJunction, "junction ID too long (max %d characters)", maxJunctionIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidJunction, "junction ID contains invalid control characters")
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidJunction, "junction ID cannot contain whitespace: %q", id)
		}
	}

	return nil
}

// ValidatePath validates a file path supplied on the command line or in a
// config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a backend URL (Redis, MongoDB) from configuration.
// Only the scheme is checked; drivers do the full parsing.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidConfig, "URL must use one of the schemes %v", schemes)
}
