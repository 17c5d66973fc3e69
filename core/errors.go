package core

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeInvalidBackend     = "INVALID_BACKEND"
	ErrCodeLibraryUnavailable = "LIBRARY_UNAVAILABLE"
	ErrCodeInvalidScale       = "INVALID_SCALE"
	ErrCodeInvalidRotation    = "INVALID_ROTATION"
	ErrCodeInvalidFormat      = "INVALID_OUTPUT_FORMAT"
	ErrCodeInvalidPageRange   = "INVALID_PAGE_RANGE"
	ErrCodeInvalidProfile     = "INVALID_PROFILE"
	ErrCodeMissingConfig      = "MISSING_CONFIG"
	ErrCodeLogDirectory       = "LOG_DIRECTORY"
)

// ErrInvalidBackend returns an error for an unknown PDFIUM_BACKEND value.
func ErrInvalidBackend(value string, allowed ...string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBackend,
		Message: fmt.Sprintf("Unknown render backend '%s'", value),
		Action:  fmt.Sprintf("Set PDFIUM_BACKEND to one of: %s", strings.Join(allowed, ", ")),
	}
}

// ErrLibraryUnavailable returns an error when libpdfium cannot be loaded.
func ErrLibraryUnavailable(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeLibraryUnavailable,
		Message: fmt.Sprintf("Cannot load PDFium from %s: %s", path, reason),
		Action:  "Install libpdfium, point PDFIUM_LIBRARY_PATH at it, or set PDFIUM_BACKEND=soft",
	}
}

// ErrInvalidScale returns an error for a non-positive or non-numeric render scale.
func ErrInvalidScale(value string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidScale,
		Message: fmt.Sprintf("Invalid render scale '%s'", value),
		Action:  "Use a positive number of pixels per point (1 renders at 72 dpi)",
	}
}

// ErrInvalidRotation returns an error for a rotation that is not a quarter turn.
func ErrInvalidRotation(degrees int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidRotation,
		Message: fmt.Sprintf("Invalid rotation %d", degrees),
		Action:  "Use 0, 90, 180 or 270",
	}
}

// ErrInvalidFormat returns an error for an unsupported output image format.
func ErrInvalidFormat(format string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidFormat,
		Message: fmt.Sprintf("Unsupported output format '%s'", format),
		Action:  "Use png, bmp or tiff",
	}
}

// ErrInvalidPageRange returns an error for a malformed page selection.
func ErrInvalidPageRange(spec string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPageRange,
		Message: fmt.Sprintf("Invalid page selection '%s': %s", spec, reason),
		Action:  "Use 1-based pages and ranges such as 1,3-5",
	}
}

// ErrInvalidProfile returns an error for an unreadable render profile.
func ErrInvalidProfile(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidProfile,
		Message: fmt.Sprintf("Cannot use render profile %s: %s", path, reason),
		Action:  "Check the YAML syntax and field names of the profile",
	}
}

// ErrMissingConfig returns an error for missing required configuration
func ErrMissingConfig(varName string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Missing required configuration: %s", varName),
		Action:  fmt.Sprintf("Pass -%s on the command line", varName),
	}
}

// ErrLogDirectory returns an error when the log file's directory is missing.
func ErrLogDirectory(dir string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeLogDirectory,
		Message: fmt.Sprintf("Log directory %s does not exist", dir),
		Action:  "Create it or change PDFIUM_LOG_FILE",
	}
}

// IsConfigError checks if an error is, or wraps, a ConfigError and returns it if so
func IsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error if it's a ConfigError
func GetErrorCode(err error) string {
	if configErr, ok := IsConfigError(err); ok {
		return configErr.Code
	}
	return ""
}
