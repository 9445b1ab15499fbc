package config

import (
	"fmt"
	"strings"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType int

const (
	// ConfigNotFound indicates the configuration file was not found.
	ConfigNotFound ConfigErrorType = iota
	// ConfigReadFailed indicates the file exists but could not be read.
	ConfigReadFailed
	// ConfigInvalid indicates the file is not valid JSON for Config.
	ConfigInvalid
	// ConfigValidationFailed indicates a setting with an unusable value.
	ConfigValidationFailed
)

// String returns the name of the error type.
func (t ConfigErrorType) String() string {
	switch t {
	case ConfigNotFound:
		return "not found"
	case ConfigReadFailed:
		return "read failed"
	case ConfigInvalid:
		return "invalid"
	case ConfigValidationFailed:
		return "validation failed"
	default:
		return fmt.Sprintf("ConfigErrorType(%d)", int(t))
	}
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	// Type is the error type.
	Type ConfigErrorType
	// Message is the error message.
	Message string
	// File is the configuration file path (empty for in-memory configs).
	File string
	// Field is the dotted JSON path of the offending setting, e.g. "server.addr".
	Field string
	// Cause is the underlying error if any.
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.File != "" {
		b.WriteString(" ")
		b.WriteString(e.File)
	}
	if e.Field != "" {
		b.WriteString(": ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

func newFileError(typ ConfigErrorType, file, message string, cause error) *ConfigError {
	return &ConfigError{Type: typ, File: file, Message: message, Cause: cause}
}

// fieldError reports an invalid setting. The file is filled in by the loader.
func fieldError(field, format string, args ...interface{}) *ConfigError {
	return &ConfigError{
		Type:    ConfigValidationFailed,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}
