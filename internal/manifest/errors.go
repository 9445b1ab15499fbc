package manifest

import "fmt"

// ManifestErrorType categorizes manifest errors.
type ManifestErrorType int

const (
	// ManifestParseFailed indicates invalid HCL syntax.
	ManifestParseFailed ManifestErrorType = iota
	// ManifestDecodeFailed indicates HCL that does not match the manifest schema.
	ManifestDecodeFailed
	// ManifestInvalid indicates a well-formed manifest with inconsistent content.
	ManifestInvalid
)

// ManifestError represents manifest loading errors.
type ManifestError struct {
	// Type categorizes the error.
	Type ManifestErrorType
	// Message is the error message.
	Message string
	// File is the manifest path.
	File string
	// Cause is the underlying error, HCL diagnostics for parse and decode failures.
	Cause error
}

// Error implements the error interface.
func (e *ManifestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Message, e.File, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *ManifestError) Unwrap() error {
	return e.Cause
}

func newManifestError(typ ManifestErrorType, message, file string, cause error) *ManifestError {
	return &ManifestError{
		Type:    typ,
		Message: message,
		File:    file,
		Cause:   cause,
	}
}
