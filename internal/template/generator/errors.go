package generator

import "fmt"

// GeneratorErrorType categorizes generator errors.
type GeneratorErrorType int

const (
	// GeneratorWriteFailed indicates a file write operation failed.
	GeneratorWriteFailed GeneratorErrorType = iota
	// GeneratorProcessFailed indicates the directive tree could not be lowered.
	GeneratorProcessFailed
	// GeneratorPathError indicates an invalid or unsafe path was encountered.
	GeneratorPathError
	// GeneratorUnknownSection indicates a reference to an undefined section.
	GeneratorUnknownSection
	// GeneratorReservedIdentifier indicates a parameter using the reserved "dcg" prefix.
	GeneratorReservedIdentifier
	// GeneratorArtifactLocked indicates the artifact name is already taken.
	GeneratorArtifactLocked
)

// GeneratorError represents generator-specific errors.
type GeneratorError struct {
	// Type categorizes the error.
	Type GeneratorErrorType
	// Message is the error message.
	Message string
	// File is the file path related to the error (if applicable).
	File string
	// Line is the template line related to the error (0 if unknown).
	Line int
	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *GeneratorError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.File != "" {
		if e.Cause != nil {
			return fmt.Sprintf("%s (file: %s): %v", msg, e.File, e.Cause)
		}
		return fmt.Sprintf("%s (file: %s)", msg, e.File)
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	return msg
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *GeneratorError) Unwrap() error {
	return e.Cause
}

// newGeneratorError creates a new GeneratorError.
func newGeneratorError(typ GeneratorErrorType, message, file string, cause error) *GeneratorError {
	return &GeneratorError{
		Type:    typ,
		Message: message,
		File:    file,
		Cause:   cause,
	}
}

// newGeneratorErrorAt creates a GeneratorError tied to a template line.
func newGeneratorErrorAt(typ GeneratorErrorType, message, file string, line int) *GeneratorError {
	return &GeneratorError{
		Type:    typ,
		Message: message,
		File:    file,
		Line:    line,
	}
}
