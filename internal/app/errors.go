package app

import "fmt"

// AppErrorType represents the type of application error.
type AppErrorType int

const (
	// GenerateFailed indicates the template could not be turned into source.
	GenerateFailed AppErrorType = iota
	// CompileFailed indicates the generated unit could not be compiled.
	CompileFailed
	// RenderFailed indicates the unit failed while running.
	RenderFailed
	// ParameterFailed indicates parameter values could not be converted.
	ParameterFailed
	// OutputFailed indicates rendered output could not be written.
	OutputFailed
	// ValidationFailed indicates validation failed.
	ValidationFailed
)

// String returns the string representation of the error type.
func (t AppErrorType) String() string {
	switch t {
	case GenerateFailed:
		return "generate failed"
	case CompileFailed:
		return "compile failed"
	case RenderFailed:
		return "render failed"
	case ParameterFailed:
		return "parameter failed"
	case OutputFailed:
		return "output failed"
	case ValidationFailed:
		return "validation failed"
	default:
		return "unknown"
	}
}

// AppError represents an application-layer error.
type AppError struct {
	// Type is the error type.
	Type AppErrorType
	// Message is the error message.
	Message string
	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError.
func NewAppError(errType AppErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewGenerateError creates a generate error.
func NewGenerateError(message string, cause error) *AppError {
	return NewAppError(GenerateFailed, message, cause)
}

// NewCompileError creates a compile error.
func NewCompileError(message string, cause error) *AppError {
	return NewAppError(CompileFailed, message, cause)
}

// NewRenderError creates a render error.
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(RenderFailed, message, cause)
}

// NewParameterError creates a parameter error.
func NewParameterError(message string, cause error) *AppError {
	return NewAppError(ParameterFailed, message, cause)
}

// NewOutputError creates an output error.
func NewOutputError(message string, cause error) *AppError {
	return NewAppError(OutputFailed, message, cause)
}

// NewValidationError creates a validation error.
func NewValidationError(message string, cause error) *AppError {
	return NewAppError(ValidationFailed, message, cause)
}
