package params

import "fmt"

// ConversionErrorType categorizes conversion errors.
type ConversionErrorType int

const (
	// MissingValue indicates a declared parameter without a value.
	MissingValue ConversionErrorType = iota
	// UnknownParameter indicates a value for an undeclared parameter.
	UnknownParameter
	// UnsupportedType indicates a parameter type values cannot be converted to.
	UnsupportedType
	// InvalidValue indicates a value that does not convert to the parameter type.
	InvalidValue
	// InvalidAssignment indicates a malformed "name=value" argument.
	InvalidAssignment
)

// ConversionError reports a parameter value that could not be converted.
type ConversionError struct {
	// Type categorizes the error.
	Type ConversionErrorType
	// Name is the parameter name.
	Name string
	// ParamType is the declared parameter type.
	ParamType string
	// Value is the offending value (if any).
	Value string
	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	var msg string
	switch e.Type {
	case MissingValue:
		msg = fmt.Sprintf("missing value for parameter %s (%s)", e.Name, e.ParamType)
	case UnknownParameter:
		msg = fmt.Sprintf("unknown parameter %s", e.Name)
	case UnsupportedType:
		msg = fmt.Sprintf("parameter %s has unsupported type %s", e.Name, e.ParamType)
	case InvalidAssignment:
		msg = fmt.Sprintf("invalid parameter assignment %q, expected name=value", e.Value)
	default:
		msg = fmt.Sprintf("invalid value %q for parameter %s (%s)", e.Value, e.Name, e.ParamType)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *ConversionError) Unwrap() error {
	return e.Cause
}

func newConversionError(typ ConversionErrorType, name, paramType, value string, cause error) *ConversionError {
	return &ConversionError{
		Type:      typ,
		Name:      name,
		ParamType: paramType,
		Value:     value,
		Cause:     cause,
	}
}
