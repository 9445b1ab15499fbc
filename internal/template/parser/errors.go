package parser

import "fmt"

// ParseErrorType represents the type of parsing error.
type ParseErrorType int

const (
	// InvalidDirectiveSyntax indicates malformed directive syntax.
	InvalidDirectiveSyntax ParseErrorType = iota
	// UnexpectedDirective indicates a closer without a matching opener.
	UnexpectedDirective
	// UnclosedBlock indicates a block still open at end of input.
	UnclosedBlock
	// IndentationMismatch indicates a line that does not start with the
	// indentation captured by its enclosing block.
	IndentationMismatch
	// DuplicateSection indicates two @section definitions with the same name.
	DuplicateSection
	// SectionNotTopLevel indicates an @section nested inside another block.
	SectionNotTopLevel
	// EmptyOutputKey indicates an @output directive without a writer key.
	EmptyOutputKey
	// UnmatchedParenthesis indicates an inline @( without its closing parenthesis.
	UnmatchedParenthesis
	// DuplicateParameter indicates two @param declarations with the same name.
	DuplicateParameter
)

// String returns the string representation of the error type.
func (t ParseErrorType) String() string {
	switch t {
	case InvalidDirectiveSyntax:
		return "invalid directive syntax"
	case UnexpectedDirective:
		return "unexpected directive"
	case UnclosedBlock:
		return "unclosed block"
	case IndentationMismatch:
		return "indentation mismatch"
	case DuplicateSection:
		return "duplicate section"
	case SectionNotTopLevel:
		return "section not top level"
	case EmptyOutputKey:
		return "empty output key"
	case UnmatchedParenthesis:
		return "unmatched parenthesis"
	case DuplicateParameter:
		return "duplicate parameter"
	default:
		return "unknown"
	}
}

// ParseError represents a template parsing error with detailed context.
type ParseError struct {
	// Type is the error type.
	Type ParseErrorType
	// Message is the error message.
	Message string
	// File is the template source name (empty if parsed from memory).
	File string
	// Line is the line number where the error occurred (1-indexed, 0 if unknown).
	Line int
	// Directive is the problematic directive text.
	Directive string
	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := ""
	switch {
	case e.File != "" && e.Line > 0:
		loc = fmt.Sprintf("%s:%d: ", e.File, e.Line)
	case e.File != "":
		loc = e.File + ": "
	case e.Line > 0:
		loc = fmt.Sprintf("line %d: ", e.Line)
	}
	if e.Directive != "" {
		return fmt.Sprintf("%s%s (directive: %s)", loc, e.Message, e.Directive)
	}
	return loc + e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// newParseErrorWithDirective creates a ParseError with directive context.
func newParseErrorWithDirective(typ ParseErrorType, message, directive string) *ParseError {
	return &ParseError{
		Type:      typ,
		Message:   message,
		Directive: directive,
	}
}
