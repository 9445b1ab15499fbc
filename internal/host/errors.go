package host

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownWriter is matched by runtime errors caused by output to a
	// writer key missing from the writer map.
	ErrUnknownWriter = errors.New("unknown writer key")
	// ErrEmptyWriterKey is matched by runtime errors caused by output to an
	// empty writer key.
	ErrEmptyWriterKey = errors.New("empty writer key")
)

// Diagnostic codes.
const (
	CodeSyntax    = "syntax"
	CodeCompile   = "compile"
	CodeReference = "reference"
	CodeLocked    = "locked"
)

// Diagnostic is one problem reported while compiling a unit.
type Diagnostic struct {
	// File is the file named by the position, the template when the source
	// carries line markers.
	File string
	// Line is the 1-based line (0 if unknown).
	Line int
	// Column is the 1-based column (0 if unknown).
	Column int
	// Message is the compiler message without position.
	Message string
	// Code classifies the diagnostic.
	Code string
}

// String formats the diagnostic as "file:line:col: message".
func (d Diagnostic) String() string {
	var pos string
	switch {
	case d.Line > 0 && d.Column > 0:
		pos = fmt.Sprintf("%d:%d", d.Line, d.Column)
	case d.Line > 0:
		pos = fmt.Sprintf("%d", d.Line)
	}
	switch {
	case d.File != "" && pos != "":
		return d.File + ":" + pos + ": " + d.Message
	case pos != "":
		return pos + ": " + d.Message
	case d.File != "":
		return d.File + ": " + d.Message
	}
	return d.Message
}

// CompileError reports a unit that could not be compiled.
type CompileError struct {
	// Diagnostics are the forwarded compiler diagnostics, never empty.
	Diagnostics []Diagnostic
	// Locked is set when the artifact name was already taken.
	Locked bool
	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "compile failed"
	}
	msg := "compile failed: " + e.Diagnostics[0].String()
	if n := len(e.Diagnostics) - 1; n > 0 {
		msg += fmt.Sprintf(" (and %d more)", n)
	}
	return msg
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// IsLocked reports whether the failure is retryable with another artifact name.
func (e *CompileError) IsLocked() bool {
	return e.Locked
}

// RuntimeErrorType categorizes runtime errors.
type RuntimeErrorType int

const (
	// RuntimeFailed indicates the unit returned an error.
	RuntimeFailed RuntimeErrorType = iota
	// RuntimePanic indicates the unit panicked.
	RuntimePanic
	// RuntimeUnknownWriter indicates output to an unregistered writer key.
	RuntimeUnknownWriter
	// RuntimeEmptyWriterKey indicates output to an empty writer key.
	RuntimeEmptyWriterKey
	// RuntimeArgumentMismatch indicates parameters that do not fit the entry point.
	RuntimeArgumentMismatch
)

// RuntimeError reports a failure while invoking a unit.
type RuntimeError struct {
	// Type categorizes the error.
	Type RuntimeErrorType
	// Message is the error message.
	Message string
	// File is the template the unit was generated from (if known).
	File string
	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying cause error for error unwrapping.
func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// Is matches the writer key sentinels.
func (e *RuntimeError) Is(target error) bool {
	switch target {
	case ErrUnknownWriter:
		return e.Type == RuntimeUnknownWriter
	case ErrEmptyWriterKey:
		return e.Type == RuntimeEmptyWriterKey
	}
	return false
}

// classifyRuntime wraps an error returned by a unit.
func classifyRuntime(err error, file string) *RuntimeError {
	msg := err.Error()
	typ := RuntimeFailed
	switch {
	case strings.HasPrefix(msg, "dcg: unknown writer key"):
		typ = RuntimeUnknownWriter
	case strings.HasPrefix(msg, "dcg: empty writer key"):
		typ = RuntimeEmptyWriterKey
	case strings.HasPrefix(msg, "dcg: panic:"):
		typ = RuntimePanic
	}
	return &RuntimeError{Type: typ, Message: msg, File: file, Cause: err}
}
