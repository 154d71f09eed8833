package cdaengine

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseErrorKind identifies the category of a parse failure.
type ParseErrorKind string

const (
	// ParseErrorEmptyInput is returned for an empty byte buffer.
	ParseErrorEmptyInput ParseErrorKind = "empty-input"
	// ParseErrorTooLarge is returned when the input exceeds the configured
	// maximum document size. The size check precedes any lexical work.
	ParseErrorTooLarge ParseErrorKind = "document-too-large"
	// ParseErrorMalformed is returned for malformed markup.
	ParseErrorMalformed ParseErrorKind = "malformed-document"
	// ParseErrorDepthExceeded is returned when nesting exceeds the
	// configured maximum depth.
	ParseErrorDepthExceeded ParseErrorKind = "depth-exceeded"
)

// ParseError is returned when a document cannot be parsed. It is always fatal
// to the parse call: no partial tree is returned alongside it.
type ParseError struct {
	Kind    ParseErrorKind
	Message string
	Line    int
	Column  int
	cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error (%s) at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error (%s): %s", e.Kind, e.Message)
}

// Unwrap returns the underlying scanner error, if any.
func (e *ParseError) Unwrap() error {
	return e.cause
}

// NewParseError creates a ParseError without position information.
func NewParseError(kind ParseErrorKind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}

// NewParseErrorAt creates a ParseError with 1-based position information.
func NewParseErrorAt(kind ParseErrorKind, message string, line, column int) *ParseError {
	return &ParseError{Kind: kind, Message: message, Line: line, Column: column}
}

// WrapParseError creates a ParseError around a lower-level scanner error.
func WrapParseError(kind ParseErrorKind, cause error, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message, cause: errors.WithStack(cause)}
}

// IsParseError reports whether err is (or wraps) a ParseError of the given
// kind.
func IsParseError(err error, kind ParseErrorKind) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind == kind
	}
	return false
}

// AsParseError extracts a ParseError from err if present.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	ok := errors.As(err, &pe)
	return pe, ok
}

// SerializeError is returned when serialized output cannot be encoded.
// Practically unreachable for trees built by the parser, but surfaced as a
// distinct error kind so callers can tell it apart from parse failures.
type SerializeError struct {
	Message string
	cause   error
}

// Error implements the error interface.
func (e *SerializeError) Error() string {
	return "serialization error: " + e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *SerializeError) Unwrap() error {
	return e.cause
}

// NewSerializeError creates a SerializeError.
func NewSerializeError(message string) *SerializeError {
	return &SerializeError{Message: message}
}
