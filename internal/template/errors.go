package template

import (
	"errors"
	"fmt"
)

// Errors returned while parsing templates.
var (
	// ErrUnknownToken indicates a placeholder naming no registered token type.
	ErrUnknownToken = errors.New("unknown token type")

	// ErrUnknownAttribute indicates an attribute key no processor handles.
	ErrUnknownAttribute = errors.New("unknown token attribute")

	// ErrBadAttribute indicates an attribute that cannot be split into key and value.
	ErrBadAttribute = errors.New("malformed token attribute")
)

// ParseError describes a placeholder that could not be parsed.
type ParseError struct {
	Template string
	Offset   int
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Template != "" {
		return fmt.Sprintf("template %s: offset %d: %s", e.Template, e.Offset, e.Message)
	}
	return fmt.Sprintf("template offset %d: %s", e.Offset, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
