package table

import (
	"fmt"
)

// FetchError reports a response with a non-success HTTP status.
type FetchError struct {
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
}

// ParseError reports an expected DOM element or API field that is absent.
// Stage names the piece that could not be located (e.g. "table", "header").
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s stage: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(stage string, err error) *ParseError {
	return &ParseError{
		Stage: stage,
		Err:   err,
	}
}

// parseErrorf is a shorthand for NewParseError with a formatted message.
func parseErrorf(stage, format string, args ...any) *ParseError {
	return NewParseError(stage, fmt.Errorf(format, args...))
}

// ConversionError reports a value that cannot be cast to a number.
type ConversionError struct {
	Column string
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("converting %q to number: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("converting column %q value %q to number: %v", e.Column, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
