package transcript

import (
	"errors"
	"fmt"
)

// ErrMalformed is the cause of every ParseError produced when the page text
// does not follow the expected layout.
var ErrMalformed = errors.New("malformed transcript")

// ParseError reports a layout violation. A ParseError is fatal for the
// student record it occurred in.
type ParseError struct {
	// Subject is the subject code being scanned, empty for summary fields.
	Subject string
	// Offset is the byte offset of the failing entry within the scanned text,
	// or -1 when the field is missing altogether.
	Offset int
	// Field names the field that could not be read.
	Field string
	// Snippet is a short excerpt of the text at Offset.
	Snippet string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var where string
	if e.Subject != "" {
		where = fmt.Sprintf("%s entry at offset %d", e.Subject, e.Offset)
	} else if e.Offset >= 0 {
		where = fmt.Sprintf("offset %d", e.Offset)
	}

	msg := "transcript: " + e.Field
	if where != "" {
		msg += " in " + where
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Snippet != "" {
		msg += fmt.Sprintf(" (near %q)", e.Snippet)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func missingField(field string) *ParseError {
	return &ParseError{Offset: -1, Field: field, Err: ErrMalformed}
}

func snippet(text string, offset int) string {
	const width = 40
	if offset < 0 || offset >= len(text) {
		return ""
	}
	end := offset + width
	if end > len(text) {
		end = len(text)
	}
	return text[offset:end]
}
