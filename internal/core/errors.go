package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedIdentifier is returned when an objectIdentifier cell does not
	// decode to exactly a type and a value.
	ErrMalformedIdentifier = errors.New("malformed object identifier")

	// ErrMissingField is returned when a required column or cell is absent.
	ErrMissingField = errors.New("missing required field")
)

// IdentifierError reports the raw objectIdentifier that failed to decode.
type IdentifierError struct {
	Row   int    // 1-based data row, 0 if unknown
	Raw   string // Cell value as read
	Parts int    // Number of components found
}

func (e *IdentifierError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("row %d: %s %q: got %d components, want 2", e.Row, ErrMalformedIdentifier, e.Raw, e.Parts)
	}
	return fmt.Sprintf("%s %q: got %d components, want 2", ErrMalformedIdentifier, e.Raw, e.Parts)
}

func (e *IdentifierError) Unwrap() error {
	return ErrMalformedIdentifier
}

// MissingFieldError lists the fields absent from a table header or a row.
type MissingFieldError struct {
	Table  string   // "objects" or "events"
	Row    int      // 1-based data row; 0 means the header
	Fields []string // Missing field names
}

func (e *MissingFieldError) Error() string {
	where := "header"
	if e.Row > 0 {
		where = fmt.Sprintf("row %d", e.Row)
	}
	return fmt.Sprintf("%s table %s: missing required column %s",
		e.Table, where, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// IOError wraps a filesystem failure with the path involved.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
