package csv

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch reports a cell that cannot be parsed for the type its
	// column is declared with.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrMalformed reports input that is not valid delimited text.
	ErrMalformed = errors.New("malformed csv")

	// ErrNoHeader reports an input without a header row.
	ErrNoHeader = errors.New("missing header row")
)

// SchemaError locates a schema mismatch. It unwraps to ErrSchemaMismatch.
type SchemaError struct {
	Line   int    // 1-based record number, header included
	Column string // column identifier as it appears in the header
	Value  string
	Err    error // underlying parse error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("line %d: column %q: value %q is not numeric: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *SchemaError) Unwrap() []error { return []error{ErrSchemaMismatch, e.Err} }
