package epw

import (
	"errors"
	"fmt"
)

// ErrNoRecords is returned when the header is valid but no data lines follow.
var ErrNoRecords = errors.New("epw: file has no data records")

// HeaderParseError reports a malformed LOCATION or DATA PERIODS header.
type HeaderParseError struct {
	Line   int
	Field  string
	Raw    string
	Reason string
}

func (e *HeaderParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("epw: header line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("epw: header line %d: %s %q: %s", e.Line, e.Field, e.Raw, e.Reason)
}

// RecordParseError reports a data line with the wrong number of columns.
type RecordParseError struct {
	Line int
	Got  int
	Want int
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("epw: line %d: expected %d columns, got %d", e.Line, e.Want, e.Got)
}

// FieldTypeError reports a value that does not parse as its column's type or
// falls outside the column's calendar range.
type FieldTypeError struct {
	Line   int
	Column int // 1-based, as in the EPW documentation
	Field  string
	Raw    string
	Err    error
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("epw: line %d column %d (%s): invalid value %q: %v", e.Line, e.Column, e.Field, e.Raw, e.Err)
}

func (e *FieldTypeError) Unwrap() error { return e.Err }

// SequenceError reports a record that is out of order or, unless gaps are
// allowed, does not directly follow its predecessor.
type SequenceError struct {
	Line int
	Prev Timestamp
	Got  Timestamp
	Gap  bool
}

func (e *SequenceError) Error() string {
	if e.Gap {
		return fmt.Sprintf("epw: line %d: gap in records, %s follows %s", e.Line, e.Got, e.Prev)
	}
	return fmt.Sprintf("epw: line %d: record %s is not after %s", e.Line, e.Got, e.Prev)
}
