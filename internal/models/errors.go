package models

import (
	"errors"
	"fmt"
	"strings"
)

// Import failure kinds. Every one of them aborts the whole import.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedInput    = errors.New("malformed input")
	ErrDateParse         = errors.New("date parse error")
	ErrCategoryLookup    = errors.New("category lookup error")
)

// ImportError locates a failure inside an uploaded file. Row is 1-based and
// counts data rows only; zero means the failure is not tied to a row.
type ImportError struct {
	Kind   error
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ImportError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Row > 0 {
		fmt.Fprintf(&b, " at row %d", e.Row)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, " column %q", e.Column)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " value %q", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ImportError) Is(target error) bool {
	return target == e.Kind
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
