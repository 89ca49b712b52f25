package importer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoData is returned when the file has no header or no data rows.
	ErrNoData = errors.New("csv must contain a header row and at least one data row")

	// ErrMissingName is returned by Convert when the routine name is blank.
	ErrMissingName = errors.New("routine name is required")
)

// HeaderValidationError lists required columns absent from the header row.
// Row parsing does not start when this error is returned.
type HeaderValidationError struct {
	Missing []string
}

func (e *HeaderValidationError) Error() string {
	return "missing headers: " + strings.Join(e.Missing, ", ")
}

// RowShapeError reports a non-blank row whose field count differs from the
// header.
type RowShapeError struct {
	Row      int
	Expected int
	Actual   int
}

func (e *RowShapeError) Error() string {
	return fmt.Sprintf("row %d: wrong number of columns, expected %d, found %d", e.Row, e.Expected, e.Actual)
}

// FieldError reports an invalid value in one column of one row.
type FieldError struct {
	Row     int
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("row %d, %s: %s", e.Row, e.Field, e.Message)
}

// Problem is the serializable form of an import error.
type Problem struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ProblemOf describes err for display in a problem list.
func ProblemOf(err error) Problem {
	var (
		he *HeaderValidationError
		se *RowShapeError
		fe *FieldError
	)
	switch {
	case errors.As(err, &he):
		return Problem{Row: 1, Field: "header", Message: he.Error()}
	case errors.As(err, &se):
		return Problem{Row: se.Row, Field: "general", Message: fmt.Sprintf("expected %d columns, found %d", se.Expected, se.Actual)}
	case errors.As(err, &fe):
		return Problem{Row: fe.Row, Field: fe.Field, Message: fe.Message}
	default:
		return Problem{Field: "general", Message: err.Error()}
	}
}
