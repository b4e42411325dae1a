package triples

import (
	"errors"
	"fmt"
)

// ErrRelationNotEstablished is reported when a row declares a relation change
// but no relation was created in that row.
var ErrRelationNotEstablished = errors.New("row declares a relation-change with no relation established")

// RowError describes a data-integrity problem in one row of a group.
// The description is still produced; the offending triple is omitted.
type RowError struct {
	Group string
	Row   int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("group %q row %d: %v", e.Group, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// RowErrors extracts the row errors joined into err.
func RowErrors(err error) []*RowError {
	if err == nil {
		return nil
	}
	var out []*RowError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, RowErrors(e)...)
		}
		return out
	}
	var rowErr *RowError
	if errors.As(err, &rowErr) {
		out = append(out, rowErr)
	}
	return out
}
