package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is returned when a mandatory column has no header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrNoValidRows is returned when the headers resolved but no row survived validation.
	ErrNoValidRows = errors.New("no valid records found")
)

// MissingColumnError lists the mandatory fields that could not be resolved.
type MissingColumnError struct {
	Fields []Field
}

func (e *MissingColumnError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f)
	}
	return fmt.Sprintf("%s: %s", ErrMissingColumn, strings.Join(names, ", "))
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}
