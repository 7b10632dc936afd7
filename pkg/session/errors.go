package session

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrReadOnly is returned by mutators of a read-only session.
	ErrReadOnly = errors.New("session: read-only")
	// ErrUnknownField is returned for names the schema does not declare.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrIncomplete is matched by *IncompleteError.
	ErrIncomplete = errors.New("session: required fields missing")
	// ErrNotChart is returned by SetChartSite for fields of another kind.
	ErrNotChart = errors.New("session: field is not a chart")
)

// IncompleteError blocks submission while visible required fields are blank.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("session: %d required field(s) missing: %s", len(e.Missing), strings.Join(e.Missing, ", "))
}

func (e *IncompleteError) Unwrap() error {
	return ErrIncomplete
}
