package derive

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidRequest wraps request validation failures.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoData is returned by views when a column has no valid values.
	ErrNoData = errors.New("no data")
)

// UnknownFieldError reports a variable, metric or table column name that
// does not exist.
type UnknownFieldError struct {
	Kind string
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Name)
}

// MissingInputError reports a metric whose input reading is missing on a row.
type MissingInputError struct {
	Metric string
	Field  string
	Time   time.Time
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("metric %s: input %s missing at %s", e.Metric, e.Field, e.Time.Format("2006-01-02 15:04"))
}
