package geometry

import (
	"errors"
	"fmt"
)

// ErrGeometryQuery matches every failure to read or derive window geometry.
var ErrGeometryQuery = errors.New("geometry query failed")

var errZeroHeight = errors.New("rectangle has zero height")

// QueryError describes a geometry lookup that failed for one window.
type QueryError struct {
	Window uint32
	Op     string
	Err    error
}

func (e *QueryError) Error() string {
	if e.Window != 0 {
		return fmt.Sprintf("geometry: %s for window 0x%x: %v", e.Op, e.Window, e.Err)
	}
	return fmt.Sprintf("geometry: %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrGeometryQuery) match any QueryError.
func (e *QueryError) Is(target error) bool {
	return target == ErrGeometryQuery
}

// WithWindow returns err tagged with the window handle when it is a QueryError
// without one, or wraps it in a new QueryError otherwise.
func WithWindow(window uint32, op string, err error) error {
	if err == nil {
		return nil
	}
	var qe *QueryError
	if errors.As(err, &qe) && qe.Window == 0 {
		return &QueryError{Window: window, Op: qe.Op, Err: qe.Err}
	}
	return &QueryError{Window: window, Op: op, Err: err}
}
