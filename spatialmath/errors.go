package spatialmath

import "github.com/pkg/errors"

// ErrDivisionByZero is returned when a vector is divided by zero or a zero-length vector is normalized.
var ErrDivisionByZero = errors.New("division by zero")
