package scenario

import "errors"

var (
	// ErrEmpty is returned for a file without scenarios.
	ErrEmpty = errors.New("no scenarios")

	// ErrUnknownName is returned when a step refers to an unbound name.
	ErrUnknownName = errors.New("unknown name")

	// ErrUnknownOp is returned for an unrecognized step op.
	ErrUnknownOp = errors.New("unknown op")
)
