package text

import "errors"

// ErrBadRef is returned when a ref was not produced by a Text or lies
// outside it.
var ErrBadRef = errors.New("ref outside text")
