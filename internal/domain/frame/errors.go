package frame

import "errors"

// Sentinel kinds for frame errors.
var (
	// ErrPrecondition marks a caller-supplied buffer whose declared geometry
	// does not match its data. Transforms panic with an error wrapping it.
	ErrPrecondition = errors.New("frame precondition violated")
)
