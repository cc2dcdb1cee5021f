package gesture

import "errors"

// Sentinel kinds for gesture errors.
var (
	ErrRange         = errors.New("index out of range")
	ErrInvalidConfig = errors.New("invalid gesture config")
	ErrNoStore       = errors.New("gesture config store not configured")
)
