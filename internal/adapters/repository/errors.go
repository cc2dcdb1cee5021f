package repository

import "errors"

// Sentinel kinds for gesture directory errors.
var (
	ErrNotFound    = errors.New("gesture not found")
	ErrInvalidFile = errors.New("invalid gesture file")
)
