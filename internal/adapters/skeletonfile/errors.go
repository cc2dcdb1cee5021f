package skeletonfile

import "errors"

// ErrIO marks file system failures, ErrParse malformed documents.
var (
	ErrIO    = errors.New("skeleton file i/o failure")
	ErrParse = errors.New("skeleton file parse failure")
)
