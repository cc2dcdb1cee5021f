package session

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid session transition")
	ErrNotReplaying      = errors.New("session is not replaying")
	ErrEmptyReplay       = errors.New("replay has no frames")
	ErrCursor            = errors.New("replay cursor out of range")
)
