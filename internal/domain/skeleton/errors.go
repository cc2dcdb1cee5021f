package skeleton

import "errors"

// Sentinel kinds for skeleton errors.
var (
	ErrUnknownJoint = errors.New("unknown joint type")
	ErrUnknownState = errors.New("unknown tracking state")
)
