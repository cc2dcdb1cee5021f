// Package skeleton models tracked body poses.
package skeleton

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// JointType identifies one of the tracked body joints. Values match the
// integer ids stored in recordings.
type JointType int

// Joint types in sensor order.
const (
	HipCenter JointType = iota
	Spine
	ShoulderCenter
	Head
	ShoulderLeft
	ElbowLeft
	WristLeft
	HandLeft
	ShoulderRight
	ElbowRight
	WristRight
	HandRight
	HipLeft
	KneeLeft
	AnkleLeft
	FootLeft
	HipRight
	KneeRight
	AnkleRight
	FootRight

	// JointCount is the number of joint types.
	JointCount = int(FootRight) + 1
)

var jointNames = [JointCount]string{
	"HipCenter", "Spine", "ShoulderCenter", "Head",
	"ShoulderLeft", "ElbowLeft", "WristLeft", "HandLeft",
	"ShoulderRight", "ElbowRight", "WristRight", "HandRight",
	"HipLeft", "KneeLeft", "AnkleLeft", "FootLeft",
	"HipRight", "KneeRight", "AnkleRight", "FootRight",
}

// Valid reports whether j is a known joint type.
func (j JointType) Valid() bool { return j >= 0 && int(j) < JointCount }

func (j JointType) String() string {
	if !j.Valid() {
		return fmt.Sprintf("JointType(%d)", int(j))
	}
	return jointNames[j]
}

// ParseJointType resolves a symbolic joint name.
func ParseJointType(s string) (JointType, error) {
	for i, n := range jointNames {
		if n == s {
			return JointType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJoint, s)
}

// JointTypeFromID resolves an integer joint id.
func JointTypeFromID(id int) (JointType, error) {
	j := JointType(id)
	if !j.Valid() {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownJoint, id)
	}
	return j, nil
}

// JointTrackingState is the sensor's confidence in one joint position.
type JointTrackingState int

// Joint tracking states.
const (
	JointNotTracked JointTrackingState = iota
	JointInferred
	JointTracked
)

func (s JointTrackingState) String() string {
	switch s {
	case JointNotTracked:
		return "NotTracked"
	case JointInferred:
		return "Inferred"
	case JointTracked:
		return "Tracked"
	default:
		return fmt.Sprintf("JointTrackingState(%d)", int(s))
	}
}

// ParseJointTrackingState resolves a symbolic joint tracking state.
func ParseJointTrackingState(s string) (JointTrackingState, error) {
	switch s {
	case "NotTracked":
		return JointNotTracked, nil
	case "Inferred":
		return JointInferred, nil
	case "Tracked":
		return JointTracked, nil
	}
	return 0, fmt.Errorf("%w: joint state %q", ErrUnknownState, s)
}

// Joint is one joint's position in sensor space, in metres.
type Joint struct {
	Type     JointType
	State    JointTrackingState
	Position r3.Vector
}
