package skeleton

import (
	"fmt"
	"sort"

	"github.com/golang/geo/r3"
)

// TrackingState is the overall tracking state of a skeleton slot.
type TrackingState int

// Skeleton tracking states.
const (
	NotTracked TrackingState = iota
	PositionOnly
	Tracked
)

func (s TrackingState) String() string {
	switch s {
	case NotTracked:
		return "NotTracked"
	case PositionOnly:
		return "PositionOnly"
	case Tracked:
		return "Tracked"
	default:
		return fmt.Sprintf("TrackingState(%d)", int(s))
	}
}

// ParseTrackingState resolves a symbolic skeleton tracking state.
func ParseTrackingState(s string) (TrackingState, error) {
	switch s {
	case "NotTracked":
		return NotTracked, nil
	case "PositionOnly":
		return PositionOnly, nil
	case "Tracked":
		return Tracked, nil
	}
	return 0, fmt.Errorf("%w: skeleton state %q", ErrUnknownState, s)
}

// Frame is one body pose at one instant.
//
// Joints is only populated when State is Tracked, and Position is only
// meaningful when State is not NotTracked.
type Frame struct {
	TrackingID int
	State      TrackingState
	Position   r3.Vector
	Joints     []Joint
}

// Normalize returns a copy that satisfies the frame invariants: joints are
// dropped unless Tracked, the position is zeroed when NotTracked, and joints
// are sorted by type.
func (f Frame) Normalize() Frame {
	out := Frame{TrackingID: f.TrackingID, State: f.State, Position: f.Position}
	if f.State == NotTracked {
		out.Position = r3.Vector{}
	}
	if f.State == Tracked && len(f.Joints) > 0 {
		out.Joints = make([]Joint, len(f.Joints))
		copy(out.Joints, f.Joints)
		sort.SliceStable(out.Joints, func(i, j int) bool { return out.Joints[i].Type < out.Joints[j].Type })
	}
	return out
}

// Joint returns the joint of type t if present.
func (f Frame) Joint(t JointType) (Joint, bool) {
	for _, j := range f.Joints {
		if j.Type == t {
			return j, true
		}
	}
	return Joint{}, false
}

// Origin is the point joint positions are measured from for
// translation-invariant comparisons: the hip centre when tracked, otherwise
// the root position.
func (f Frame) Origin() r3.Vector {
	if j, ok := f.Joint(HipCenter); ok && j.State != JointNotTracked {
		return j.Position
	}
	return f.Position
}

// Relative returns joint positions relative to Origin, indexed by JointType.
// The bool slice marks which entries hold a tracked or inferred joint.
func (f Frame) Relative() ([JointCount]r3.Vector, [JointCount]bool) {
	var pos [JointCount]r3.Vector
	var ok [JointCount]bool
	if f.State != Tracked {
		return pos, ok
	}
	origin := f.Origin()
	for _, j := range f.Joints {
		if !j.Type.Valid() || j.State == JointNotTracked {
			continue
		}
		pos[j.Type] = j.Position.Sub(origin)
		ok[j.Type] = true
	}
	return pos, ok
}

// SelectTracked picks the skeleton to follow from a sensor's slot array.
// It prefers preferredID when still tracked, then the first tracked slot.
func SelectTracked(slots []Frame, preferredID int) (Frame, bool) {
	first := -1
	for i, s := range slots {
		if s.State != Tracked {
			continue
		}
		if s.TrackingID == preferredID {
			return s, true
		}
		if first < 0 {
			first = i
		}
	}
	if first < 0 {
		return Frame{}, false
	}
	return slots[first], true
}
