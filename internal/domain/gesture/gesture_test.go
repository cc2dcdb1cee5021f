package gesture_test

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/okian/kinetic/internal/domain/skeleton"
)

// pose builds a tracked frame with every joint at a sinusoidal offset from
// root. scale stretches the body, phase shifts the motion.
func pose(id int, root r3.Vector, t, scale, phase float64) skeleton.Frame {
	f := skeleton.Frame{TrackingID: id, State: skeleton.Tracked, Position: root}
	for j := range skeleton.JointCount {
		off := r3.Vector{
			X: 0.1 * float64(j) * scale,
			Y: 0.05*float64(j)*scale + 0.2*math.Sin(t*0.1+float64(j)+phase),
			Z: 0.01 * float64(j),
		}
		if j == int(skeleton.HipCenter) {
			off = r3.Vector{}
		}
		f.Joints = append(f.Joints, skeleton.Joint{
			Type:     skeleton.JointType(j),
			State:    skeleton.JointTracked,
			Position: root.Add(off),
		})
	}
	return f
}

func sequence(n int, root r3.Vector, scale, phase float64) []skeleton.Frame {
	out := make([]skeleton.Frame, n)
	for i := range out {
		out[i] = pose(i, root, float64(i), scale, phase)
	}
	return out
}
