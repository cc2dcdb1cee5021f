package gesture

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/okian/kinetic/internal/domain/skeleton"
)

const (
	// metresToCentimetres scales joint offsets so distances read in centimetres.
	metresToCentimetres = 100

	// MissPenalty is the per-joint cost, in centimetres, of a joint tracked in
	// only one of the two compared poses.
	MissPenalty = 100.0
)

// pose is a skeleton frame reduced to root-relative joint offsets.
type pose struct {
	pos [skeleton.JointCount]r3.Vector
	ok  [skeleton.JointCount]bool
}

func poseOf(f skeleton.Frame) pose {
	var p pose
	p.pos, p.ok = f.Relative()
	return p
}

func posesOf(frames []skeleton.Frame) []pose {
	out := make([]pose, len(frames))
	for i, f := range frames {
		out[i] = poseOf(f)
	}
	return out
}

// poseDistance is the summed joint displacement between a and b in
// centimetres. Joints missing from both poses are ignored.
func poseDistance(a, b *pose) float64 {
	var sum float64
	for j := range skeleton.JointCount {
		switch {
		case a.ok[j] && b.ok[j]:
			sum += a.pos[j].Sub(b.pos[j]).Norm() * metresToCentimetres
		case a.ok[j] || b.ok[j]:
			sum += MissPenalty
		}
	}
	return sum
}

// Compare returns the dynamic time warping distance between a live sequence
// and a reference sequence. The newest live frame is aligned with the last
// reference frame and the alignment may start anywhere in live, so a live
// buffer holding extra leading frames is not penalised. Each live frame
// covers at most two reference frames, so the aligned live span is at least
// half the reference length; shorter live sequences yield +Inf. The
// accumulated cost is normalised by the reference length. Empty inputs yield
// +Inf.
func Compare(live, reference []skeleton.Frame) float64 {
	return dtw(posesOf(live), posesOf(reference))
}

func dtw(live, ref []pose) float64 {
	n, m := len(live), len(ref)
	if n == 0 || m == 0 {
		return math.Inf(1)
	}
	inf := math.Inf(1)

	// step holds paths whose last move consumed a live frame, skip those whose
	// last move only advanced the reference. A skip never follows a skip.
	step := mat.NewDense(n+1, m+1, nil)
	skip := mat.NewDense(n+1, m+1, nil)
	for j := 1; j <= m; j++ {
		step.Set(0, j, inf)
		skip.Set(0, j, inf)
	}
	for i := 0; i <= n; i++ {
		skip.Set(i, 0, inf)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			d := poseDistance(&live[i-1], &ref[j-1])
			prev := math.Min(
				math.Min(step.At(i-1, j-1), skip.At(i-1, j-1)),
				math.Min(step.At(i-1, j), skip.At(i-1, j)),
			)
			step.Set(i, j, d+prev)
			skip.Set(i, j, d+step.At(i, j-1))
		}
	}
	return math.Min(step.At(n, m), skip.At(n, m)) / float64(m)
}
