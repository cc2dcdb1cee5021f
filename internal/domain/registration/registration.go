// Package registration re-projects a colour frame into the depth camera's
// pixel grid.
package registration

import (
	"fmt"

	"github.com/okian/kinetic/internal/domain/frame"
)

// Register builds a depthWidth x depthHeight image in the colour frame's
// pixel format. Cell i copies the colour pixel at the truncated coordinates
// of proj[i]; cells projected outside the colour image stay zero.
//
// Mismatched geometry is a caller bug and panics with an error wrapping
// frame.ErrPrecondition. Use RegisterChecked at trust boundaries.
func Register(color frame.ColorFrame, depthWidth, depthHeight int, proj frame.Projection) []byte {
	out, err := RegisterChecked(color, depthWidth, depthHeight, proj)
	if err != nil {
		panic(err)
	}
	return out
}

// RegisterChecked is Register with the precondition reported as an error.
func RegisterChecked(color frame.ColorFrame, depthWidth, depthHeight int, proj frame.Projection) ([]byte, error) {
	if err := color.Validate(); err != nil {
		return nil, err
	}
	if depthWidth <= 0 || depthHeight <= 0 {
		return nil, fmt.Errorf("%w: depth grid %dx%d", frame.ErrPrecondition, depthWidth, depthHeight)
	}
	if len(proj) != depthWidth*depthHeight {
		return nil, fmt.Errorf("%w: %d projections for a %dx%d depth grid",
			frame.ErrPrecondition, len(proj), depthWidth, depthHeight)
	}

	bpp := color.BytesPerPixel
	stride := color.RowStride()
	out := make([]byte, len(proj)*bpp)
	for i, p := range proj {
		if !p.InBounds(color.Width, color.Height) {
			continue
		}
		src := int(p.Y)*stride + int(p.X)*bpp
		copy(out[i*bpp:(i+1)*bpp], color.Pixels[src:src+bpp])
	}
	return out, nil
}

// Registrar remembers the coverage of its last registration.
type Registrar struct {
	lastCoverage float64
}

// Register registers color into the depth grid and records coverage.
func (r *Registrar) Register(color frame.ColorFrame, depth frame.DepthFrame, proj frame.Projection) ([]byte, error) {
	out, err := RegisterChecked(color, depth.Width, depth.Height, proj)
	if err != nil {
		return nil, err
	}
	r.lastCoverage = proj.Coverage(color.Width, color.Height)
	return out, nil
}

// LastCoverage returns the mapped-cell fraction of the last call to Register.
func (r *Registrar) LastCoverage() float64 {
	return r.lastCoverage
}
