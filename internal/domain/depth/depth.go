// Package depth converts raw depth frames into displayable images.
package depth

import (
	"fmt"
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/okian/kinetic/internal/domain/frame"
)

// Maximum representable depth values.
const (
	// MaxDepthV2 is the largest depth in millimetres reported by the second
	// generation sensor.
	MaxDepthV2 uint16 = 8000
	// MaxDepthUnclipped maps the full 16-bit range.
	MaxDepthUnclipped uint16 = 65535

	grayLevels = 256

	hueNear = 30.0
	hueSpan = 200.0
)

// Divisor returns the value samples are divided by to fit a byte.
func Divisor(maxEncodable uint16) uint16 {
	d := maxEncodable / grayLevels
	if d == 0 {
		return 1
	}
	return d
}

// Render maps each sample inside [minReliable, maxReliable] to
// sample/Divisor(maxEncodable) clamped to a byte; everything else becomes 0.
// The output always has len(samples) bytes. A nil slice is a caller bug.
func Render(samples []uint16, minReliable, maxReliable, maxEncodable uint16) []byte {
	if samples == nil {
		panic(fmt.Errorf("%w: nil depth samples", frame.ErrPrecondition))
	}
	div := Divisor(maxEncodable)
	out := make([]byte, len(samples))
	for i, d := range samples {
		if d < minReliable || d > maxReliable {
			continue
		}
		v := d / div
		if v > 255 {
			v = 255
		}
		out[i] = byte(v)
	}
	return out
}

// Visualizer renders frames for a sensor with a fixed encodable range.
type Visualizer struct {
	MaxEncodable uint16
}

// NewVisualizer returns a Visualizer, falling back to MaxDepthV2 for zero.
func NewVisualizer(maxEncodable uint16) Visualizer {
	if maxEncodable == 0 {
		maxEncodable = MaxDepthV2
	}
	return Visualizer{MaxEncodable: maxEncodable}
}

// Render converts a depth frame into a grayscale byte buffer. It panics if
// the frame's samples do not match its geometry.
func (v Visualizer) Render(f frame.DepthFrame) []byte {
	if err := f.Validate(); err != nil {
		panic(err)
	}
	return Render(f.Samples, f.MinReliable, f.MaxReliable, v.MaxEncodable)
}

// Gray wraps Render output as an image without copying.
func (v Visualizer) Gray(f frame.DepthFrame) *image.Gray {
	return &image.Gray{
		Pix:    v.Render(f),
		Stride: f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Colorize renders reliable samples on a hue ramp from near (orange) to far
// (blue). Unreliable samples stay black.
func (v Visualizer) Colorize(f frame.DepthFrame) *image.RGBA {
	if err := f.Validate(); err != nil {
		panic(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	lo, hi, ok := reliableBounds(f)
	if !ok {
		return img
	}
	span := float64(hi) - float64(lo)
	for i, d := range f.Samples {
		if !f.Reliable(d) {
			img.Set(i%f.Width, i/f.Width, color.Black)
			continue
		}
		ratio := 0.0
		if span > 0 {
			ratio = (float64(d) - float64(lo)) / span
		}
		r, g, b := colorful.Hsv(hueNear+hueSpan*ratio, 1, 1).RGB255()
		img.SetRGBA(i%f.Width, i/f.Width, color.RGBA{R: r, G: g, B: b, A: 255})
	}
	return img
}

// ValidRatio returns the fraction of samples in the reliable range.
func ValidRatio(f frame.DepthFrame) float64 {
	if len(f.Samples) == 0 {
		return 0
	}
	n := 0
	for _, d := range f.Samples {
		if f.Reliable(d) {
			n++
		}
	}
	return float64(n) / float64(len(f.Samples))
}

func reliableBounds(f frame.DepthFrame) (lo, hi uint16, ok bool) {
	lo, hi = f.MaxReliable, f.MinReliable
	for _, d := range f.Samples {
		if !f.Reliable(d) {
			continue
		}
		ok = true
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi, ok
}
