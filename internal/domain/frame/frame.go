// Package frame holds the raw pixel buffers delivered by a depth sensor.
//
// The types are plain data: they own their slices and expose bounds-checked
// accessors. Nothing in this package allocates per frame beyond what the
// caller asks for.
package frame

import "fmt"

// Common sensor geometry.
const (
	// BytesPerPixelBGRA is the size of one interleaved B,G,R,A colour pixel.
	BytesPerPixelBGRA = 4
)

// DepthFrame is a row-major grid of 16-bit depth samples. A sample of 0 means
// the sensor got no return for that cell.
type DepthFrame struct {
	Width   int
	Height  int
	Samples []uint16

	// MinReliable and MaxReliable bound the samples the sensor considers valid.
	MinReliable uint16
	MaxReliable uint16
}

// NewDepthFrame allocates a zeroed depth frame.
func NewDepthFrame(width, height int, minReliable, maxReliable uint16) DepthFrame {
	return DepthFrame{
		Width:       width,
		Height:      height,
		Samples:     make([]uint16, width*height),
		MinReliable: minReliable,
		MaxReliable: maxReliable,
	}
}

// Validate checks that the sample slice matches the declared geometry.
func (d DepthFrame) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: depth frame %dx%d", ErrPrecondition, d.Width, d.Height)
	}
	if len(d.Samples) != d.Width*d.Height {
		return fmt.Errorf("%w: depth frame %dx%d has %d samples", ErrPrecondition, d.Width, d.Height, len(d.Samples))
	}
	return nil
}

// At returns the sample at (x, y).
func (d DepthFrame) At(x, y int) (uint16, error) {
	if x < 0 || y < 0 || x >= d.Width || y >= d.Height {
		return 0, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrPrecondition, x, y, d.Width, d.Height)
	}
	return d.Samples[y*d.Width+x], nil
}

// Reliable reports whether sample lies in the frame's reliable range.
func (d DepthFrame) Reliable(sample uint16) bool {
	return sample >= d.MinReliable && sample <= d.MaxReliable
}

// ColorFrame is an interleaved colour image. Stride is the byte distance
// between the starts of two rows and may exceed Width*BytesPerPixel.
type ColorFrame struct {
	Width         int
	Height        int
	BytesPerPixel int
	Stride        int
	Pixels        []byte
}

// NewColorFrame allocates a zeroed, tightly packed colour frame.
func NewColorFrame(width, height, bytesPerPixel int) ColorFrame {
	return ColorFrame{
		Width:         width,
		Height:        height,
		BytesPerPixel: bytesPerPixel,
		Stride:        width * bytesPerPixel,
		Pixels:        make([]byte, width*height*bytesPerPixel),
	}
}

// RowStride returns Stride, or the packed row size when Stride is unset.
func (c ColorFrame) RowStride() int {
	if c.Stride > 0 {
		return c.Stride
	}
	return c.Width * c.BytesPerPixel
}

// Validate checks that the pixel slice can hold the declared geometry.
func (c ColorFrame) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.BytesPerPixel <= 0 {
		return fmt.Errorf("%w: color frame %dx%dx%d", ErrPrecondition, c.Width, c.Height, c.BytesPerPixel)
	}
	stride := c.RowStride()
	if stride < c.Width*c.BytesPerPixel {
		return fmt.Errorf("%w: stride %d shorter than row of %d bytes", ErrPrecondition, stride, c.Width*c.BytesPerPixel)
	}
	need := stride*(c.Height-1) + c.Width*c.BytesPerPixel
	if len(c.Pixels) < need {
		return fmt.Errorf("%w: color frame needs %d bytes, has %d", ErrPrecondition, need, len(c.Pixels))
	}
	return nil
}

// Pixel returns the bytes of the pixel at (x, y). The returned slice aliases
// the frame's storage.
func (c ColorFrame) Pixel(x, y int) ([]byte, error) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return nil, fmt.Errorf("%w: (%d,%d) outside %dx%d", ErrPrecondition, x, y, c.Width, c.Height)
	}
	off := y*c.RowStride() + x*c.BytesPerPixel
	return c.Pixels[off : off+c.BytesPerPixel], nil
}

// ColorPoint is a depth cell projected into colour image pixel space.
type ColorPoint struct {
	X float32
	Y float32
}

// InBounds reports whether p lands inside a width x height colour image.
func (p ColorPoint) InBounds(width, height int) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < float32(width) && p.Y < float32(height)
}

// Projection holds one ColorPoint per depth cell in row-major order.
// Cells the mapper could not place carry negative or overflowing coordinates.
type Projection []ColorPoint

// Coverage returns the fraction of cells that land inside the colour image.
func (p Projection) Coverage(colorWidth, colorHeight int) float64 {
	if len(p) == 0 {
		return 0
	}
	mapped := 0
	for _, pt := range p {
		if pt.InBounds(colorWidth, colorHeight) {
			mapped++
		}
	}
	return float64(mapped) / float64(len(p))
}
