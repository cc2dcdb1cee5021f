package source

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/golang/geo/r3"

	"github.com/okian/kinetic/internal/domain/frame"
	"github.com/okian/kinetic/internal/domain/skeleton"
)

// Synthetic stream defaults.
const (
	DefaultDepthWidth  = 320
	DefaultDepthHeight = 240
	DefaultColorWidth  = 640
	DefaultColorHeight = 480

	// DefaultMinReliable and DefaultMaxReliable bound the synthetic depth
	// range, in millimetres.
	DefaultMinReliable = 500
	DefaultMaxReliable = 4500

	// WavePeriod is the number of frames in one synthetic wave.
	WavePeriod = 60

	// parallaxDivisor sets the horizontal colour camera offset as a fraction
	// of the colour width.
	parallaxDivisor = 40
)

// Pose generates the skeleton for frame i of a synthetic stream.
type Pose func(i int) skeleton.Frame

// Synthetic produces deterministic depth, colour and skeleton streams. It
// implements FrameSource and CoordinateMapper.
type Synthetic struct {
	mu sync.Mutex

	depthW, depthH int
	colorW, colorH int
	limit          int
	pose           Pose
	rng            *rand.Rand

	depthN, colorN, skelN int
	closed                bool
}

var (
	_ FrameSource      = (*Synthetic)(nil)
	_ CoordinateMapper = (*Synthetic)(nil)
)

// SyntheticOption configures a Synthetic source.
type SyntheticOption func(*Synthetic)

// WithDepthSize sets the depth resolution.
func WithDepthSize(w, h int) SyntheticOption {
	return func(s *Synthetic) {
		if w > 0 && h > 0 {
			s.depthW, s.depthH = w, h
		}
	}
}

// WithColorSize sets the colour resolution.
func WithColorSize(w, h int) SyntheticOption {
	return func(s *Synthetic) {
		if w > 0 && h > 0 {
			s.colorW, s.colorH = w, h
		}
	}
}

// WithLimit ends every stream after n frames. Zero means unbounded.
func WithLimit(n int) SyntheticOption {
	return func(s *Synthetic) {
		if n >= 0 {
			s.limit = n
		}
	}
}

// WithPose replaces the skeleton generator.
func WithPose(p Pose) SyntheticOption {
	return func(s *Synthetic) {
		if p != nil {
			s.pose = p
		}
	}
}

// WithSeed seeds the depth noise.
func WithSeed(seed uint64) SyntheticOption {
	return func(s *Synthetic) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// NewSynthetic creates a synthetic source performing a repeating wave.
func NewSynthetic(opts ...SyntheticOption) *Synthetic {
	s := &Synthetic{
		depthW: DefaultDepthWidth,
		depthH: DefaultDepthHeight,
		colorW: DefaultColorWidth,
		colorH: DefaultColorHeight,
		pose:   func(i int) skeleton.Frame { return Wave(i, WavePeriod, 1) },
	}
	WithSeed(1)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close ends all streams.
func (s *Synthetic) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Synthetic) next(ctx context.Context, counter *int) (int, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	if s.closed {
		return 0, false, ErrClosed
	}
	if s.limit > 0 && *counter >= s.limit {
		return 0, false, nil
	}
	i := *counter
	*counter++
	return i, true, nil
}

// NextDepthFrame returns a tilted plane with a moving bump and a few
// invalid samples.
func (s *Synthetic) NextDepthFrame(ctx context.Context) (frame.DepthFrame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok, err := s.next(ctx, &s.depthN)
	if !ok || err != nil {
		return frame.DepthFrame{}, ok, err
	}

	d := frame.NewDepthFrame(s.depthW, s.depthH, DefaultMinReliable, DefaultMaxReliable)
	cx := float64(s.depthW) * (0.5 + 0.3*math.Sin(float64(i)*2*math.Pi/WavePeriod))
	cy := float64(s.depthH) / 2
	for y := range s.depthH {
		for x := range s.depthW {
			mm := 1000 + 3000*float64(y)/float64(s.depthH)
			if dx, dy := float64(x)-cx, float64(y)-cy; dx*dx+dy*dy < 900 {
				mm -= 400
			}
			if s.rng.IntN(100) == 0 {
				mm = 0
			}
			d.Samples[y*s.depthW+x] = uint16(mm)
		}
	}
	return d, true, nil
}

// NextColorFrame returns a BGRA gradient.
func (s *Synthetic) NextColorFrame(ctx context.Context) (frame.ColorFrame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok, err := s.next(ctx, &s.colorN)
	if !ok || err != nil {
		return frame.ColorFrame{}, ok, err
	}

	c := frame.NewColorFrame(s.colorW, s.colorH, frame.BytesPerPixelBGRA)
	stride := c.RowStride()
	for y := range s.colorH {
		for x := range s.colorW {
			p := c.Pixels[y*stride+x*frame.BytesPerPixelBGRA:]
			p[0] = byte(x * 255 / s.colorW)
			p[1] = byte(y * 255 / s.colorH)
			p[2] = byte(i)
			p[3] = 0xff
		}
	}
	return c, true, nil
}

// NextSkeletonFrames returns the sensor's skeleton slots: one tracked body
// and one empty slot.
func (s *Synthetic) NextSkeletonFrames(ctx context.Context) ([]skeleton.Frame, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok, err := s.next(ctx, &s.skelN)
	if !ok || err != nil {
		return nil, ok, err
	}
	return []skeleton.Frame{s.pose(i), {State: skeleton.NotTracked}}, true, nil
}

// MapDepthFrameToColorSpace scales depth cells onto the colour image with a
// small parallax shift so a border of cells maps outside the image.
func (s *Synthetic) MapDepthFrameToColorSpace(d frame.DepthFrame) (frame.Projection, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	cw, ch := s.colorW, s.colorH
	s.mu.Unlock()

	sx := float32(cw) / float32(d.Width)
	sy := float32(ch) / float32(d.Height)
	shift := float32(cw) / parallaxDivisor
	proj := make(frame.Projection, d.Width*d.Height)
	for y := range d.Height {
		for x := range d.Width {
			if d.Samples[y*d.Width+x] == 0 {
				proj[y*d.Width+x] = frame.ColorPoint{X: -1, Y: -1}
				continue
			}
			proj[y*d.Width+x] = frame.ColorPoint{X: float32(x)*sx + shift, Y: float32(y) * sy}
		}
	}
	return proj, nil
}

// skeletonLayout is a neutral standing pose relative to the hip centre, in
// metres.
var skeletonLayout = [skeleton.JointCount]r3.Vector{
	skeleton.HipCenter:      {},
	skeleton.Spine:          {Y: 0.1},
	skeleton.ShoulderCenter: {Y: 0.45},
	skeleton.Head:           {Y: 0.65},
	skeleton.ShoulderLeft:   {X: -0.18, Y: 0.4},
	skeleton.ElbowLeft:      {X: -0.25, Y: 0.15},
	skeleton.WristLeft:      {X: -0.27, Y: -0.05},
	skeleton.HandLeft:       {X: -0.28, Y: -0.12},
	skeleton.ShoulderRight:  {X: 0.18, Y: 0.4},
	skeleton.ElbowRight:     {X: 0.25, Y: 0.15},
	skeleton.WristRight:     {X: 0.27, Y: -0.05},
	skeleton.HandRight:      {X: 0.28, Y: -0.12},
	skeleton.HipLeft:        {X: -0.1, Y: -0.05},
	skeleton.KneeLeft:       {X: -0.1, Y: -0.45},
	skeleton.AnkleLeft:      {X: -0.1, Y: -0.85},
	skeleton.FootLeft:       {X: -0.1, Y: -0.9, Z: -0.08},
	skeleton.HipRight:       {X: 0.1, Y: -0.05},
	skeleton.KneeRight:      {X: 0.1, Y: -0.45},
	skeleton.AnkleRight:     {X: 0.1, Y: -0.85},
	skeleton.FootRight:      {X: 0.1, Y: -0.9, Z: -0.08},
}

// Wave returns frame i of a right-hand wave lasting period frames. amplitude
// scales the hand swing; 1 is a full wave, 0 a still pose.
func Wave(i, period int, amplitude float64) skeleton.Frame {
	if period <= 0 {
		period = WavePeriod
	}
	hip := r3.Vector{X: 0, Y: 0, Z: 2.5}
	phase := 2 * math.Pi * float64(i%period) / float64(period)
	lift := 0.5 * amplitude * (1 - math.Cos(phase)) / 2
	swing := 0.2 * amplitude * math.Sin(phase)

	f := skeleton.Frame{TrackingID: 1, State: skeleton.Tracked, Position: hip}
	f.Joints = make([]skeleton.Joint, skeleton.JointCount)
	for j := range skeleton.JointCount {
		off := skeletonLayout[j]
		switch skeleton.JointType(j) {
		case skeleton.ElbowRight:
			off = off.Add(r3.Vector{X: swing / 2, Y: lift})
		case skeleton.WristRight, skeleton.HandRight:
			off = off.Add(r3.Vector{X: swing, Y: 2 * lift})
		}
		f.Joints[j] = skeleton.Joint{
			Type:     skeleton.JointType(j),
			State:    skeleton.JointTracked,
			Position: hip.Add(off),
		}
	}
	return f
}
