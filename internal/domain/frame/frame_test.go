package frame_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/kinetic/internal/domain/frame"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDepthFrame(t *testing.T) {
	Convey("Given a 3x2 depth frame", t, func() {
		d := frame.NewDepthFrame(3, 2, 400, 4000)
		d.Samples[4] = 1234 // (1,1)

		Convey("Then it validates and reads by coordinate", func() {
			So(d.Validate(), ShouldBeNil)
			v, err := d.At(1, 1)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 1234)
		})

		Convey("When reading out of bounds", func() {
			_, err := d.At(3, 0)

			Convey("Then a precondition error is returned", func() {
				So(errors.Is(err, frame.ErrPrecondition), ShouldBeTrue)
			})
		})

		Convey("When the sample slice is short", func() {
			d.Samples = d.Samples[:5]

			Convey("Then validation fails", func() {
				So(errors.Is(d.Validate(), frame.ErrPrecondition), ShouldBeTrue)
			})
		})

		Convey("Then the reliable range is inclusive", func() {
			So(d.Reliable(400), ShouldBeTrue)
			So(d.Reliable(4000), ShouldBeTrue)
			So(d.Reliable(4001), ShouldBeFalse)
			So(d.Reliable(0), ShouldBeFalse)
		})
	})
}

func TestColorFrame(t *testing.T) {
	Convey("Given a padded 2x2 BGRA colour frame", t, func() {
		c := frame.ColorFrame{Width: 2, Height: 2, BytesPerPixel: 4, Stride: 12, Pixels: make([]byte, 12+8)}
		copy(c.Pixels[12+4:], []byte{1, 2, 3, 4}) // (1,1)

		Convey("Then pixels are addressed through the stride", func() {
			So(c.Validate(), ShouldBeNil)
			px, err := c.Pixel(1, 1)
			So(err, ShouldBeNil)
			So(px, ShouldResemble, []byte{1, 2, 3, 4})
		})

		Convey("When the stride is shorter than a row", func() {
			c.Stride = 4

			Convey("Then validation fails", func() {
				So(errors.Is(c.Validate(), frame.ErrPrecondition), ShouldBeTrue)
			})
		})

		Convey("When the buffer is truncated", func() {
			c.Pixels = c.Pixels[:19]

			Convey("Then validation fails", func() {
				So(errors.Is(c.Validate(), frame.ErrPrecondition), ShouldBeTrue)
			})
		})

		Convey("When the stride is unset", func() {
			packed := frame.NewColorFrame(2, 2, 4)
			packed.Stride = 0

			Convey("Then the packed row size is used", func() {
				So(packed.RowStride(), ShouldEqual, 8)
				So(packed.Validate(), ShouldBeNil)
			})
		})
	})
}

func TestProjectionCoverage(t *testing.T) {
	Convey("Given a projection with mixed cells", t, func() {
		nan := float32(math.NaN())
		p := frame.Projection{
			{X: 0, Y: 0},
			{X: 9.9, Y: 4.5},
			{X: -1, Y: 2},
			{X: 10, Y: 2},
			{X: nan, Y: 1},
		}

		Convey("Then only in-bounds cells count", func() {
			So(p.Coverage(10, 5), ShouldAlmostEqual, 0.4)
		})

		Convey("And an empty projection has no coverage", func() {
			So(frame.Projection{}.Coverage(10, 5), ShouldEqual, 0)
		})
	})
}
