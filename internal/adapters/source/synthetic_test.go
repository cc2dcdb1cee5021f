package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/kinetic/internal/adapters/source"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/skeleton"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSynthetic(t *testing.T) {
	ctx := context.Background()

	Convey("Given a small synthetic source", t, func() {
		src := source.NewSynthetic(source.WithDepthSize(8, 6), source.WithColorSize(16, 12), source.WithLimit(2))

		Convey("Depth frames are valid and limited", func() {
			for range 2 {
				d, ok, err := src.NextDepthFrame(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(d.Validate(), ShouldBeNil)
				So(d.MaxReliable, ShouldEqual, source.DefaultMaxReliable)
			}
			_, ok, err := src.NextDepthFrame(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Colour frames are valid BGRA", func() {
			c, ok, err := src.NextColorFrame(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(c.Validate(), ShouldBeNil)
			px, err := c.Pixel(15, 11)
			So(err, ShouldBeNil)
			So(px[3], ShouldEqual, 0xff)
		})

		Convey("Skeleton slots hold one tracked body", func() {
			slots, ok, err := src.NextSkeletonFrames(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(slots, ShouldHaveLength, 2)
			f, found := skeleton.SelectTracked(slots, 0)
			So(found, ShouldBeTrue)
			So(f.Joints, ShouldHaveLength, skeleton.JointCount)
		})

		Convey("The projection covers most of the colour image", func() {
			d, _, _ := src.NextDepthFrame(ctx)
			proj, err := src.MapDepthFrameToColorSpace(d)
			So(err, ShouldBeNil)
			So(proj, ShouldHaveLength, 48)
			cov := proj.Coverage(16, 12)
			So(cov, ShouldBeGreaterThan, 0.8)
			So(cov, ShouldBeLessThanOrEqualTo, 1)
		})

		Convey("A closed source reports ErrClosed", func() {
			So(src.Close(), ShouldBeNil)
			_, _, err := src.NextSkeletonFrames(ctx)
			So(errors.Is(err, source.ErrClosed), ShouldBeTrue)
		})

		Convey("A cancelled context stops the stream", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, _, err := src.NextColorFrame(cctx)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a synthetic wave", t, func() {
		one := make([]skeleton.Frame, source.WavePeriod)
		two := make([]skeleton.Frame, source.WavePeriod)
		still := make([]skeleton.Frame, source.WavePeriod)
		for i := range one {
			one[i] = source.Wave(i, source.WavePeriod, 1)
			two[i] = source.Wave(i+source.WavePeriod, source.WavePeriod, 1)
			still[i] = source.Wave(i, source.WavePeriod, 0)
		}

		Convey("Consecutive periods are identical", func() {
			So(gesture.Compare(two, one), ShouldEqual, 0)
		})

		Convey("A still pose is further than a full wave", func() {
			So(gesture.Compare(still, one), ShouldBeGreaterThan, 0)
		})
	})
}

func TestSyntheticProjectionBorder(t *testing.T) {
	Convey("At default resolution the parallax pushes a border out of the image", t, func() {
		src := source.NewSynthetic()
		d, ok, err := src.NextDepthFrame(context.Background())
		So(err, ShouldBeNil)
		So(ok, ShouldBeTrue)
		proj, err := src.MapDepthFrameToColorSpace(d)
		So(err, ShouldBeNil)
		cov := proj.Coverage(source.DefaultColorWidth, source.DefaultColorHeight)
		So(cov, ShouldBeGreaterThan, 0.9)
		So(cov, ShouldBeLessThan, 1)
	})
}
