package skeleton_test

import (
	"errors"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/okian/kinetic/internal/domain/skeleton"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJointTypes(t *testing.T) {
	Convey("Given the joint enumeration", t, func() {
		Convey("Then names and ids round-trip for every joint", func() {
			So(skeleton.JointCount, ShouldEqual, 20)
			for id := 0; id < skeleton.JointCount; id++ {
				j, err := skeleton.JointTypeFromID(id)
				So(err, ShouldBeNil)
				parsed, err := skeleton.ParseJointType(j.String())
				So(err, ShouldBeNil)
				So(parsed, ShouldEqual, j)
			}
		})

		Convey("Then unknown names and ids are rejected", func() {
			_, err := skeleton.ParseJointType("Tail")
			So(errors.Is(err, skeleton.ErrUnknownJoint), ShouldBeTrue)
			_, err = skeleton.JointTypeFromID(20)
			So(errors.Is(err, skeleton.ErrUnknownJoint), ShouldBeTrue)
			So(skeleton.JointType(-1).String(), ShouldEqual, "JointType(-1)")
		})

		Convey("Then tracking states parse", func() {
			s, err := skeleton.ParseTrackingState("PositionOnly")
			So(err, ShouldBeNil)
			So(s, ShouldEqual, skeleton.PositionOnly)
			js, err := skeleton.ParseJointTrackingState("Inferred")
			So(err, ShouldBeNil)
			So(js, ShouldEqual, skeleton.JointInferred)
			_, err = skeleton.ParseTrackingState("Lost")
			So(errors.Is(err, skeleton.ErrUnknownState), ShouldBeTrue)
			_, err = skeleton.ParseJointTrackingState("")
			So(errors.Is(err, skeleton.ErrUnknownState), ShouldBeTrue)
		})
	})
}

func TestFrame(t *testing.T) {
	Convey("Given a tracked frame with unsorted joints", t, func() {
		f := skeleton.Frame{
			TrackingID: 7,
			State:      skeleton.Tracked,
			Position:   r3.Vector{X: 1, Y: 1, Z: 2},
			Joints: []skeleton.Joint{
				{Type: skeleton.Head, State: skeleton.JointTracked, Position: r3.Vector{X: 1, Y: 1.8, Z: 2}},
				{Type: skeleton.HipCenter, State: skeleton.JointTracked, Position: r3.Vector{X: 1, Y: 1, Z: 2}},
				{Type: skeleton.HandLeft, State: skeleton.JointNotTracked, Position: r3.Vector{X: 9, Y: 9, Z: 9}},
			},
		}

		Convey("When normalizing", func() {
			n := f.Normalize()

			Convey("Then joints are sorted by type and the input is untouched", func() {
				So(n.Joints[0].Type, ShouldEqual, skeleton.HipCenter)
				So(n.Joints[1].Type, ShouldEqual, skeleton.Head)
				So(f.Joints[0].Type, ShouldEqual, skeleton.Head)
			})
		})

		Convey("When the frame is only position tracked", func() {
			f.State = skeleton.PositionOnly
			n := f.Normalize()

			Convey("Then joints are dropped and the position kept", func() {
				So(n.Joints, ShouldBeEmpty)
				So(n.Position, ShouldResemble, f.Position)
			})
		})

		Convey("When the frame is not tracked", func() {
			f.State = skeleton.NotTracked
			n := f.Normalize()

			Convey("Then the position is cleared as well", func() {
				So(n.Joints, ShouldBeEmpty)
				So(n.Position, ShouldResemble, r3.Vector{})
			})
		})

		Convey("When computing relative positions", func() {
			pos, ok := f.Relative()

			Convey("Then they are measured from the hip centre and skip untracked joints", func() {
				So(ok[skeleton.Head], ShouldBeTrue)
				So(pos[skeleton.Head].Y, ShouldAlmostEqual, 0.8)
				So(ok[skeleton.HipCenter], ShouldBeTrue)
				So(pos[skeleton.HipCenter], ShouldResemble, r3.Vector{})
				So(ok[skeleton.HandLeft], ShouldBeFalse)
			})
		})
	})
}

func TestSelectTracked(t *testing.T) {
	Convey("Given sensor skeleton slots", t, func() {
		slots := []skeleton.Frame{
			{TrackingID: 0, State: skeleton.NotTracked},
			{TrackingID: 3, State: skeleton.Tracked},
			{TrackingID: 5, State: skeleton.PositionOnly},
			{TrackingID: 9, State: skeleton.Tracked},
		}

		Convey("Then the preferred id wins when tracked", func() {
			f, ok := skeleton.SelectTracked(slots, 9)
			So(ok, ShouldBeTrue)
			So(f.TrackingID, ShouldEqual, 9)
		})

		Convey("Then the first tracked slot is used otherwise", func() {
			f, ok := skeleton.SelectTracked(slots, 5)
			So(ok, ShouldBeTrue)
			So(f.TrackingID, ShouldEqual, 3)
		})

		Convey("Then no tracked slot reports false", func() {
			_, ok := skeleton.SelectTracked(slots[:1], 0)
			So(ok, ShouldBeFalse)
		})
	})
}
