package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/uuid"

	"github.com/okian/kinetic/internal/adapters/repository"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/skeleton"
	. "github.com/smartystreets/goconvey/convey"
)

func recording(n int) []skeleton.Frame {
	out := make([]skeleton.Frame, n)
	for i := range out {
		out[i] = skeleton.Frame{
			TrackingID: 1,
			State:      skeleton.Tracked,
			Position:   r3.Vector{Z: 2},
			Joints: []skeleton.Joint{{
				Type:     skeleton.HandRight,
				State:    skeleton.JointTracked,
				Position: r3.Vector{X: float64(i) / 10, Y: 0.5, Z: 2},
			}},
		}
	}
	return out
}

func TestDirStore(t *testing.T) {
	ctx := context.Background()

	Convey("Given a gesture directory", t, func() {
		root := filepath.Join(t.TempDir(), "gestures")
		tick := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		store, err := repository.NewDirStore(root, repository.WithClock(func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		}))
		So(err, ShouldBeNil)
		So(store.Root(), ShouldEqual, root)

		wave := gesture.Config{ID: uuid.New(), Name: "wave", MinLength: 20, MaxLength: 60}

		Convey("When a config is saved", func() {
			So(store.Save(ctx, wave), ShouldBeNil)

			Convey("Then it is written as yaml next to its examples", func() {
				_, err := os.Stat(filepath.Join(root, "wave.yaml"))
				So(err, ShouldBeNil)
			})

			Convey("Then it reads back unchanged", func() {
				got, err := store.Get(ctx, "wave")
				So(err, ShouldBeNil)
				So(got, ShouldResemble, wave)

				all, err := store.List(ctx)
				So(err, ShouldBeNil)
				So(all, ShouldResemble, []gesture.Config{wave})
			})

			Convey("Then examples can be attached and read in order", func() {
				first, err := store.AddExample(ctx, "wave", recording(3))
				So(err, ShouldBeNil)
				_, err = store.AddExample(ctx, "wave", recording(5))
				So(err, ShouldBeNil)
				So(filepath.Dir(first), ShouldEqual, filepath.Join(root, "wave"))

				ex, err := store.Examples(ctx, "wave")
				So(err, ShouldBeNil)
				So(ex, ShouldHaveLength, 2)
				So(ex[0], ShouldHaveLength, 3)
				So(ex[1], ShouldHaveLength, 5)
				So(ex[1][4].Joints[0].Position.X, ShouldEqual, 0.4)
			})

			Convey("Then deleting removes the file and its examples", func() {
				_, err := store.AddExample(ctx, "wave", recording(3))
				So(err, ShouldBeNil)
				removed, err := store.Delete(ctx, "wave")
				So(err, ShouldBeNil)
				So(removed, ShouldBeTrue)
				_, err = os.Stat(filepath.Join(root, "wave"))
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)

				removed, err = store.Delete(ctx, "wave")
				So(err, ShouldBeNil)
				So(removed, ShouldBeFalse)
			})
		})

		Convey("Unknown gestures are reported as not found", func() {
			_, err := store.Get(ctx, "clap")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			_, err = store.AddExample(ctx, "clap", recording(1))
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			ex, err := store.Examples(ctx, "clap")
			So(err, ShouldBeNil)
			So(ex, ShouldBeEmpty)
		})

		Convey("Invalid configs are not written", func() {
			err := store.Save(ctx, gesture.Config{Name: "wave", MinLength: 9, MaxLength: 1})
			So(errors.Is(err, gesture.ErrInvalidConfig), ShouldBeTrue)
			all, err := store.List(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)
		})

		Convey("A hand written file without id or name is accepted", func() {
			So(os.WriteFile(filepath.Join(root, "clap.yaml"), []byte("min_length: 5\nmax_length: 15\n"), 0o600), ShouldBeNil)
			got, err := store.Get(ctx, "clap")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "clap")
			So(got.ID, ShouldEqual, uuid.Nil)
			So(got.MaxLength, ShouldEqual, 15)
		})

		Convey("A file whose name disagrees with its content is rejected", func() {
			So(os.WriteFile(filepath.Join(root, "clap.yaml"), []byte("name: wave\nmin_length: 5\nmax_length: 15\n"), 0o600), ShouldBeNil)
			_, err := store.List(ctx)
			So(errors.Is(err, repository.ErrInvalidFile), ShouldBeTrue)
		})

		Convey("It plugs into a gesture library", func() {
			lib := gesture.NewLibrary(store)
			cfg, err := lib.AddConfig(ctx, gesture.Config{Name: "bow", MinLength: 10, MaxLength: 30})
			So(err, ShouldBeNil)
			So(cfg.ID, ShouldNotEqual, uuid.Nil)

			reloaded := gesture.NewLibrary(store)
			So(reloaded.Load(ctx), ShouldBeNil)
			got, ok := reloaded.Get("bow")
			So(ok, ShouldBeTrue)
			So(got, ShouldResemble, cfg)

			removed, err := reloaded.RemoveConfig(ctx, "missing")
			So(err, ShouldBeNil)
			So(removed, ShouldBeFalse)
		})
	})
}
