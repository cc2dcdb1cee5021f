package seed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/kinetic/internal/adapters/repository"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/seed"
	"github.com/okian/kinetic/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func baseConfig(dir string) *seed.Config {
	return &seed.Config{
		Dir:       dir,
		Name:      "wave",
		Frames:    40,
		Examples:  3,
		MinLength: 20,
		MaxLength: 60,
		Amplitude: 1,
		Jitter:    0.2,
		Seed:      7,
		Timeout:   time.Second,
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeding config", t, func() {
		cfg := baseConfig(t.TempDir())

		Convey("Then each example has the requested length", func() {
			examples := seed.Generate(cfg)
			So(examples, ShouldHaveLength, 3)
			for _, ex := range examples {
				So(ex, ShouldHaveLength, 40)
			}
		})

		Convey("Then the same seed yields the same examples", func() {
			So(seed.Generate(cfg), ShouldResemble, seed.Generate(cfg))
		})

		Convey("Then lightly jittered examples stay close to each other", func() {
			cfg.Jitter = 0.05
			examples := seed.Generate(cfg)
			So(gesture.Compare(examples[0], examples[1]), ShouldBeLessThan, gesture.DefaultThreshold)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given an empty gesture directory", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		cfg := baseConfig(dir)

		Convey("When seeding without a service", func() {
			stats, err := seed.Run(ctx, cfg)
			So(err, ShouldBeNil)
			So(stats.Examples, ShouldEqual, 3)
			So(stats.Frames, ShouldEqual, 120)
			So(stats.Registered, ShouldBeFalse)

			Convey("Then the library holds the config and examples", func() {
				store, err := repository.NewDirStore(dir)
				So(err, ShouldBeNil)
				got, err := store.Get(ctx, "wave")
				So(err, ShouldBeNil)
				So(got.MinLength, ShouldEqual, 20)
				examples, err := store.Examples(ctx, "wave")
				So(err, ShouldBeNil)
				So(examples, ShouldHaveLength, 3)
			})
		})

		Convey("When seeding with a service URL", func() {
			var posted gesture.Config
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.URL.Path != "/gestures" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				_ = json.NewDecoder(r.Body).Decode(&posted)
				w.WriteHeader(http.StatusCreated)
			}))
			defer srv.Close()
			cfg.BaseURL = srv.URL

			stats, err := seed.Run(ctx, cfg)

			Convey("Then the gesture is registered", func() {
				So(err, ShouldBeNil)
				So(stats.Registered, ShouldBeTrue)
				So(posted.Name, ShouldEqual, "wave")
				So(posted.MaxLength, ShouldEqual, 60)
			})
		})

		Convey("When the service rejects the gesture", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			}))
			defer srv.Close()
			cfg.BaseURL = srv.URL

			_, err := seed.Run(ctx, cfg)

			Convey("Then the run fails", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "status 400")
			})
		})

		Convey("When the config is invalid", func() {
			cfg.Examples = 0
			_, err := seed.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})

		Convey("When the gesture name is invalid", func() {
			cfg.Name = gesture.UnknownLabel
			_, err := seed.Run(ctx, cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
