package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/kinetic/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"KINETIC_CONFIG",
	"KINETIC_ADDR",
	"KINETIC_LOG_FORMAT",
	"KINETIC_QUEUE_SIZE",
	"KINETIC_WORKER_COUNT",
	"KINETIC_MATCH_THRESHOLD",
	"KINETIC_FRAME_INTERVAL_MS",
	"KINETIC_SYNTHETIC_SOURCE",
	"KINETIC_GESTURE_DIR",
}

func clearConfigEnvVars() {
	for _, k := range configEnvVars {
		_ = os.Unsetenv(k)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "kinetic.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("KINETIC_ADDR", ":8080")
			_ = os.Setenv("KINETIC_QUEUE_SIZE", "128")
			_ = os.Setenv("KINETIC_MATCH_THRESHOLD", "12.5")
			_ = os.Setenv("KINETIC_SYNTHETIC_SOURCE", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 128)
				convey.So(cfg.MatchThreshold, convey.ShouldEqual, 12.5)
				convey.So(cfg.SyntheticSource, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(t, `
# comments are fine
addr: ":9090"
log_format: text
gesture_dir: /var/lib/kinetic/gestures
match_min_length: 20
match_max_length: 80
worker_count: 4
`)
			_ = os.Setenv("KINETIC_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file and keep other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
				convey.So(cfg.GestureDir, convey.ShouldEqual, "/var/lib/kinetic/gestures")
				convey.So(cfg.MatchMinLength, convey.ShouldEqual, 20)
				convey.So(cfg.MatchMaxLength, convey.ShouldEqual, 80)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.BufferCapacity, convey.ShouldEqual, 500)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, "addr: \":9090\"\nworker_count: 4\nqueue_size: 32\n")
			_ = os.Setenv("KINETIC_CONFIG", tmpFile)
			_ = os.Setenv("KINETIC_ADDR", ":8080")
			_ = os.Setenv("KINETIC_WORKER_COUNT", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 8)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("KINETIC_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("KINETIC_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("KINETIC_QUEUE_SIZE", "invalid")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config that fails validation", func() {
			_ = os.Setenv("KINETIC_FRAME_INTERVAL_MS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "frame_interval_ms")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
