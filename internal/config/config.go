// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/kinetic/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// FrameIntervalMS is the frame loop tick in milliseconds.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	// BufferCapacity bounds the gesture buffer.
	BufferCapacity int `koanf:"buffer_capacity"`

	// GestureDir holds gesture configs and their recorded examples.
	GestureDir string `koanf:"gesture_dir"`

	// RecordingDir holds named recordings and is the base for replay paths.
	RecordingDir string `koanf:"recording_dir"`

	// MatchThreshold is the largest distance accepted as a match.
	MatchThreshold float64 `koanf:"match_threshold"`

	// MatchMinLength and MatchMaxLength bound gesture length while the
	// gesture library is empty.
	MatchMinLength int `koanf:"match_min_length"`
	MatchMaxLength int `koanf:"match_max_length"`

	// MaxEncodableDepth is the sensor's largest depth value in millimetres.
	MaxEncodableDepth int `koanf:"max_encodable_depth"`

	// QueueSize bounds the persistence queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of persistence workers.
	WorkerCount int `koanf:"worker_count"`

	// SyntheticSource replaces the sensor with a generated wave.
	SyntheticSource bool `koanf:"synthetic_source"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         logger.FormatJSON,
		Addr:              ":9080",
		FrameIntervalMS:   33,
		BufferCapacity:    500,
		GestureDir:        "gestures",
		RecordingDir:      "recordings",
		MatchThreshold:    20,
		MatchMinLength:    10,
		MatchMaxLength:    60,
		MaxEncodableDepth: 8000,
		QueueSize:         64,
		WorkerCount:       2,
		SyntheticSource:   true,
	}
}

// FrameInterval returns FrameIntervalMS as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var reason string
	switch {
	case strings.TrimSpace(c.Addr) == "":
		reason = "addr must not be empty"
	case c.FrameIntervalMS <= 0:
		reason = "frame_interval_ms must be positive"
	case c.BufferCapacity <= 0:
		reason = "buffer_capacity must be positive"
	case c.GestureDir == "":
		reason = "gesture_dir must not be empty"
	case c.RecordingDir == "":
		reason = "recording_dir must not be empty"
	case c.MatchThreshold <= 0:
		reason = "match_threshold must be positive"
	case c.MatchMinLength <= 0 || c.MatchMaxLength < c.MatchMinLength:
		reason = "match lengths must satisfy 0 < match_min_length <= match_max_length"
	case c.MaxEncodableDepth <= 0 || c.MaxEncodableDepth > 0xffff:
		reason = "max_encodable_depth must be in (0, 65535]"
	case c.QueueSize <= 0:
		reason = "queue_size must be positive"
	case c.WorkerCount <= 0:
		reason = "worker_count must be positive"
	case c.LogFormat != logger.FormatJSON && c.LogFormat != logger.FormatText:
		reason = "log_format must be json or text"
	default:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, reason)
}
