// Package seed populates a gesture library with synthetic reference
// examples, for demos and for exercising recognition without a sensor.
package seed

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/okian/kinetic/pkg/logger"
)

// SetupLogging initializes the logger, at debug level when verbose.
func SetupLogging(verbose bool) error {
	if err := logger.InitWithFormat(logger.FormatText, os.Stderr); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	return nil
}

// ShowHelp prints usage information for the seeding tool.
func ShowHelp() {
	os.Stdout.WriteString(`Kinetic Gesture Seeder
======================

Writes a gesture config and synthetic wave recordings into a gesture
library, optionally registering the gesture with a running service.

Usage:
  go run ./cmd/synth-gesture [options]

Options:
  -dir string
        Gesture library directory (default "gestures")
  -name string
        Gesture name (default "wave")
  -frames int
        Frames per example (default 60)
  -examples int
        Number of examples (default 3)
  -min int / -max int
        Gesture length bounds (default 30 / 90)
  -amplitude float
        Wave amplitude (default 1)
  -jitter float
        Relative amplitude jitter between examples (default 0.1)
  -seed uint
        Random seed (default 1)
  -url string
        Base URL of a running service to notify (default none)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Seed a local library
  go run ./cmd/synth-gesture -dir ./gestures

  # Seed and register with a running service
  go run ./cmd/synth-gesture -dir ./gestures -url http://localhost:9080
`)
}
