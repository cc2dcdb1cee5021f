package seed

import (
	"errors"
	"time"
)

// Config holds configuration for a seeding run.
type Config struct {
	Dir       string        // Gesture library directory
	Name      string        // Gesture name
	Frames    int           // Frames per example
	Examples  int           // Number of examples to record
	MinLength int           // Gesture config minimum length
	MaxLength int           // Gesture config maximum length
	Amplitude float64       // Wave amplitude, 1 is a full wave
	Jitter    float64       // Relative amplitude jitter between examples
	Seed      uint64        // Random seed for jitter
	BaseURL   string        // Optional running service to notify
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // Enable verbose logging
}

// Stats holds run statistics.
type Stats struct {
	Examples   int
	Frames     int
	Paths      []string
	Registered bool
	StartTime  time.Time
	Duration   time.Duration
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	switch {
	case c.Dir == "":
		return errors.New("dir is required")
	case c.Frames <= 0:
		return errors.New("frames must be positive")
	case c.Examples <= 0:
		return errors.New("examples must be positive")
	case c.Jitter < 0 || c.Jitter >= 1:
		return errors.New("jitter must be in [0, 1)")
	}
	return nil
}
