package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/okian/kinetic/internal/adapters/source"
	"github.com/okian/kinetic/internal/seed"
)

// Default configuration constants.
const (
	defaultExamples   = 3
	defaultMinLength  = 30
	defaultMaxLength  = 90
	defaultJitter     = 0.1
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 2 * time.Minute
)

func main() {
	var (
		dir       = flag.String("dir", "gestures", "Gesture library directory")
		name      = flag.String("name", "wave", "Gesture name")
		frames    = flag.Int("frames", source.WavePeriod, "Frames per example")
		examples  = flag.Int("examples", defaultExamples, "Number of examples")
		minLength = flag.Int("min", defaultMinLength, "Gesture minimum length")
		maxLength = flag.Int("max", defaultMaxLength, "Gesture maximum length")
		amplitude = flag.Float64("amplitude", 1, "Wave amplitude")
		jitter    = flag.Float64("jitter", defaultJitter, "Relative amplitude jitter between examples")
		seedValue = flag.Uint64("seed", 1, "Random seed")
		baseURL   = flag.String("url", "", "Base URL of a running service to notify")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := seed.SetupLogging(*verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	stats, err := seed.Run(ctx, &seed.Config{
		Dir:       *dir,
		Name:      *name,
		Frames:    *frames,
		Examples:  *examples,
		MinLength: *minLength,
		MaxLength: *maxLength,
		Amplitude: *amplitude,
		Jitter:    *jitter,
		Seed:      *seedValue,
		BaseURL:   *baseURL,
		Timeout:   *timeout,
		Verbose:   *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel is called above
	}
	os.Stdout.WriteString("wrote " + strconv.Itoa(stats.Examples) + " examples of " + *name + " to " + *dir + "\n")
}
