package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/kinetic/internal/adapters/repository"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/pkg/logger"
)

// Run writes a gesture config and generated examples into cfg.Dir, then
// registers the gesture with a running service when cfg.BaseURL is set.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seed")

	// Example files are named by timestamp; step the clock so a fast run
	// never reuses a name.
	tick := stats.StartTime
	store, err := repository.NewDirStore(cfg.Dir, repository.WithClock(func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}))
	if err != nil {
		return nil, err
	}
	lib := gesture.NewLibrary(store)
	if err := lib.Load(ctx); err != nil {
		return nil, fmt.Errorf("load gesture library: %w", err)
	}

	saved, err := lib.AddConfig(ctx, gesture.Config{
		Name:      cfg.Name,
		MinLength: cfg.MinLength,
		MaxLength: cfg.MaxLength,
	})
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "gesture config written",
		logger.String("gesture", saved.Name),
		logger.String("id", saved.ID.String()),
	)

	for i, frames := range Generate(cfg) {
		path, err := store.AddExample(ctx, saved.Name, frames)
		if err != nil {
			return stats, fmt.Errorf("write example %d: %w", i, err)
		}
		stats.Examples++
		stats.Frames += len(frames)
		stats.Paths = append(stats.Paths, path)
		log.Debug(ctx, "example written", logger.String("path", path), logger.Int("frames", len(frames)))
	}

	if cfg.BaseURL != "" {
		if err := register(ctx, cfg, saved); err != nil {
			return stats, fmt.Errorf("register gesture: %w", err)
		}
		stats.Registered = true
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seeding complete",
		logger.String("gesture", saved.Name),
		logger.Int("examples", stats.Examples),
		logger.Int("frames", stats.Frames),
		logger.Bool("registered", stats.Registered),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}
