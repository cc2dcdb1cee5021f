package service

import (
	"context"
	"fmt"

	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/pkg/logger"
)

// Gestures returns the configured gestures sorted by name.
func (s *Service) Gestures(_ context.Context) []gesture.Config {
	s.libMu.Lock()
	defer s.libMu.Unlock()

	if s.library == nil {
		return []gesture.Config{}
	}
	return s.library.Configs()
}

// AddGesture creates or replaces a gesture config and loads its recorded
// examples into the matcher.
func (s *Service) AddGesture(ctx context.Context, cfg gesture.Config) (gesture.Config, error) {
	s.libMu.Lock()
	defer s.libMu.Unlock()

	if s.library == nil {
		return gesture.Config{}, ErrNotStarted
	}
	saved, err := s.library.AddConfig(ctx, cfg)
	if err != nil {
		return gesture.Config{}, err
	}
	examples, err := s.store.Examples(ctx, saved.Name)
	if err != nil {
		return saved, fmt.Errorf("load examples of %q: %w", saved.Name, err)
	}

	s.mu.Lock()
	s.matcher.AddReference(gesture.ReferenceGesture{Name: saved.Name, Examples: examples})
	s.refCounts[saved.Name] = len(examples)
	s.applyBoundsLocked()
	s.publishReferenceCountLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "gesture added",
		logger.String("gesture", saved.Name),
		logger.Int("minLength", saved.MinLength),
		logger.Int("maxLength", saved.MaxLength),
		logger.Int("examples", len(examples)),
	)
	return saved, nil
}

// RemoveGesture deletes a gesture config and its examples. It reports false
// without error when no such gesture exists.
func (s *Service) RemoveGesture(ctx context.Context, name string) (bool, error) {
	s.libMu.Lock()
	defer s.libMu.Unlock()

	if s.library == nil {
		return false, ErrNotStarted
	}
	removed, err := s.library.RemoveConfig(ctx, name)
	if err != nil {
		return false, err
	}
	if !removed {
		s.logger.Info(ctx, "gesture not found", logger.String("gesture", name))
		return false, nil
	}

	s.mu.Lock()
	s.matcher.RemoveReference(name)
	delete(s.refCounts, name)
	s.applyBoundsLocked()
	s.publishReferenceCountLocked()
	s.mu.Unlock()

	s.logger.Info(ctx, "gesture removed", logger.String("gesture", name))
	return true, nil
}
