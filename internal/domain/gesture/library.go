package gesture

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/kinetic/internal/domain/skeleton"
)

// ConfigStore persists gesture configs and their recorded examples.
type ConfigStore interface {
	List(ctx context.Context) ([]Config, error)
	Save(ctx context.Context, cfg Config) error
	// Delete removes the named config and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
	Examples(ctx context.Context, name string) ([][]skeleton.Frame, error)
}

// Library is the in-memory set of gesture configs kept in sync with a
// ConfigStore. It is not safe for concurrent use.
type Library struct {
	store   ConfigStore
	configs map[string]Config
}

// NewLibrary creates an empty library backed by store.
func NewLibrary(store ConfigStore) *Library {
	return &Library{store: store, configs: make(map[string]Config)}
}

// Load replaces the in-memory configs with the store's contents.
func (l *Library) Load(ctx context.Context) error {
	if l.store == nil {
		return ErrNoStore
	}
	cfgs, err := l.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load gesture configs: %w", err)
	}
	clear(l.configs)
	for _, c := range cfgs {
		l.configs[c.Name] = c
	}
	return nil
}

// Configs returns the configs sorted by name.
func (l *Library) Configs() []Config {
	out := make([]Config, 0, len(l.configs))
	for _, c := range l.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns the named config.
func (l *Library) Get(name string) (Config, bool) {
	c, ok := l.configs[name]
	return c, ok
}

// AddConfig validates cfg, assigns an ID when missing and persists it.
// An existing config with the same name is replaced and keeps its ID.
func (l *Library) AddConfig(ctx context.Context, cfg Config) (Config, error) {
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	if l.store == nil {
		return Config{}, ErrNoStore
	}
	if prev, ok := l.configs[cfg.Name]; ok && cfg.ID == uuid.Nil {
		cfg.ID = prev.ID
	}
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}
	if err := l.store.Save(ctx, cfg); err != nil {
		return Config{}, fmt.Errorf("save gesture config %q: %w", cfg.Name, err)
	}
	l.configs[cfg.Name] = cfg
	return cfg, nil
}

// RemoveConfig deletes the named config. A missing name is not an error;
// the returned bool reports whether anything was removed.
func (l *Library) RemoveConfig(ctx context.Context, name string) (bool, error) {
	if _, ok := l.configs[name]; !ok {
		return false, nil
	}
	if l.store == nil {
		return false, ErrNoStore
	}
	if _, err := l.store.Delete(ctx, name); err != nil {
		return false, fmt.Errorf("delete gesture config %q: %w", name, err)
	}
	delete(l.configs, name)
	return true, nil
}

// Bounds returns the smallest MinLength and largest MaxLength across all
// configs, or ok=false when the library is empty.
func (l *Library) Bounds() (minLen, maxLen int, ok bool) {
	for _, c := range l.configs {
		if !ok || c.MinLength < minLen {
			minLen = c.MinLength
		}
		if !ok || c.MaxLength > maxLen {
			maxLen = c.MaxLength
		}
		ok = true
	}
	return minLen, maxLen, ok
}

// References loads the recorded examples of every config.
func (l *Library) References(ctx context.Context) ([]ReferenceGesture, error) {
	if l.store == nil {
		return nil, ErrNoStore
	}
	cfgs := l.Configs()
	refs := make([]ReferenceGesture, 0, len(cfgs))
	for _, c := range cfgs {
		ex, err := l.store.Examples(ctx, c.Name)
		if err != nil {
			return nil, fmt.Errorf("load examples for %q: %w", c.Name, err)
		}
		refs = append(refs, ReferenceGesture{Name: c.Name, Examples: ex})
	}
	return refs, nil
}
