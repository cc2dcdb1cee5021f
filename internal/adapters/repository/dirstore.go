// Package repository persists gesture configs and their reference
// recordings in a directory tree:
//
//	<root>/<name>.yaml        id, name, min_length, max_length
//	<root>/<name>/*.xml       recorded examples
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/kinetic/internal/adapters/skeletonfile"
	"github.com/okian/kinetic/internal/domain/gesture"
	"github.com/okian/kinetic/internal/domain/skeleton"
)

const configExt = ".yaml"

// DirStore implements gesture.ConfigStore over a directory. It is safe for
// concurrent use.
type DirStore struct {
	mu       sync.RWMutex
	root     string
	fileMode fs.FileMode
	now      func() time.Time
}

var _ gesture.ConfigStore = (*DirStore)(nil)

// NewDirStore creates the root directory if needed.
func NewDirStore(root string, opts ...Option) (*DirStore, error) {
	s := &DirStore{root: root, fileMode: 0o644, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create gesture dir: %w", err)
	}
	return s, nil
}

// Root returns the directory the store manages.
func (s *DirStore) Root() string { return s.root }

func (s *DirStore) configPath(name string) string {
	return filepath.Join(s.root, name+configExt)
}

func (s *DirStore) examplesDir(name string) string {
	return filepath.Join(s.root, name)
}

// List reads every config file in the root directory, sorted by name.
func (s *DirStore) List(ctx context.Context) ([]gesture.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read gesture dir: %w", err)
	}
	var out []gesture.Config
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != configExt {
			continue
		}
		cfg, err := readConfig(filepath.Join(s.root, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get reads the named config.
func (s *DirStore) Get(_ context.Context, name string) (gesture.Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, err := readConfig(s.configPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return gesture.Config{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return cfg, err
}

// Save writes cfg to <root>/<name>.yaml, replacing any existing file.
func (s *DirStore) Save(_ context.Context, cfg gesture.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := yaml.Parser().Marshal(map[string]interface{}{
		"id":         cfg.ID.String(),
		"name":       cfg.Name,
		"min_length": cfg.MinLength,
		"max_length": cfg.MaxLength,
	})
	if err != nil {
		return fmt.Errorf("encode gesture %s: %w", cfg.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.configPath(cfg.Name), data, s.fileMode)
}

// Delete removes the config file and its recorded examples.
func (s *DirStore) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.configPath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("remove gesture %s: %w", name, err)
	}
	if err := os.RemoveAll(s.examplesDir(name)); err != nil {
		return true, fmt.Errorf("remove examples of %s: %w", name, err)
	}
	return true, nil
}

// Examples reads every recording stored for name, in file name order. A
// gesture without recordings has no examples.
func (s *DirStore) Examples(ctx context.Context, name string) ([][]skeleton.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.examplesDir(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read examples of %s: %w", name, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == skeletonfile.Extension {
			paths = append(paths, filepath.Join(s.examplesDir(name), e.Name()))
		}
	}
	out := make([][]skeleton.Frame, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frames, err := skeletonfile.Read(p)
		if err != nil {
			return nil, err
		}
		out = append(out, frames)
	}
	return out, nil
}

// AddExample stores frames as a new recording of an existing gesture and
// returns the file path.
func (s *DirStore) AddExample(_ context.Context, name string, frames []skeleton.Frame) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.configPath(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return "", err
	}
	stamp := s.now().UTC().Format("20060102T150405.000000000")
	path := filepath.Join(s.examplesDir(name), strings.ReplaceAll(stamp, ".", "")+skeletonfile.Extension)
	if err := skeletonfile.Write(path, frames); err != nil {
		return "", err
	}
	return path, nil
}

func readConfig(path string) (gesture.Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return gesture.Config{}, err
		}
		return gesture.Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}

	stem := strings.TrimSuffix(filepath.Base(path), configExt)
	cfg := gesture.Config{
		Name:      k.String("name"),
		MinLength: k.Int("min_length"),
		MaxLength: k.Int("max_length"),
	}
	if cfg.Name == "" {
		cfg.Name = stem
	}
	if cfg.Name != stem {
		return gesture.Config{}, fmt.Errorf("%w: %s: name %q does not match file", ErrInvalidFile, path, cfg.Name)
	}
	if raw := k.String("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return gesture.Config{}, fmt.Errorf("%w: %s: id: %w", ErrInvalidFile, path, err)
		}
		cfg.ID = id
	}
	if err := cfg.Validate(); err != nil {
		return gesture.Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}
	return cfg, nil
}

func writeAtomic(path string, data []byte, mode fs.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".gesture-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
