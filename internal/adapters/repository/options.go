package repository

import (
	"io/fs"
	"time"
)

// Option applies a configuration option to the DirStore.
type Option func(*DirStore)

// WithFileMode sets the permission bits of written config files.
func WithFileMode(mode fs.FileMode) Option {
	return func(s *DirStore) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

// WithClock overrides the time source used to name example recordings.
func WithClock(now func() time.Time) Option {
	return func(s *DirStore) {
		if now != nil {
			s.now = now
		}
	}
}
