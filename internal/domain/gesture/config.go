package gesture

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Config describes one named gesture the matcher knows about.
type Config struct {
	ID        uuid.UUID `json:"id" koanf:"id"`
	Name      string    `json:"name" koanf:"name"`
	MinLength int       `json:"min_length" koanf:"min_length"`
	MaxLength int       `json:"max_length" koanf:"max_length"`
}

// Validate checks the name and length bounds.
func (c Config) Validate() error {
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidConfig)
	case name != c.Name || strings.ContainsAny(name, `/\:*?"<>|`) || name == "." || name == "..":
		return fmt.Errorf("%w: name %q is not a valid file name", ErrInvalidConfig, c.Name)
	case strings.EqualFold(name, UnknownLabel):
		return fmt.Errorf("%w: name %q is reserved", ErrInvalidConfig, c.Name)
	case c.MinLength <= 0:
		return fmt.Errorf("%w: min_length must be positive, got %d", ErrInvalidConfig, c.MinLength)
	case c.MaxLength < c.MinLength:
		return fmt.Errorf("%w: max_length %d below min_length %d", ErrInvalidConfig, c.MaxLength, c.MinLength)
	}
	return nil
}
