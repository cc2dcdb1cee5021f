package seed

import (
	"math/rand/v2"

	"github.com/okian/kinetic/internal/adapters/source"
	"github.com/okian/kinetic/internal/domain/skeleton"
)

// Generate returns cfg.Examples waves of cfg.Frames frames each. Each
// example's amplitude is jittered by up to cfg.Jitter of cfg.Amplitude.
func Generate(cfg *Config) [][]skeleton.Frame {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed+1))
	out := make([][]skeleton.Frame, cfg.Examples)
	for k := range out {
		amp := cfg.Amplitude * (1 + cfg.Jitter*(2*rng.Float64()-1))
		frames := make([]skeleton.Frame, cfg.Frames)
		for i := range frames {
			frames[i] = source.Wave(i, cfg.Frames, amp)
		}
		out[k] = frames
	}
	return out
}
