// Package noise provides deterministic coherent 2D fields bounded to [0, 1]
// for terrain classification.
package noise

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSource is returned by New for an unrecognised source name.
var ErrUnknownSource = errors.New("unknown noise source")

// Func samples a 2D field. Every Func returned by this package is pure:
// identical inputs give identical outputs, always within [0, 1].
type Func func(x, y float64) float64

// Source names accepted by New.
const (
	SourcePerlin  = "perlin"
	SourceSimplex = "simplex"
)

// Config selects and parameterises a noise field.
type Config struct {
	Source      string  `yaml:"source" json:"source"`
	Seed        int64   `yaml:"seed" json:"seed"`               // 0 = pick one at random
	Octaves     int     `yaml:"octaves" json:"octaves"`         // 1 = single layer
	Persistence float64 `yaml:"persistence" json:"persistence"` // Amplitude falloff per octave
	Lacunarity  float64 `yaml:"lacunarity" json:"lacunarity"`   // Frequency growth per octave
}

// DefaultConfig returns single-octave Perlin noise with a fixed seed.
func DefaultConfig() Config {
	return Config{
		Source:      SourcePerlin,
		Seed:        42,
		Octaves:     1,
		Persistence: 0.5,
		Lacunarity:  2.0,
	}
}

// SourceName returns the canonical source name: lower case, trimmed, and
// SourcePerlin when empty. Unknown names are returned normalised as well.
func (c Config) SourceName() string {
	name := strings.ToLower(strings.TrimSpace(c.Source))
	if name == "" {
		return SourcePerlin
	}
	return name
}

// New builds the field described by cfg. cfg.Seed must already be resolved;
// see RandomSeed for picking one.
func New(cfg Config) (Func, error) {
	var base Func
	switch cfg.SourceName() {
	case SourcePerlin:
		base = Perlin(cfg.Seed)
	case SourceSimplex:
		base = Simplex(cfg.Seed)
	default:
		return nil, fmt.Errorf("source %q: %w", cfg.Source, ErrUnknownSource)
	}
	return Octaves(base, cfg.Octaves, cfg.Persistence, cfg.Lacunarity), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
