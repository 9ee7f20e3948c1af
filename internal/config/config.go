// Package config loads map generation settings from YAML and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/world"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all generator configuration values.
type Config struct {
	Map     MapConfig     `yaml:"map"`
	Terrain TerrainConfig `yaml:"terrain"`
	Noise   noise.Config  `yaml:"noise"`
	Server  ServerConfig  `yaml:"server"`
}

type MapConfig struct {
	Radius    int     `yaml:"radius"`
	HexSize   float64 `yaml:"hex_size"`
	MaxRadius int     `yaml:"max_radius"` // Upper bound on radius, also for API overrides
}

// DefaultMaxRadius caps a map at about three million tiles.
const DefaultMaxRadius = 1000

type TerrainConfig struct {
	NoiseScale        float64    `yaml:"noise_scale"`
	WaterThreshold    float64    `yaml:"water_threshold"`
	MountainThreshold float64    `yaml:"mountain_threshold"`
	Offset            world.Vec2 `yaml:"offset"`
}

type ServerConfig struct {
	Port        int      `yaml:"port"`    // 0 = do not serve
	DBPath      string   `yaml:"db_path"` // Empty = no run history
	CORSOrigins []string `yaml:"cors_origins"`
	AdminKey    string   `yaml:"-"` // Environment only
}

// Default returns the stock configuration: a radius-10 map of unit hexes
// classified at 0.3 / 0.7.
func Default() *Config {
	gen := world.DefaultGenConfig()
	return &Config{
		Map: MapConfig{
			Radius:    gen.Radius,
			HexSize:   gen.HexSize,
			MaxRadius: DefaultMaxRadius,
		},
		Terrain: TerrainConfig{
			NoiseScale:        gen.NoiseScale,
			WaterThreshold:    gen.WaterThreshold,
			MountainThreshold: gen.MountainThreshold,
		},
		Noise: noise.DefaultConfig(),
		Server: ServerConfig{
			DBPath: "data/hexmap.db",
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default value; unknown keys are rejected. An empty path returns the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overlays HEXMAP_* environment variables.
func (c *Config) ApplyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"HEXMAP_RADIUS", &c.Map.Radius},
		{"HEXMAP_MAX_RADIUS", &c.Map.MaxRadius},
		{"HEXMAP_PORT", &c.Server.Port},
		{"HEXMAP_OCTAVES", &c.Noise.Octaves},
	}
	for _, e := range ints {
		if v, ok := os.LookupEnv(e.key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, e.key, v)
			}
			*e.dst = n
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{"HEXMAP_HEX_SIZE", &c.Map.HexSize},
		{"HEXMAP_NOISE_SCALE", &c.Terrain.NoiseScale},
		{"HEXMAP_WATER_THRESHOLD", &c.Terrain.WaterThreshold},
		{"HEXMAP_MOUNTAIN_THRESHOLD", &c.Terrain.MountainThreshold},
		{"HEXMAP_OFFSET_X", &c.Terrain.Offset.X},
		{"HEXMAP_OFFSET_Y", &c.Terrain.Offset.Y},
	}
	for _, e := range floats {
		if v, ok := os.LookupEnv(e.key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, e.key, v)
			}
			*e.dst = f
		}
	}

	if v, ok := os.LookupEnv("HEXMAP_SEED"); ok {
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: HEXMAP_SEED=%q is not an integer", ErrInvalidConfig, v)
		}
		c.Noise.Seed = seed
	}
	if v, ok := os.LookupEnv("HEXMAP_NOISE_SOURCE"); ok {
		c.Noise.Source = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("HEXMAP_DB"); ok {
		c.Server.DBPath = v
	}
	if v, ok := os.LookupEnv("HEXMAP_CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Server.CORSOrigins = append(c.Server.CORSOrigins, origin)
			}
		}
	}
	c.Server.AdminKey = os.Getenv("HEXMAP_ADMIN_KEY")

	return nil
}

// Validate rejects configurations the generator cannot run. Threshold order
// is not checked here; see Warnings.
func (c *Config) Validate() error {
	if c.Map.Radius < 0 {
		return fmt.Errorf("%w: map.radius must be non-negative: %w", ErrInvalidConfig, world.ErrInvalidParameter)
	}
	if c.Map.MaxRadius < 1 || c.Map.MaxRadius > world.MaxBuildRadius {
		return fmt.Errorf("%w: map.max_radius must be within [1, %d]", ErrInvalidConfig, world.MaxBuildRadius)
	}
	if c.Map.Radius > c.Map.MaxRadius {
		return fmt.Errorf("%w: map.radius %d exceeds map.max_radius %d: %w",
			ErrInvalidConfig, c.Map.Radius, c.Map.MaxRadius, world.ErrInvalidParameter)
	}
	if !positive(c.Map.HexSize) {
		return fmt.Errorf("%w: map.hex_size must be positive: %w", ErrInvalidConfig, world.ErrInvalidParameter)
	}
	if !positive(c.Terrain.NoiseScale) {
		return fmt.Errorf("%w: terrain.noise_scale must be positive", ErrInvalidConfig)
	}
	if !unit(c.Terrain.WaterThreshold) {
		return fmt.Errorf("%w: terrain.water_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	if !unit(c.Terrain.MountainThreshold) {
		return fmt.Errorf("%w: terrain.mountain_threshold must be within [0, 1]", ErrInvalidConfig)
	}
	if !finite(c.Terrain.Offset.X) || !finite(c.Terrain.Offset.Y) {
		return fmt.Errorf("%w: terrain.offset must be finite", ErrInvalidConfig)
	}
	switch c.Noise.SourceName() {
	case noise.SourcePerlin, noise.SourceSimplex:
	default:
		return fmt.Errorf("%w: noise.source %q must be %q or %q", ErrInvalidConfig,
			c.Noise.Source, noise.SourcePerlin, noise.SourceSimplex)
	}
	if c.Noise.Octaves < 1 {
		return fmt.Errorf("%w: noise.octaves must be at least 1", ErrInvalidConfig)
	}
	if c.Noise.Octaves > 1 && (!positive(c.Noise.Persistence) || !positive(c.Noise.Lacunarity)) {
		return fmt.Errorf("%w: noise.persistence and noise.lacunarity must be positive", ErrInvalidConfig)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port must be within [0, 65535]", ErrInvalidConfig)
	}
	return nil
}

// Warnings lists settings that are accepted but probably unintended.
func (c *Config) Warnings() []string {
	var out []string
	switch {
	case c.Terrain.WaterThreshold > c.Terrain.MountainThreshold:
		out = append(out, "water_threshold is above mountain_threshold: no tile will be Plain")
	case c.Terrain.WaterThreshold == c.Terrain.MountainThreshold:
		out = append(out, "water_threshold equals mountain_threshold: Plain only at exactly that noise value")
	}
	if c.Map.Radius > 200 {
		out = append(out, fmt.Sprintf("radius %d produces %d tiles", c.Map.Radius, world.HexCount(c.Map.Radius)))
	}
	return out
}

// GenConfig converts the map and terrain sections for the world package.
func (c *Config) GenConfig() world.GenConfig {
	return world.GenConfig{
		Radius:  c.Map.Radius,
		HexSize: c.Map.HexSize,
		ClassifyParams: world.ClassifyParams{
			NoiseScale:        c.Terrain.NoiseScale,
			WaterThreshold:    c.Terrain.WaterThreshold,
			MountainThreshold: c.Terrain.MountainThreshold,
			Offset:            c.Terrain.Offset,
		},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return &out
}

func positive(f float64) bool { return f > 0 && !math.IsInf(f, 0) }

func unit(f float64) bool { return f >= 0 && f <= 1 }

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
