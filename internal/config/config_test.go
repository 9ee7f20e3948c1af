package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/hexterrain/internal/world"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
	if w := cfg.Warnings(); len(w) != 0 {
		t.Fatalf("default configuration should not warn: %v", w)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative radius", func(c *Config) { c.Map.Radius = -1 }, "map.radius must be non-negative"},
		{"radius above max", func(c *Config) { c.Map.Radius = c.Map.MaxRadius + 1 }, "exceeds map.max_radius"},
		{"two billion radius", func(c *Config) { c.Map.Radius = 2_000_000_000 }, "exceeds map.max_radius"},
		{"zero max radius", func(c *Config) { c.Map.MaxRadius = 0; c.Map.Radius = 0 }, "map.max_radius must be within"},
		{"max radius past tile count range", func(c *Config) { c.Map.MaxRadius = world.MaxBuildRadius + 1 }, "map.max_radius must be within"},
		{"zero hex size", func(c *Config) { c.Map.HexSize = 0 }, "map.hex_size must be positive"},
		{"nan hex size", func(c *Config) { c.Map.HexSize = math.NaN() }, "map.hex_size must be positive"},
		{"zero noise scale", func(c *Config) { c.Terrain.NoiseScale = 0 }, "terrain.noise_scale must be positive"},
		{"water above one", func(c *Config) { c.Terrain.WaterThreshold = 1.2 }, "terrain.water_threshold"},
		{"negative mountain", func(c *Config) { c.Terrain.MountainThreshold = -0.1 }, "terrain.mountain_threshold"},
		{"infinite offset", func(c *Config) { c.Terrain.Offset.Y = math.Inf(-1) }, "terrain.offset must be finite"},
		{"unknown source", func(c *Config) { c.Noise.Source = "worley" }, "noise.source"},
		{"zero octaves", func(c *Config) { c.Noise.Octaves = 0 }, "noise.octaves"},
		{"bad persistence", func(c *Config) { c.Noise.Octaves = 3; c.Noise.Persistence = 0 }, "noise.persistence"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("error %v does not wrap ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidateGridErrorsWrapInvalidParameter(t *testing.T) {
	cfg := Default()
	cfg.Map.Radius = -3
	if err := cfg.Validate(); !errors.Is(err, world.ErrInvalidParameter) {
		t.Fatalf("err = %v, want world.ErrInvalidParameter", err)
	}
}

func TestValidateRadiusAboveMaxWrapsInvalidParameter(t *testing.T) {
	cfg := Default()
	cfg.Map.MaxRadius = 50
	cfg.Map.Radius = 50
	if err := cfg.Validate(); err != nil {
		t.Fatalf("radius equal to max_radius should validate: %v", err)
	}
	cfg.Map.Radius = 51
	if err := cfg.Validate(); !errors.Is(err, world.ErrInvalidParameter) {
		t.Fatalf("err = %v, want world.ErrInvalidParameter", err)
	}
}

func TestEmptyNoiseSourceIsPerlin(t *testing.T) {
	cfg := Default()
	cfg.Noise.Source = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty noise.source should validate: %v", err)
	}
	cfg.Noise.Source = " Simplex "
	if err := cfg.Validate(); err != nil {
		t.Fatalf("padded noise.source should validate: %v", err)
	}
}

func TestInvertedThresholdsAreAccepted(t *testing.T) {
	cfg := Default()
	cfg.Terrain.WaterThreshold = 0.8
	cfg.Terrain.MountainThreshold = 0.2
	if err := cfg.Validate(); err != nil {
		t.Fatalf("inverted thresholds should validate: %v", err)
	}
	warnings := cfg.Warnings()
	if len(warnings) != 1 || !strings.Contains(warnings[0], "no tile will be Plain") {
		t.Fatalf("warnings = %v", warnings)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexmap.yaml")
	content := `
map:
  radius: 4
terrain:
  offset:
    x: 12.5
noise:
  source: simplex
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Map.Radius != 4 {
		t.Errorf("radius = %d, want 4", cfg.Map.Radius)
	}
	if cfg.Map.HexSize != 1.0 {
		t.Errorf("hex size = %g, want default 1", cfg.Map.HexSize)
	}
	if cfg.Terrain.Offset.X != 12.5 || cfg.Terrain.Offset.Y != 0 {
		t.Errorf("offset = %+v", cfg.Terrain.Offset)
	}
	if cfg.Terrain.WaterThreshold != 0.3 || cfg.Terrain.MountainThreshold != 0.7 {
		t.Errorf("thresholds = %g/%g, want defaults", cfg.Terrain.WaterThreshold, cfg.Terrain.MountainThreshold)
	}
	if cfg.Noise.Source != "simplex" || cfg.Noise.Seed != 42 {
		t.Errorf("noise = %+v", cfg.Noise)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hexmap.yaml")
	if err := os.WriteFile(path, []byte("map:\n  raduis: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for misspelt key")
	}
}

func TestLoadEmptyFileAndMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("empty file: %v", err)
	}
	if cfg.Map.Radius != Default().Map.Radius {
		t.Errorf("radius = %d, want default", cfg.Map.Radius)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBundledConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "hexmap.yaml"))
	if err != nil {
		t.Fatalf("load bundled config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("bundled config invalid: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("HEXMAP_RADIUS", "7")
	t.Setenv("HEXMAP_HEX_SIZE", "2.5")
	t.Setenv("HEXMAP_MAX_RADIUS", "50")
	t.Setenv("HEXMAP_SEED", "1234")
	t.Setenv("HEXMAP_NOISE_SOURCE", "simplex")
	t.Setenv("HEXMAP_OFFSET_Y", "-3")
	t.Setenv("HEXMAP_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("HEXMAP_ADMIN_KEY", "secret")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Map.Radius != 7 || cfg.Map.HexSize != 2.5 || cfg.Map.MaxRadius != 50 {
		t.Errorf("map = %+v", cfg.Map)
	}
	if cfg.Noise.Seed != 1234 || cfg.Noise.Source != "simplex" {
		t.Errorf("noise = %+v", cfg.Noise)
	}
	if cfg.Terrain.Offset.Y != -3 {
		t.Errorf("offset = %+v", cfg.Terrain.Offset)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Server.AdminKey != "secret" {
		t.Errorf("admin key = %q", cfg.Server.AdminKey)
	}
}

func TestApplyEnvRejectsGarbage(t *testing.T) {
	t.Setenv("HEXMAP_NOISE_SCALE", "lots")
	cfg := Default()
	if err := cfg.ApplyEnv(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestWithLeavesBaseUntouched(t *testing.T) {
	base := Default()
	radius := 3
	water := 0.45
	offset := world.Vec2{X: 1, Y: 2}

	next := base.With(Overrides{Radius: &radius, WaterThreshold: &water, Offset: &offset})

	if base.Map.Radius != 10 || base.Terrain.WaterThreshold != 0.3 {
		t.Fatalf("base mutated: %+v", base)
	}
	gen := next.GenConfig()
	if gen.Radius != 3 || gen.WaterThreshold != 0.45 || gen.Offset != offset {
		t.Fatalf("gen config = %+v", gen)
	}
	if gen.MountainThreshold != 0.7 || gen.NoiseScale != 0.1 || gen.HexSize != 1.0 {
		t.Fatalf("unset overrides changed: %+v", gen)
	}
}
