// Package pipeline is the entry point that turns a configuration into a
// classified map: validate, build noise, build grid, classify.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hexterrain/internal/config"
	"github.com/talgya/hexterrain/internal/noise"
	"github.com/talgya/hexterrain/internal/world"
)

// Report summarises one generation.
type Report struct {
	Config      config.Config         `json:"-"`
	Seed        int64                 `json:"seed"`
	Tiles       int                   `json:"tiles"`
	Counts      map[world.Terrain]int `json:"-"`
	Fingerprint uint64                `json:"fingerprint"`
	Elapsed     time.Duration         `json:"elapsed_ns"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Count returns the number of tiles classified as t.
func (r *Report) Count(t world.Terrain) int {
	return r.Counts[t]
}

// CountsByName returns the terrain counts keyed by terrain name, with a
// zero entry for every terrain.
func (r *Report) CountsByName() map[string]int {
	out := make(map[string]int, len(world.AllTerrains))
	for _, t := range world.AllTerrains {
		out[t.String()] = r.Counts[t]
	}
	return out
}

// Regenerate replaces the contents of m with a map generated from cfg.
// A seed of 0 is resolved to a random one, which is returned in the report
// (and in Report.Config) so the run can be reproduced. On any error m is
// left unchanged.
func Regenerate(m *world.Map, cfg *config.Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings() {
		slog.Warn("generation config", "warning", w)
	}

	resolved := *cfg.Clone()
	resolved.Noise.Seed = noise.ResolveSeed(cfg.Noise.Seed)
	resolved.Noise.Source = resolved.Noise.SourceName()
	if cfg.Noise.Seed == 0 {
		slog.Info("picked random seed", "seed", resolved.Noise.Seed)
	}

	field, err := noise.New(resolved.Noise)
	if err != nil {
		return nil, fmt.Errorf("build noise: %w", err)
	}

	start := time.Now()
	if err := world.Regenerate(m, resolved.GenConfig(), world.NoiseFunc(field)); err != nil {
		return nil, fmt.Errorf("generate map: %w", err)
	}
	elapsed := time.Since(start)

	report := &Report{
		Config:      resolved,
		Seed:        resolved.Noise.Seed,
		Tiles:       m.Len(),
		Counts:      m.TerrainCounts(),
		Fingerprint: m.Fingerprint(),
		Elapsed:     elapsed,
		GeneratedAt: time.Now().UTC(),
	}

	slog.Info("map generated",
		"radius", m.Radius,
		"hex_size", m.HexSize,
		"source", resolved.Noise.Source,
		"seed", report.Seed,
		"tiles", report.Tiles,
		"water", report.Count(world.TerrainWater),
		"plain", report.Count(world.TerrainPlain),
		"mountain", report.Count(world.TerrainMountain),
		"fingerprint", fmt.Sprintf("%016x", report.Fingerprint),
		"elapsed", elapsed,
	)
	return report, nil
}

// Generate builds a new map from cfg.
func Generate(cfg *config.Config) (*world.Map, *Report, error) {
	m := world.NewMap()
	report, err := Regenerate(m, cfg)
	if err != nil {
		return nil, nil, err
	}
	return m, report, nil
}
