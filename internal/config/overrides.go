package config

import "github.com/talgya/hexterrain/internal/world"

// Overrides carries a partial update to the generation settings, as sent to
// the regenerate endpoint. Nil fields keep their current value.
type Overrides struct {
	Radius            *int        `json:"radius,omitempty"`
	HexSize           *float64    `json:"hex_size,omitempty"`
	NoiseScale        *float64    `json:"noise_scale,omitempty"`
	WaterThreshold    *float64    `json:"water_threshold,omitempty"`
	MountainThreshold *float64    `json:"mountain_threshold,omitempty"`
	Offset            *world.Vec2 `json:"offset,omitempty"`
	Seed              *int64      `json:"seed,omitempty"`
	Source            *string     `json:"source,omitempty"`
	Octaves           *int        `json:"octaves,omitempty"`
}

// With returns a copy of c with o applied. c is not modified.
func (c *Config) With(o Overrides) *Config {
	out := c.Clone()
	if o.Radius != nil {
		out.Map.Radius = *o.Radius
	}
	if o.HexSize != nil {
		out.Map.HexSize = *o.HexSize
	}
	if o.NoiseScale != nil {
		out.Terrain.NoiseScale = *o.NoiseScale
	}
	if o.WaterThreshold != nil {
		out.Terrain.WaterThreshold = *o.WaterThreshold
	}
	if o.MountainThreshold != nil {
		out.Terrain.MountainThreshold = *o.MountainThreshold
	}
	if o.Offset != nil {
		out.Terrain.Offset = *o.Offset
	}
	if o.Seed != nil {
		out.Noise.Seed = *o.Seed
	}
	if o.Source != nil {
		out.Noise.Source = *o.Source
	}
	if o.Octaves != nil {
		out.Noise.Octaves = *o.Octaves
	}
	return out
}
