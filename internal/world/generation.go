// World generation: grid enumeration followed by a noise classification pass.
package world

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned when a grid cannot be built from the
// requested radius or hex size.
var ErrInvalidParameter = errors.New("invalid parameter")

// NoiseFunc samples a deterministic, coherent 2D field bounded to [0, 1].
type NoiseFunc func(x, y float64) float64

// ClassifyParams controls how noise is sampled and thresholded.
type ClassifyParams struct {
	NoiseScale        float64 // Multiplier from layout space to noise space
	WaterThreshold    float64 // Noise strictly below this is water (0.0–1.0)
	MountainThreshold float64 // Noise strictly above this is mountain (0.0–1.0)
	Offset            Vec2    // Added to the position before scaling
}

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius  int     // Hex grid radius
	HexSize float64 // Centre-to-corner distance in layout units
	ClassifyParams
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:  10,
		HexSize: 1.0,
		ClassifyParams: ClassifyParams{
			NoiseScale:        0.1,
			WaterThreshold:    0.3,
			MountainThreshold: 0.7,
		},
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	cfg := DefaultGenConfig()
	cfg.Radius = 3
	return cfg
}

// Build enumerates every axial coordinate within radius and creates a
// Plain tile at its flat-top layout position. Nothing is allocated when the
// parameters are rejected.
func Build(radius int, hexSize float64) (*Map, error) {
	if radius < 0 {
		return nil, fmt.Errorf("radius %d must be non-negative: %w", radius, ErrInvalidParameter)
	}
	if radius > MaxBuildRadius {
		return nil, fmt.Errorf("radius %d exceeds %d: %w", radius, MaxBuildRadius, ErrInvalidParameter)
	}
	if !(hexSize > 0) || math.IsInf(hexSize, 0) {
		return nil, fmt.Errorf("hex size %g must be positive: %w", hexSize, ErrInvalidParameter)
	}

	m := &Map{
		Radius:  radius,
		HexSize: hexSize,
		tiles:   make(map[HexCoord]*Tile, HexCount(radius)),
	}

	for q := -radius; q <= radius; q++ {
		for r := -radius; r <= radius; r++ {
			coord := HexCoord{Q: q, R: r}
			// Cube coordinate constraint trims the q×r square to a hexagon.
			if !InRegion(coord, radius) {
				continue
			}
			m.tiles[coord] = &Tile{
				Coord:    coord,
				Position: ToPosition(coord, hexSize),
				Terrain:  TerrainPlain,
			}
		}
	}

	return m, nil
}

// ClassifyValue maps a single noise sample to a terrain. Both bounds are
// strict, so a value equal to either threshold is Plain. When the water
// threshold is above the mountain threshold the Plain band is empty.
func ClassifyValue(v, waterThreshold, mountainThreshold float64) Terrain {
	if v < waterThreshold {
		return TerrainWater
	}
	if v > mountainThreshold {
		return TerrainMountain
	}
	return TerrainPlain
}

// Classify samples noise at every tile's (offset, scaled) position and
// assigns its terrain in place. Tiles are independent of each other, so
// iteration order does not affect the result.
func Classify(m *Map, p ClassifyParams, noise NoiseFunc) {
	for _, t := range m.tiles {
		nx := (t.Position.X + p.Offset.X) * p.NoiseScale
		ny := (t.Position.Y + p.Offset.Y) * p.NoiseScale
		v := noise(nx, ny)
		t.Noise = v
		t.Terrain = ClassifyValue(v, p.WaterThreshold, p.MountainThreshold)
	}
}

// Generate builds and classifies a new map.
func Generate(cfg GenConfig, noise NoiseFunc) (*Map, error) {
	m, err := Build(cfg.Radius, cfg.HexSize)
	if err != nil {
		return nil, err
	}
	Classify(m, cfg.ClassifyParams, noise)
	return m, nil
}

// Regenerate replaces the contents of m with a freshly generated map.
// The new map is built and classified off to the side, so m is untouched
// when generation fails.
func Regenerate(m *Map, cfg GenConfig, noise NoiseFunc) error {
	fresh, err := Generate(cfg, noise)
	if err != nil {
		return err
	}
	m.replace(fresh)
	return nil
}
