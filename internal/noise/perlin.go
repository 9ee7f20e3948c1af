package noise

import "github.com/aquilax/go-perlin"

// Perlin returns gradient noise from go-perlin remapped from [-1, 1] to
// [0, 1]. alpha=2, beta=2, n=3 gives smooth terrain-like variation.
func Perlin(seed int64) Func {
	p := perlin.NewPerlin(2, 2, 3, seed)
	return func(x, y float64) float64 {
		return clamp01((p.Noise2D(x, y) + 1) / 2)
	}
}
