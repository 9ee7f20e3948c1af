package noise

// Octaves layers base at increasing frequencies for fractal detail.
// The sum is divided by the total amplitude, so a base bounded to [0, 1]
// stays bounded. octaves <= 1 returns base unchanged.
func Octaves(base Func, octaves int, persistence, lacunarity float64) Func {
	if octaves <= 1 {
		return base
	}
	return func(x, y float64) float64 {
		total := 0.0
		amplitude := 1.0
		frequency := 1.0
		maxVal := 0.0

		for i := 0; i < octaves; i++ {
			total += base(x*frequency, y*frequency) * amplitude
			maxVal += amplitude
			amplitude *= persistence
			frequency *= lacunarity
		}

		if maxVal == 0 {
			return 0
		}
		return clamp01(total / maxVal)
	}
}
