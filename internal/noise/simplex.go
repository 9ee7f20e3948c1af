package noise

import opensimplex "github.com/ojrac/opensimplex-go"

// Simplex returns OpenSimplex noise, already normalised to [0, 1].
func Simplex(seed int64) Func {
	n := opensimplex.NewNormalized(seed)
	return func(x, y float64) float64 {
		return clamp01(n.Eval2(x, y))
	}
}
