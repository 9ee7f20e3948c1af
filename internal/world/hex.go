// Package world provides the hex grid, terrain classification, and the map model.
// Uses axial coordinates (q, r) with a flat-top layout.
package world

import (
	"fmt"
	"math"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// Position is a continuous point in layout space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec2 is a 2D offset applied before noise sampling.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

var sqrt3 = math.Sqrt(3.0)

// ToPosition converts an axial coordinate to its flat-top layout position.
func ToPosition(c HexCoord, hexSize float64) Position {
	q := float64(c.Q)
	r := float64(c.R)
	return Position{
		X: hexSize * (sqrt3*q + sqrt3/2*r),
		Y: hexSize * (3.0 / 2.0 * r),
	}
}

// Corners returns the six outline vertices of a hex centred at center.
// Vertex i sits at 60°*i - 30° from the centre, at distance hexSize.
func Corners(center Position, hexSize float64) [6]Position {
	var out [6]Position
	for i := 0; i < 6; i++ {
		angle := (60.0*float64(i) - 30.0) * math.Pi / 180.0
		out[i] = Position{
			X: center.X + hexSize*math.Cos(angle),
			Y: center.Y + hexSize*math.Sin(angle),
		}
	}
	return out
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	// Max of the three absolute differences in cube coordinates.
	return max(abs(a.Q-b.Q), abs(a.R-b.R), abs(a.S()-b.S()))
}

// InRegion reports whether c lies inside the hexagon of the given radius
// centred on the origin: |q|, |r| and |s| all within radius.
func InRegion(c HexCoord, radius int) bool {
	// Range checks rather than abs, which wraps at math.MinInt.
	within := func(v int) bool { return v >= -radius && v <= radius }
	return within(c.Q) && within(c.R) && within(c.S())
}

// MaxBuildRadius is the largest radius whose tile count 3r²+3r+1 fits in
// an int.
var MaxBuildRadius = func() int {
	r := int(math.Sqrt(float64(math.MaxInt) / 3))
	for r > 0 && r > (math.MaxInt-1)/3/(r+1) {
		r--
	}
	return r
}()

// HexCount returns the number of hexes in a region of the given radius,
// or 0 when the radius is negative or above MaxBuildRadius.
func HexCount(radius int) int {
	if radius < 0 || radius > MaxBuildRadius {
		return 0
	}
	return 3*radius*radius + 3*radius + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
