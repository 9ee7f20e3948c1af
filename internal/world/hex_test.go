package world

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b HexCoord
		want int
	}{
		{HexCoord{0, 0}, HexCoord{0, 0}, 0},
		{HexCoord{0, 0}, HexCoord{1, 0}, 1},
		{HexCoord{0, 0}, HexCoord{2, -1}, 2},
		{HexCoord{-3, 1}, HexCoord{2, -2}, 5},
		{HexCoord{1, 1}, HexCoord{0, 0}, 2},
	}
	for _, tc := range tests {
		if got := Distance(tc.a, tc.b); got != tc.want {
			t.Errorf("Distance(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestNeighborsAreAdjacent(t *testing.T) {
	c := HexCoord{Q: 2, R: -1}
	seen := make(map[HexCoord]bool)
	for _, n := range c.Neighbors() {
		if Distance(c, n) != 1 {
			t.Errorf("neighbor %v of %v at distance %d", n, c, Distance(c, n))
		}
		seen[n] = true
	}
	if len(seen) != 6 {
		t.Errorf("got %d distinct neighbors, want 6", len(seen))
	}
}

func TestInRegion(t *testing.T) {
	tests := []struct {
		c      HexCoord
		radius int
		want   bool
	}{
		{HexCoord{0, 0}, 0, true},
		{HexCoord{1, 0}, 0, false},
		{HexCoord{1, -1}, 1, true},
		{HexCoord{1, 1}, 1, false},   // s = -2
		{HexCoord{-2, -2}, 3, false}, // s = 4
		{HexCoord{3, -3}, 3, true},
		{HexCoord{math.MinInt, 0}, 3, false},
		{HexCoord{0, math.MinInt}, 3, false},
	}
	for _, tc := range tests {
		if got := InRegion(tc.c, tc.radius); got != tc.want {
			t.Errorf("InRegion(%v, %d) = %v, want %v", tc.c, tc.radius, got, tc.want)
		}
	}
}

func TestCornersFlatTop(t *testing.T) {
	center := Position{X: 1, Y: 2}
	corners := Corners(center, 2)

	for i, c := range corners {
		d := math.Hypot(c.X-center.X, c.Y-center.Y)
		if math.Abs(d-2) > eps {
			t.Errorf("corner %d at distance %g, want 2", i, d)
		}
	}

	// i = 0 sits at -30°.
	want := Position{X: 1 + 2*math.Cos(-math.Pi/6), Y: 2 + 2*math.Sin(-math.Pi/6)}
	if math.Abs(corners[0].X-want.X) > eps || math.Abs(corners[0].Y-want.Y) > eps {
		t.Errorf("corner 0 = %+v, want %+v", corners[0], want)
	}

	// Corners 2 and 5 sit at 90° and 270°, straight above and below.
	if math.Abs(corners[2].Y-center.Y-2) > eps || math.Abs(corners[5].Y-center.Y+2) > eps {
		t.Errorf("corners 2 and 5 = %+v, %+v; want on the vertical axis", corners[2], corners[5])
	}
}

func TestTerrainStringAndJSON(t *testing.T) {
	for _, ter := range AllTerrains {
		data, err := json.Marshal(ter)
		if err != nil {
			t.Fatal(err)
		}
		var back Terrain
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		if back != ter {
			t.Errorf("round trip %v -> %s -> %v", ter, data, back)
		}
	}
	if Terrain(42).String() != "Unknown" {
		t.Errorf("Terrain(42).String() = %q", Terrain(42).String())
	}
	if _, err := ParseTerrain("lava"); err == nil {
		t.Error("expected error for unknown terrain")
	}
	if got, _ := ParseTerrain("mountain"); got != TerrainMountain {
		t.Errorf("ParseTerrain(mountain) = %v", got)
	}
}

func TestFingerprintTracksTerrain(t *testing.T) {
	a, _ := Build(3, 1.0)
	b, _ := Build(3, 1.0)
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatal("identical builds fingerprint differently")
	}
	Classify(b, ClassifyParams{NoiseScale: 1, WaterThreshold: 0.3, MountainThreshold: 0.7}, constant(0.1))
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatal("fingerprint ignores terrain")
	}
}

func TestMapInBounds(t *testing.T) {
	m, err := Build(2, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	for _, tile := range m.Tiles() {
		if !m.InBounds(tile.Coord) {
			t.Errorf("built tile %v reported out of bounds", tile.Coord)
		}
	}
	for _, c := range []HexCoord{{3, 0}, {2, 1}, {-2, -1}, {0, -3}} {
		if m.InBounds(c) {
			t.Errorf("%v reported in bounds for radius 2", c)
		}
		if _, ok := m.Get(c); ok {
			t.Errorf("%v present in radius 2 map", c)
		}
	}
}
