package world

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
)

// Tile is a single hex on the map. Coord and Position never change after
// Build; Terrain and Noise are set by Classify.
type Tile struct {
	Coord    HexCoord `json:"coord"`
	Position Position `json:"position"`
	Terrain  Terrain  `json:"terrain"`
	Noise    float64  `json:"noise"` // Sample that produced Terrain; 0 before classification
}

// Map holds the complete hex grid. Consumers outside this package only get
// copies of tiles; the map is mutated by Build, Rebuild and Classify.
type Map struct {
	Radius  int     `json:"radius"`
	HexSize float64 `json:"hex_size"`

	tiles map[HexCoord]*Tile
}

// NewMap creates an empty map. Use Rebuild or Build to populate it.
func NewMap() *Map {
	return &Map{tiles: make(map[HexCoord]*Tile)}
}

// Get returns the tile at the given coordinate.
func (m *Map) Get(coord HexCoord) (Tile, bool) {
	t, ok := m.tiles[coord]
	if !ok {
		return Tile{}, false
	}
	return *t, true
}

// Tiles returns a copy of every tile, sorted by (r, q) so output is stable.
func (m *Map) Tiles() []Tile {
	out := make([]Tile, 0, len(m.tiles))
	for _, t := range m.tiles {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Coord.R != out[j].Coord.R {
			return out[i].Coord.R < out[j].Coord.R
		}
		return out[i].Coord.Q < out[j].Coord.Q
	})
	return out
}

// Len returns the total number of tiles in the map.
func (m *Map) Len() int {
	return len(m.tiles)
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return InRegion(coord, m.Radius)
}

// Rebuild discards the current contents and repopulates the grid with
// Plain tiles. On error the map is left exactly as it was.
func (m *Map) Rebuild(radius int, hexSize float64) error {
	fresh, err := Build(radius, hexSize)
	if err != nil {
		return err
	}
	m.replace(fresh)
	return nil
}

func (m *Map) replace(other *Map) {
	m.Radius = other.Radius
	m.HexSize = other.HexSize
	m.tiles = other.tiles
}

// TerrainCounts returns a summary of terrain type distribution.
func (m *Map) TerrainCounts() map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, t := range m.tiles {
		counts[t.Terrain]++
	}
	return counts
}

// Fingerprint digests every (q, r, terrain) triple in a fixed order.
// Two maps with the same layout and classification share a fingerprint
// regardless of insertion order.
func (m *Map) Fingerprint() uint64 {
	h := fnv.New64a()
	var buf [17]byte
	for _, t := range m.Tiles() {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(int64(t.Coord.Q)))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(int64(t.Coord.R)))
		buf[16] = byte(t.Terrain)
		h.Write(buf[:])
	}
	return h.Sum64()
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, size=%g, hexes=%d)", m.Radius, m.HexSize, m.Len())
}
