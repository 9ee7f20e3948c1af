package world

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Terrain types for hex tiles.
type Terrain uint8

const (
	TerrainWater    Terrain = iota // Noise below the water threshold
	TerrainPlain                   // Default; noise between the thresholds
	TerrainMountain                // Noise above the mountain threshold
)

var terrainNames = [...]string{
	TerrainWater:    "Water",
	TerrainPlain:    "Plain",
	TerrainMountain: "Mountain",
}

// AllTerrains lists every terrain in declaration order.
var AllTerrains = []Terrain{TerrainWater, TerrainPlain, TerrainMountain}

// String returns a human-readable name for a terrain type.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return "Unknown"
}

// ParseTerrain maps a name (case-insensitive) back to its terrain.
func ParseTerrain(name string) (Terrain, error) {
	for i, n := range terrainNames {
		if strings.EqualFold(n, name) {
			return Terrain(i), nil
		}
	}
	return 0, fmt.Errorf("unknown terrain %q", name)
}

func (t Terrain) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Terrain) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseTerrain(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
