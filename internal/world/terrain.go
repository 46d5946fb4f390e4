package world

import (
	"errors"
	"fmt"
)

// ErrUnknownTerrain is returned when decoding an unrecognized terrain name.
var ErrUnknownTerrain = errors.New("world: unknown terrain")

// Terrain is the type code of one grid cell.
type Terrain uint8

const (
	TerrainBedrock Terrain = iota // Impassable floor of the map
	TerrainDirt                   // Diggable soil, spawns small food
	TerrainStone                  // Diggable but costly in practice
	TerrainSky                    // Open air above the surface
	TerrainTunnel                 // Dug passage
	TerrainChamber                // Dug room
	TerrainSurface                // Ground level, spawns larger food
)

var terrainNames = [...]string{
	TerrainBedrock: "bedrock",
	TerrainDirt:    "dirt",
	TerrainStone:   "stone",
	TerrainSky:     "sky",
	TerrainTunnel:  "tunnel",
	TerrainChamber: "chamber",
	TerrainSurface: "surface",
}

// String returns the lowercase name of the terrain.
func (t Terrain) String() string {
	if int(t) < len(terrainNames) {
		return terrainNames[t]
	}
	return fmt.Sprintf("terrain(%d)", uint8(t))
}

// Valid reports whether t is one of the enumerated terrain codes.
func (t Terrain) Valid() bool {
	return int(t) < len(terrainNames)
}

// ParseTerrain converts a lowercase terrain name into its code.
func ParseTerrain(name string) (Terrain, error) {
	for i, n := range terrainNames {
		if n == name {
			return Terrain(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTerrain, name)
}

// MarshalText encodes the terrain by name.
func (t Terrain) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTerrain, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a terrain name.
func (t *Terrain) UnmarshalText(b []byte) error {
	parsed, err := ParseTerrain(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Glyph returns the character used to draw the terrain.
func (t Terrain) Glyph() rune {
	switch t {
	case TerrainBedrock:
		return '#'
	case TerrainDirt:
		return '.'
	case TerrainStone:
		return '%'
	case TerrainSky:
		return ' '
	case TerrainTunnel:
		return '_'
	case TerrainChamber:
		return 'o'
	case TerrainSurface:
		return '"'
	default:
		return '?'
	}
}

// NewTerrain returns a width x height grid filled with one terrain code.
func NewTerrain(width, height int, fill Terrain) [][]Terrain {
	grid := make([][]Terrain, height)
	for y := range grid {
		grid[y] = make([]Terrain, width)
		for x := range grid[y] {
			grid[y][x] = fill
		}
	}
	return grid
}
