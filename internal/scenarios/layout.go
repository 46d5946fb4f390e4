// Package scenarios provides the built-in starting positions. Each scenario
// registers itself with the registry in init().
package scenarios

import (
	"fmt"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

var glyphTerrain = func() map[rune]world.Terrain {
	m := make(map[rune]world.Terrain)
	for t := world.TerrainBedrock; t.Valid(); t++ {
		m[t.Glyph()] = t
	}
	return m
}()

// ParseTerrain creates a terrain grid from an ASCII map drawn with the
// terrain glyphs:
//
//	' ' = sky
//	'"' = surface
//	'.' = dirt
//	'%' = stone
//	'_' = tunnel
//	'o' = chamber
//	'#' = bedrock
//
// Short lines are padded with sky.
func ParseTerrain(lines []string) ([][]world.Terrain, error) {
	width := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > width {
			width = n
		}
	}

	grid := world.NewTerrain(width, len(lines), world.TerrainSky)
	for y, line := range lines {
		for x, ch := range []rune(line) {
			t, ok := glyphTerrain[ch]
			if !ok {
				return nil, fmt.Errorf("scenarios: unknown glyph %q at [%d,%d]", ch, x, y)
			}
			grid[y][x] = t
		}
	}
	return grid, nil
}

func stack(cast world.Cast, at core.Coord, n int) world.AntStack {
	return world.AntStack{Cast: cast, Location: at, StartLocation: at, NumberOfAnts: n}
}

// fixed is a hand-drawn scenario that ignores the seed.
type fixed struct {
	id       string
	title    string
	layout   []string
	colonies []world.Colony
	food     []world.FoodItem
}

func (f *fixed) ID() string    { return f.id }
func (f *fixed) Title() string { return f.title }

func (f *fixed) Build(int64) (world.State, error) {
	terrain, err := ParseTerrain(f.layout)
	if err != nil {
		return world.State{}, err
	}
	w := world.State{
		Terrain: terrain,
		Food:    append([]world.FoodItem(nil), f.food...),
	}
	for _, c := range f.colonies {
		w.Colonies = append(w.Colonies, world.Colony{
			Ants:       append([]world.AntStack(nil), c.Ants...),
			Eggs:       append([]world.EggStack(nil), c.Eggs...),
			FoodSupply: c.FoodSupply,
			AntColor:   c.AntColor,
		})
	}
	return w, nil
}
