// Package mapgen builds starting worlds from layered simplex noise: a rolling
// surface line over dirt with stone pockets, closed by a bedrock floor.
package mapgen

import (
	"errors"
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

// ErrTooSmall is returned when a map cannot hold the requested colonies.
var ErrTooSmall = errors.New("mapgen: map too small")

// Palette is the ant colour given to colonies in index order.
var Palette = []string{"red", "blue", "yellow", "green", "magenta", "cyan"}

// GenConfig holds world generation parameters.
type GenConfig struct {
	Width      int
	Height     int
	Seed       int64
	Colonies   int
	SkyRows    int     // Rows of open air above the highest surface cell
	Roughness  int     // Maximum surface drop below SkyRows
	StoneLevel float64 // Noise threshold above which dirt becomes stone (0.0–1.0)
	FoodItems  int     // Food items scattered on the surface
	StartFood  int     // Initial food supply of every colony
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:      24,
		Height:     14,
		Seed:       1,
		Colonies:   2,
		SkyRows:    2,
		Roughness:  2,
		StoneLevel: 0.68,
		FoodItems:  4,
		StartFood:  6,
	}
}

// Generate creates a turn 0 world. The same config always yields the same world.
func Generate(cfg GenConfig) (world.State, error) {
	if cfg.Colonies < 1 || cfg.Colonies > len(Palette) {
		return world.State{}, fmt.Errorf("mapgen: %d colonies, expected 1..%d", cfg.Colonies, len(Palette))
	}
	minHeight := cfg.SkyRows + cfg.Roughness + 5
	if cfg.Height < minHeight || cfg.Width < cfg.Colonies*4 {
		return world.State{}, fmt.Errorf("%w: %dx%d for %d colonies", ErrTooSmall, cfg.Width, cfg.Height, cfg.Colonies)
	}

	surfaceNoise := opensimplex.NewNormalized(cfg.Seed)
	stoneNoise := opensimplex.NewNormalized(cfg.Seed + 1)
	foodNoise := opensimplex.NewNormalized(cfg.Seed + 2)

	w := world.State{Terrain: world.NewTerrain(cfg.Width, cfg.Height, world.TerrainDirt)}

	surface := make([]int, cfg.Width)
	for x := range surface {
		n := octaveNoise(surfaceNoise, float64(x), 0, 3, 0.12, 0.5)
		surface[x] = cfg.SkyRows + int(n*float64(cfg.Roughness+1))
		if surface[x] > cfg.SkyRows+cfg.Roughness {
			surface[x] = cfg.SkyRows + cfg.Roughness
		}
	}

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			c := core.C(x, y)
			switch {
			case y == cfg.Height-1:
				w.SetTerrain(c, world.TerrainBedrock)
			case y < surface[x]:
				w.SetTerrain(c, world.TerrainSky)
			case y == surface[x]:
				w.SetTerrain(c, world.TerrainSurface)
			default:
				cx, cy := core.Center(c)
				if octaveNoise(stoneNoise, cx, cy, 2, 0.2, 0.5) > cfg.StoneLevel {
					w.SetTerrain(c, world.TerrainStone)
				}
			}
		}
	}

	for i := 0; i < cfg.Colonies; i++ {
		x := (2*i + 1) * cfg.Width / (2 * cfg.Colonies)
		w.Colonies = append(w.Colonies, nest(&w, x, surface[x], i, cfg.StartFood))
	}

	placeFood(&w, surface, foodNoise, cfg.FoodItems)
	return w, nil
}

// nest digs a chamber two rows under the surface with a tunnel up to it and
// places a queen, a worker stack and a warrior stack.
func nest(w *world.State, x, surfaceY, index, food int) world.Colony {
	chamber := core.C(x, surfaceY+2)
	tunnel := core.C(x, surfaceY+1)
	w.SetTerrain(chamber, world.TerrainChamber)
	w.SetTerrain(tunnel, world.TerrainTunnel)
	for _, n := range core.Neighbors(chamber) {
		if t, ok := w.TerrainAt(n); ok && t == world.TerrainStone {
			w.SetTerrain(n, world.TerrainDirt)
		}
	}

	stack := func(cast world.Cast, at core.Coord, n int) world.AntStack {
		return world.AntStack{Cast: cast, Facing: 0, Location: at, StartLocation: at, NumberOfAnts: n}
	}
	return world.Colony{
		Ants: []world.AntStack{
			stack(world.CastQueen, chamber, 1),
			stack(world.CastWorker, tunnel, 4),
			stack(world.CastWarrior, core.C(x, surfaceY), 2),
		},
		FoodSupply: food,
		AntColor:   Palette[index],
	}
}

// placeFood puts food on the surface cells where the noise peaks, skipping
// cells next to a nest entrance.
func placeFood(w *world.State, surface []int, noise opensimplex.Noise, count int) {
	type candidate struct {
		at    core.Coord
		score float64
	}
	var cands []candidate
	for x, y := range surface {
		c := core.C(x, y)
		if _, occupied := w.StackAt(c); occupied {
			continue
		}
		near := false
		for _, n := range core.Neighbors(c) {
			if _, ok := w.StackAt(n); ok {
				near = true
				break
			}
		}
		if near {
			continue
		}
		cands = append(cands, candidate{at: c, score: noise.Eval2(float64(x)*0.7, 0.5)})
	}

	for i := 0; i < count && len(cands) > 0; i++ {
		best := 0
		for j := range cands {
			if cands[j].score > cands[best].score {
				best = j
			}
		}
		value := 1 + int(cands[best].score*4)
		w.Food = append(w.Food, world.FoodItem{Location: cands[best].at, Value: value})
		cands = append(cands[:best], cands[best+1:]...)
	}
}

// octaveNoise samples multi-octave noise normalized to 0..1.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
