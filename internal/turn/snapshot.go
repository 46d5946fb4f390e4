package turn

import "github.com/vovakirdan/antfarm/internal/world"

// Snapshot contains the controller state for determinism checks.
// Uses primitive types only for stable comparison.
type Snapshot struct {
	Stage    int
	Substage int
	Done     bool
	Turn     int

	// Each stack is 6 ints: Cast, Facing, X, Y, NumberOfAnts, FoodHeld
	AntData []int
	// Each egg stack is 4 ints: X, Y, NumberOfEggs, DaysToHatch
	EggData []int
	// Each food item is 3 ints: X, Y, Value
	FoodData   []int
	SupplyData []int
	// Terrain codes, row-major
	TerrainData []int
	// Each interaction is 4 ints: Stage, Colony, Ant, NumberLost
	InteractionData []int
}

// Snapshot returns the current controller state as a Snapshot.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Stage:    c.pos.Stage,
		Substage: int(c.pos.Substage),
		Done:     c.done,
	}
	fillState(&snap, &c.displayed)
	for stage, ints := range c.log {
		for _, in := range ints {
			snap.InteractionData = append(snap.InteractionData, stage, in.Colony, in.Ant, in.NumberLost)
		}
	}
	return snap
}

// StateSnapshot flattens a world state alone.
func StateSnapshot(w *world.State) Snapshot {
	var snap Snapshot
	fillState(&snap, w)
	return snap
}

func fillState(snap *Snapshot, w *world.State) {
	snap.Turn = w.Turn
	for _, row := range w.Terrain {
		for _, t := range row {
			snap.TerrainData = append(snap.TerrainData, int(t))
		}
	}
	for _, col := range w.Colonies {
		snap.SupplyData = append(snap.SupplyData, col.FoodSupply)
		for _, a := range col.Ants {
			snap.AntData = append(snap.AntData, int(a.Cast), a.Facing, a.Location.X, a.Location.Y, a.NumberOfAnts, a.FoodHeld)
		}
		for _, e := range col.Eggs {
			snap.EggData = append(snap.EggData, e.Location.X, e.Location.Y, e.NumberOfEggs, e.DaysToHatch)
		}
	}
	for _, f := range w.Food {
		snap.FoodData = append(snap.FoodData, f.Location.X, f.Location.Y, f.Value)
	}
}

// Hash returns a simple hash of the snapshot for determinism testing.
func (snap *Snapshot) Hash() uint64 {
	h := uint64(snap.Stage)          //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Substage) //#nosec G115 -- hash computation
	h = h*31 + uint64(snap.Turn)     //#nosec G115 -- hash computation
	if snap.Done {
		h = h*31 + 1
	}
	for _, data := range [][]int{snap.AntData, snap.EggData, snap.FoodData, snap.SupplyData, snap.TerrainData, snap.InteractionData} {
		h = h*31 + uint64(len(data)) //#nosec G115 -- hash computation
		for _, v := range data {
			h = h*31 + uint64(v) //#nosec G115 -- hash computation
		}
	}
	return h
}
