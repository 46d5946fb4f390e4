package economy

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/world"
)

func stack(cast world.Cast, at core.Coord, n, held int) world.AntStack {
	return world.AntStack{Cast: cast, Location: at, StartLocation: at, NumberOfAnts: n, FoodHeld: held}
}

func noSpawn() config.Rules {
	r := config.DefaultRules()
	r.Spawn = nil
	return r
}

func TestSpawnOnEmptyDirt(t *testing.T) {
	w := world.State{
		Terrain:  world.NewTerrain(1, 1, world.TerrainDirt),
		Colonies: []world.Colony{{}},
	}
	rules := config.DefaultRules()
	rules.Spawn = map[string][]config.SpawnChance{
		"dirt": {{Size: 1, Probability: 0.02}, {Size: 2, Probability: 0.01}},
	}
	src := rng.NewFixed(0.01)

	Process(&w, nil, rules, src)

	expected := []world.FoodItem{{Location: core.C(0, 0), Value: 1}}
	if !reflect.DeepEqual(w.Food, expected) {
		t.Errorf("food = %+v, expected %+v", w.Food, expected)
	}
	if src.Remaining() != 0 {
		t.Errorf("remaining draws = %d, expected 0", src.Remaining())
	}
}

func TestSpawnTriesSizesInOrder(t *testing.T) {
	w := world.State{Terrain: world.NewTerrain(1, 1, world.TerrainSurface)}
	rules := noSpawn()
	rules.Spawn = map[string][]config.SpawnChance{
		"surface": {{Size: 5, Probability: 0.3}, {Size: 1, Probability: 0.1}, {Size: 3, Probability: 0.2}},
	}
	// size 1 misses (0.5), size 3 hits (0.15), size 5 is never drawn
	src := rng.NewFixed(0.5, 0.15, 0.0)

	spawned := Spawn(&w, rules, src)
	if len(spawned) != 1 || spawned[0].Value != 3 {
		t.Errorf("spawned = %+v, expected one item of value 3", spawned)
	}
	if src.Remaining() != 1 {
		t.Errorf("remaining draws = %d, expected 1", src.Remaining())
	}
}

func TestSpawnSkipsOccupiedCells(t *testing.T) {
	w := world.State{
		Terrain: world.NewTerrain(3, 1, world.TerrainDirt),
		Colonies: []world.Colony{{Ants: []world.AntStack{
			stack(world.CastWorker, core.C(0, 0), 2, 0),
			stack(world.CastWorker, core.C(2, 0), 0, 0), // dead stacks do not block
		}}},
		Food: []world.FoodItem{{Location: core.C(1, 0), Value: 4}},
	}
	rules := noSpawn()
	rules.Spawn = map[string][]config.SpawnChance{"dirt": {{Size: 1, Probability: 0.5}}}
	src := rng.NewFixed(0.0, 0.0, 0.0)

	spawned := Spawn(&w, rules, src)
	expected := []world.FoodItem{{Location: core.C(2, 0), Value: 1}}
	if !reflect.DeepEqual(spawned, expected) {
		t.Errorf("spawned = %+v, expected %+v", spawned, expected)
	}
	if src.Remaining() != 2 {
		t.Errorf("remaining draws = %d, expected 2", src.Remaining())
	}
}

func TestSpawnNoTableNoDraws(t *testing.T) {
	w := world.State{Terrain: world.NewTerrain(4, 4, world.TerrainBedrock)}
	src := rng.NewFixed(0.0)
	if spawned := Spawn(&w, config.DefaultRules(), src); len(spawned) != 0 {
		t.Errorf("spawned %+v on bedrock", spawned)
	}
	if src.Remaining() != 1 {
		t.Error("draws consumed for a terrain without spawn table")
	}
}

func TestForage(t *testing.T) {
	tests := []struct {
		name      string
		n, held   int
		value     int
		wantHeld  int
		wantValue int
	}{
		{"takes all", 3, 0, 4, 4, 0},
		{"limited by capacity", 2, 0, 10, 4, 6},
		{"partially full", 2, 3, 10, 4, 9},
		{"already full", 2, 4, 10, 4, 10},
		{"over capacity keeps load", 1, 5, 10, 5, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := world.State{
				Terrain:  world.NewTerrain(3, 3, world.TerrainDirt),
				Colonies: []world.Colony{{Ants: []world.AntStack{stack(world.CastWorker, core.C(1, 1), tc.n, tc.held)}}},
				Food:     []world.FoodItem{{Location: core.C(1, 1), Value: tc.value}},
			}
			Forage(&w, 2)
			if got := w.Colonies[0].Ants[0].FoodHeld; got != tc.wantHeld {
				t.Errorf("FoodHeld = %d, expected %d", got, tc.wantHeld)
			}
			if got := w.Food[0].Value; got != tc.wantValue {
				t.Errorf("food value = %d, expected %d", got, tc.wantValue)
			}
		})
	}
}

func TestForageTieForfeits(t *testing.T) {
	w := world.State{
		Terrain: world.NewTerrain(3, 3, world.TerrainDirt),
		Colonies: []world.Colony{
			{Ants: []world.AntStack{stack(world.CastWorker, core.C(1, 1), 2, 0)}},
			{Ants: []world.AntStack{stack(world.CastWorker, core.C(1, 1), 2, 0)}},
		},
		Food: []world.FoodItem{{Location: core.C(1, 1), Value: 3}},
	}
	if got := Forage(&w, 2); got != 0 {
		t.Errorf("Forage = %d, expected 0", got)
	}
	if w.Food[0].Value != 3 {
		t.Errorf("food value = %d, expected 3", w.Food[0].Value)
	}
}

func TestDeliver(t *testing.T) {
	tests := []struct {
		name    string
		ants    []world.AntStack
		banked  int
		carried int
	}{
		{
			"next to queen",
			[]world.AntStack{stack(world.CastWorker, core.C(2, 2), 2, 3), stack(world.CastQueen, core.C(3, 2), 1, 0)},
			3, 0,
		},
		{
			"with larva",
			[]world.AntStack{stack(world.CastWorker, core.C(2, 2), 2, 3), stack(world.CastLarva, core.C(2, 2), 4, 0)},
			3, 0,
		},
		{
			"next to larva only",
			[]world.AntStack{stack(world.CastWorker, core.C(2, 2), 2, 3), stack(world.CastLarva, core.C(3, 2), 4, 0)},
			0, 3,
		},
		{
			"far from queen",
			[]world.AntStack{stack(world.CastWorker, core.C(0, 0), 2, 3), stack(world.CastQueen, core.C(4, 4), 1, 0)},
			0, 3,
		},
		{
			"dead queen",
			[]world.AntStack{stack(world.CastWorker, core.C(2, 2), 2, 3), stack(world.CastQueen, core.C(3, 2), 0, 0)},
			0, 3,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := world.State{
				Terrain:  world.NewTerrain(5, 5, world.TerrainDirt),
				Colonies: []world.Colony{{Ants: tc.ants, FoodSupply: 1}},
			}
			delivered := Deliver(&w)
			if delivered[0] != tc.banked {
				t.Errorf("delivered = %d, expected %d", delivered[0], tc.banked)
			}
			if got := w.Colonies[0].FoodSupply; got != 1+tc.banked {
				t.Errorf("FoodSupply = %d, expected %d", got, 1+tc.banked)
			}
			if got := w.Colonies[0].Ants[0].FoodHeld; got != tc.carried {
				t.Errorf("FoodHeld = %d, expected %d", got, tc.carried)
			}
		})
	}
}

func TestDeliverIgnoresEnemyQueen(t *testing.T) {
	w := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainDirt),
		Colonies: []world.Colony{
			{Ants: []world.AntStack{stack(world.CastWorker, core.C(2, 2), 2, 3)}},
			{Ants: []world.AntStack{stack(world.CastQueen, core.C(3, 2), 1, 0)}},
		},
	}
	Deliver(&w)
	if w.Colonies[0].FoodSupply != 0 || w.Colonies[1].FoodSupply != 0 {
		t.Error("food was delivered to an enemy queen")
	}
}

func TestCleanup(t *testing.T) {
	w := world.State{Food: []world.FoodItem{
		{Location: core.C(0, 0), Value: 0},
		{Location: core.C(1, 0), Value: 2},
		{Location: core.C(2, 0), Value: 0},
	}}
	if removed := Cleanup(&w); removed != 2 {
		t.Errorf("Cleanup = %d, expected 2", removed)
	}
	expected := []world.FoodItem{{Location: core.C(1, 0), Value: 2}}
	if !reflect.DeepEqual(w.Food, expected) {
		t.Errorf("food = %+v, expected %+v", w.Food, expected)
	}
}

func TestForageDeliverCleanup(t *testing.T) {
	// A worker standing on food next to its queen forages, delivers, and the
	// emptied item disappears, all in one pass.
	w := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainStone),
		Colonies: []world.Colony{{Ants: []world.AntStack{
			stack(world.CastWorker, core.C(2, 2), 2, 0),
			stack(world.CastQueen, core.C(3, 2), 1, 0),
		}}},
		Food: []world.FoodItem{{Location: core.C(2, 2), Value: 3}},
	}
	r := Process(&w, nil, noSpawn(), rng.NewFixed())
	if r.Foraged != 3 || r.Delivered[0] != 3 || r.Removed != 1 {
		t.Errorf("report = %+v", r)
	}
	if w.Colonies[0].FoodSupply != 3 {
		t.Errorf("FoodSupply = %d, expected 3", w.Colonies[0].FoodSupply)
	}
	if len(w.Food) != 0 {
		t.Errorf("food = %+v, expected none", w.Food)
	}
}

func TestIncubate(t *testing.T) {
	w := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainChamber),
		Colonies: []world.Colony{{
			Ants: []world.AntStack{stack(world.CastQueen, core.C(0, 0), 1, 0)},
			Eggs: []world.EggStack{
				{Location: core.C(2, 2), NumberOfEggs: 4, DaysToHatch: 1},
				{Location: core.C(3, 3), NumberOfEggs: 2, DaysToHatch: 3},
				{Location: core.C(0, 0), NumberOfEggs: 1, DaysToHatch: 0},
			},
		}},
	}

	if hatched := Incubate(&w, nil); hatched != 4 {
		t.Errorf("Incubate = %d, expected 4", hatched)
	}

	colony := w.Colonies[0]
	if len(colony.Ants) != 2 {
		t.Fatalf("got %d stacks, expected 2", len(colony.Ants))
	}
	larva := colony.Ants[1]
	if larva.Cast != world.CastLarva || larva.NumberOfAnts != 4 || larva.Location != core.C(2, 2) {
		t.Errorf("hatched stack = %+v", larva)
	}
	expectedEggs := []world.EggStack{
		{Location: core.C(3, 3), NumberOfEggs: 2, DaysToHatch: 2},
		{Location: core.C(0, 0), NumberOfEggs: 1, DaysToHatch: 0}, // under the queen
	}
	if !reflect.DeepEqual(colony.Eggs, expectedEggs) {
		t.Errorf("eggs = %+v, expected %+v", colony.Eggs, expectedEggs)
	}
}

func TestProcessIncubationDisabled(t *testing.T) {
	w := world.State{
		Terrain: world.NewTerrain(2, 2, world.TerrainChamber),
		Colonies: []world.Colony{{
			Eggs: []world.EggStack{{Location: core.C(1, 1), NumberOfEggs: 2, DaysToHatch: 1}},
		}},
	}
	rules := noSpawn()
	rules.Eggs.IncubationEnabled = false
	Process(&w, nil, rules, rng.NewFixed())
	if w.Colonies[0].Eggs[0].DaysToHatch != 1 || len(w.Colonies[0].Ants) != 0 {
		t.Error("eggs changed with incubation disabled")
	}
}

func TestIncubateSkipsNewlyLaid(t *testing.T) {
	start := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainChamber),
		Colonies: []world.Colony{{
			Ants: []world.AntStack{stack(world.CastQueen, core.C(0, 0), 1, 0)},
			Eggs: []world.EggStack{{Location: core.C(3, 3), NumberOfEggs: 2, DaysToHatch: 1}},
		}},
	}
	w := start.Clone()
	// Laid at stage 11 of this turn
	w.Colonies[0].Eggs = append(w.Colonies[0].Eggs, world.EggStack{Location: core.C(2, 2), NumberOfEggs: 1, DaysToHatch: 1})

	if hatched := Incubate(&w, &start); hatched != 2 {
		t.Errorf("Incubate = %d, expected 2", hatched)
	}
	expectedEggs := []world.EggStack{{Location: core.C(2, 2), NumberOfEggs: 1, DaysToHatch: 1}}
	if !reflect.DeepEqual(w.Colonies[0].Eggs, expectedEggs) {
		t.Errorf("eggs = %+v, expected %+v", w.Colonies[0].Eggs, expectedEggs)
	}

	// One turn later the new stack counts down and hatches
	next := w.Clone()
	if hatched := Incubate(&next, &w); hatched != 1 {
		t.Errorf("second Incubate = %d, expected 1", hatched)
	}
	if len(next.Colonies[0].Eggs) != 0 {
		t.Errorf("eggs = %+v, expected none left", next.Colonies[0].Eggs)
	}
}
