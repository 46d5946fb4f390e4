package combat

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/world"
)

const third = 1.0 / 3

func warriors(at core.Coord, n int) world.AntStack {
	return world.AntStack{Cast: world.CastWarrior, Location: at, StartLocation: at, NumberOfAnts: n}
}

func duel(n0, n1 int) world.State {
	return world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainDirt),
		Colonies: []world.Colony{
			{Ants: []world.AntStack{warriors(core.C(2, 2), n0)}},
			{Ants: []world.AntStack{warriors(core.C(3, 2), n1)}},
		},
	}
}

func allDefend(world.AntRef) bool  { return true }
func noneDefend(world.AntRef) bool { return false }

func TestWarriorDuel(t *testing.T) {
	w := duel(5, 4)
	// Colony 0 rolls first, once per enemy ant (4): two hits.
	// Colony 1 rolls next, once per enemy ant (5): one hit.
	src := rng.NewFixed(
		0.1, 0.9, 0.2, 0.8,
		0.5, 0.05, 0.7, 0.6, 0.99,
	)

	got := ForStage(&w, allDefend, third, src)
	expected := []Interaction{
		{Colony: 0, Ant: 0, NumberLost: 2},
		{Colony: 1, Ant: 0, NumberLost: 1},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ForStage = %+v, expected %+v", got, expected)
	}
	if src.Remaining() != 0 {
		t.Errorf("%d draws left unconsumed, expected 0", src.Remaining())
	}
	// The displayed state is not modified.
	if w.Colonies[0].Ants[0].NumberOfAnts != 5 || w.Colonies[1].Ants[0].NumberOfAnts != 4 {
		t.Error("ForStage mutated its input")
	}

	Apply(&w, got)
	if n := w.Colonies[0].Ants[0].NumberOfAnts; n != 3 {
		t.Errorf("colony 0 has %d ants, expected 3", n)
	}
	if n := w.Colonies[1].Ants[0].NumberOfAnts; n != 3 {
		t.Errorf("colony 1 has %d ants, expected 3", n)
	}
}

func TestNoFightWithoutDefend(t *testing.T) {
	w := duel(5, 4)
	src := rng.NewFixed(0, 0, 0)
	if got := ForStage(&w, noneDefend, third, src); len(got) != 0 {
		t.Errorf("ForStage = %+v, expected no interactions", got)
	}
	if src.Remaining() != 3 {
		t.Error("rolls were consumed without a fight")
	}
}

func TestOneSidedDefendTriggers(t *testing.T) {
	w := duel(2, 2)
	onlyColony1 := func(r world.AntRef) bool { return r.Colony == 1 }
	got := ForStage(&w, onlyColony1, third, rng.NewFixed(0, 0, 0.9, 0.9))
	expected := []Interaction{{Colony: 0, Ant: 0, NumberLost: 2}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ForStage = %+v, expected %+v", got, expected)
	}
}

func TestNotAdjacent(t *testing.T) {
	w := duel(3, 3)
	w.Colonies[1].Ants[0].Location = core.C(4, 4)
	if got := ForStage(&w, allDefend, third, rng.NewFixed(0, 0, 0)); len(got) != 0 {
		t.Errorf("ForStage = %+v, expected no interactions", got)
	}
}

func TestSameColonyNeverFights(t *testing.T) {
	w := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainDirt),
		Colonies: []world.Colony{{Ants: []world.AntStack{
			warriors(core.C(2, 2), 3),
			warriors(core.C(3, 2), 3),
		}}},
	}
	if got := ForStage(&w, allDefend, third, rng.NewFixed(0, 0, 0)); len(got) != 0 {
		t.Errorf("ForStage = %+v, expected no interactions", got)
	}
}

func TestLossesCapped(t *testing.T) {
	// One ant surrounded by five enemies that all hit.
	w := duel(1, 5)
	src := rng.NewFixed(0, 0, 0, 0, 0, 0.9)
	got := ForStage(&w, allDefend, third, src)
	expected := []Interaction{{Colony: 0, Ant: 0, NumberLost: 1}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ForStage = %+v, expected %+v", got, expected)
	}
}

func TestWipedStackSkipsLaterPairs(t *testing.T) {
	// Colony 0's single ant is adjacent to two enemy stacks. It dies in the
	// first fight, so the second pair draws nothing.
	w := world.State{
		Terrain: world.NewTerrain(5, 5, world.TerrainDirt),
		Colonies: []world.Colony{
			{Ants: []world.AntStack{warriors(core.C(2, 2), 1)}},
			{Ants: []world.AntStack{warriors(core.C(3, 2), 1), warriors(core.C(1, 2), 1)}},
		},
	}
	src := rng.NewFixed(0, 0.9, 0.5, 0.5)
	got := ForStage(&w, allDefend, third, src)
	expected := []Interaction{{Colony: 0, Ant: 0, NumberLost: 1}}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ForStage = %+v, expected %+v", got, expected)
	}
	if src.Remaining() != 2 {
		t.Errorf("remaining draws = %d, expected 2", src.Remaining())
	}
}

func TestDeterminism(t *testing.T) {
	build := func() world.State {
		return world.State{
			Terrain: world.NewTerrain(6, 6, world.TerrainDirt),
			Colonies: []world.Colony{
				{Ants: []world.AntStack{warriors(core.C(2, 2), 6), warriors(core.C(2, 3), 4)}},
				{Ants: []world.AntStack{warriors(core.C(3, 2), 5), warriors(core.C(1, 3), 3)}},
				{Ants: []world.AntStack{warriors(core.C(3, 3), 7)}},
			},
		}
	}
	w1, w2 := build(), build()
	a := ForStage(&w1, allDefend, third, rng.NewSeeded(99))
	b := ForStage(&w2, allDefend, third, rng.NewSeeded(99))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different interactions:\n%+v\n%+v", a, b)
	}

	// Losses never exceed a stack's size.
	Apply(&w1, a)
	for ci, c := range w1.Colonies {
		for ai, s := range c.Ants {
			if s.NumberOfAnts < 0 {
				t.Errorf("colony %d ant %d has %d ants", ci, ai, s.NumberOfAnts)
			}
		}
	}
}

func TestApplyClampsAndIgnoresUnknown(t *testing.T) {
	w := duel(2, 2)
	Apply(&w, []Interaction{
		{Colony: 0, Ant: 0, NumberLost: 5},
		{Colony: 7, Ant: 0, NumberLost: 1},
	})
	if n := w.Colonies[0].Ants[0].NumberOfAnts; n != 0 {
		t.Errorf("NumberOfAnts = %d, expected 0", n)
	}
	if len(w.Colonies[0].Ants) != 1 {
		t.Error("Apply removed a stack")
	}
}

func TestTotal(t *testing.T) {
	totals := Total([]Interaction{
		{Colony: 0, Ant: 0, NumberLost: 2},
		{Colony: 1, Ant: 1, NumberLost: 1},
		{Colony: 0, Ant: 2, NumberLost: 3},
	}, 2)
	if !reflect.DeepEqual(totals, []int{5, 1}) {
		t.Errorf("Total = %v, expected [5 1]", totals)
	}
}
