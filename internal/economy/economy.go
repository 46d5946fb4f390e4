// Package economy runs the end-of-turn food cycle: foraging, delivery to the
// nest, removal of exhausted food, spawning of new food and egg incubation.
package economy

import (
	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/world"
)

// Report summarizes what one Process call changed.
type Report struct {
	Foraged   int              `json:"foraged"`
	Delivered []int            `json:"delivered"` // per colony
	Removed   int              `json:"removed"`
	Spawned   []world.FoodItem `json:"spawned"`
	Hatched   int              `json:"hatched"`
}

// Process runs every step once, in order. Spawn is the only step that draws
// from src, one value per attempted size. start is the turn-start state; egg
// stacks it lacks were laid this turn and do not count down yet.
func Process(w, start *world.State, rules config.Rules, src rng.Source) Report {
	var r Report
	r.Foraged = Forage(w, rules.Forage.CarryPerAnt)
	r.Delivered = Deliver(w)
	r.Removed = Cleanup(w)
	r.Spawned = Spawn(w, rules, src)
	if rules.Eggs.IncubationEnabled {
		r.Hatched = Incubate(w, start)
	}
	return r
}

// Forage lets the single stack standing on a food item pick up as much as it
// can carry. A cell shared by several stacks is not foraged at all.
func Forage(w *world.State, carryPerAnt int) int {
	total := 0
	for i := range w.Food {
		item := &w.Food[i]
		refs := w.StacksAt(item.Location)
		if len(refs) != 1 {
			continue
		}
		stack := w.Stack(refs[0])
		room := carryPerAnt*stack.NumberOfAnts - stack.FoodHeld
		if room <= 0 {
			continue
		}
		take := min(item.Value, room)
		item.Value -= take
		stack.FoodHeld += take
		total += take
	}
	return total
}

// Deliver banks the food of every stack that stands with a larva stack of its
// colony, or next to or with its queen. It returns the amount banked per colony.
func Deliver(w *world.State) []int {
	delivered := make([]int, len(w.Colonies))
	for ci := range w.Colonies {
		colony := &w.Colonies[ci]
		for ai := range colony.Ants {
			stack := &colony.Ants[ai]
			if stack.FoodHeld == 0 || stack.NumberOfAnts == 0 {
				continue
			}
			if !atNest(colony, ai) {
				continue
			}
			colony.FoodSupply += stack.FoodHeld
			delivered[ci] += stack.FoodHeld
			stack.FoodHeld = 0
		}
	}
	return delivered
}

func atNest(colony *world.Colony, ai int) bool {
	loc := colony.Ants[ai].Location
	for j, other := range colony.Ants {
		if j == ai || other.NumberOfAnts == 0 {
			continue
		}
		switch other.Cast {
		case world.CastLarva:
			if other.Location == loc {
				return true
			}
		case world.CastQueen:
			if other.Location == loc || core.Adjacent(other.Location, loc) {
				return true
			}
		}
	}
	return false
}

// Cleanup removes exhausted food items.
func Cleanup(w *world.State) int {
	kept := w.Food[:0]
	removed := 0
	for _, f := range w.Food {
		if f.Value <= 0 {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	w.Food = kept
	return removed
}

// Spawn visits every cell in row-major order. On a cell free of food and of
// living stacks it tries the terrain's sizes smallest first, one draw each,
// and places at most one item.
func Spawn(w *world.State, rules config.Rules, src rng.Source) []world.FoodItem {
	var spawned []world.FoodItem
	for y, row := range w.Terrain {
		for x, t := range row {
			c := core.C(x, y)
			if _, ok := w.FoodIndexAt(c); ok {
				continue
			}
			if _, ok := w.StackAt(c); ok {
				continue
			}
			for _, chance := range rules.SpawnTable(t) {
				if src.Float64() < chance.Probability {
					item := world.FoodItem{Location: c, Value: chance.Size}
					w.Food = append(w.Food, item)
					spawned = append(spawned, item)
					break
				}
			}
		}
	}
	return spawned
}

// Incubate counts every egg stack down by one day. Eggs at zero hatch into a
// larva stack of the same size, unless another cast of the colony occupies
// the cell, in which case they wait. Stacks missing from start were laid this
// turn and are left untouched; a nil start counts every stack down.
func Incubate(w, start *world.State) int {
	hatched := 0
	for ci := range w.Colonies {
		colony := &w.Colonies[ci]
		kept := colony.Eggs[:0]
		for _, e := range colony.Eggs {
			if laidThisTurn(start, ci, e.Location) {
				kept = append(kept, e)
				continue
			}
			if e.DaysToHatch > 0 {
				e.DaysToHatch--
			}
			if e.DaysToHatch > 0 || blocked(colony, e.Location) {
				kept = append(kept, e)
				continue
			}
			if e.NumberOfEggs <= 0 {
				continue
			}
			colony.Ants = append(colony.Ants, world.AntStack{
				Cast:          world.CastLarva,
				Location:      e.Location,
				StartLocation: e.Location,
				NumberOfAnts:  e.NumberOfEggs,
			})
			hatched += e.NumberOfEggs
		}
		colony.Eggs = kept
	}
	return hatched
}

func laidThisTurn(start *world.State, colony int, loc core.Coord) bool {
	if start == nil || colony >= len(start.Colonies) {
		return false
	}
	_, existed := start.Colonies[colony].EggIndexAt(loc)
	return !existed
}

func blocked(colony *world.Colony, loc core.Coord) bool {
	for _, a := range colony.Ants {
		if a.NumberOfAnts > 0 && a.Location == loc && a.Cast != world.CastLarva {
			return true
		}
	}
	return false
}
