// Package combat resolves the fights that break out between adjacent stacks
// of different colonies during one stage of a turn.
package combat

import (
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/world"
)

// Interaction is one stack's losses from one fight.
type Interaction struct {
	Colony     int `json:"colony"`
	Ant        int `json:"ant"`
	NumberLost int `json:"number_lost"`
}

// Ref returns the stack the interaction applies to.
func (i Interaction) Ref() world.AntRef {
	return world.AntRef{Colony: i.Colony, Ant: i.Ant}
}

// ForStage returns the losses of every fight on the displayed state.
//
// Colonies are paired in index order (a < b), then their stacks in index
// order. A pair fights when the stacks are adjacent and either one is
// defending. Side A rolls once per enemy ant, then side B does, each roll
// killing one friendly ant when it falls below killProbability. Losses never
// exceed what is left of a stack, and a stack already wiped out earlier in
// the stage neither fights nor draws. ForStage does not modify displayed.
func ForStage(displayed *world.State, defending func(world.AntRef) bool, killProbability float64, src rng.Source) []Interaction {
	remaining := make([][]int, len(displayed.Colonies))
	for ci, c := range displayed.Colonies {
		remaining[ci] = make([]int, len(c.Ants))
		for ai, a := range c.Ants {
			remaining[ci][ai] = a.NumberOfAnts
		}
	}

	var out []Interaction
	for a := 0; a < len(displayed.Colonies); a++ {
		for b := a + 1; b < len(displayed.Colonies); b++ {
			for i, sa := range displayed.Colonies[a].Ants {
				for j, sb := range displayed.Colonies[b].Ants {
					if remaining[a][i] == 0 || remaining[b][j] == 0 {
						continue
					}
					if !core.Adjacent(sa.Location, sb.Location) {
						continue
					}
					refA := world.AntRef{Colony: a, Ant: i}
					refB := world.AntRef{Colony: b, Ant: j}
					if !defending(refA) && !defending(refB) {
						continue
					}

					lostA := roll(src, remaining[b][j], remaining[a][i], killProbability)
					lostB := roll(src, remaining[a][i], remaining[b][j], killProbability)
					remaining[a][i] -= lostA
					remaining[b][j] -= lostB

					if lostA > 0 {
						out = append(out, Interaction{Colony: a, Ant: i, NumberLost: lostA})
					}
					if lostB > 0 {
						out = append(out, Interaction{Colony: b, Ant: j, NumberLost: lostB})
					}
				}
			}
		}
	}
	return out
}

// roll draws once per enemy ant and returns the friendly losses, capped at friendly.
func roll(src rng.Source, enemies, friendly int, p float64) int {
	lost := 0
	for k := 0; k < enemies; k++ {
		if src.Float64() < p {
			lost++
		}
	}
	if lost > friendly {
		lost = friendly
	}
	return lost
}

// Apply subtracts the losses from w. Stacks are clamped at zero and kept, so
// references stay valid for the rest of the turn.
func Apply(w *world.State, interactions []Interaction) {
	for _, in := range interactions {
		stack := w.Stack(in.Ref())
		if stack == nil {
			continue
		}
		stack.NumberOfAnts -= in.NumberLost
		if stack.NumberOfAnts < 0 {
			stack.NumberOfAnts = 0
		}
	}
}

// Total returns the number of ants lost per colony.
func Total(interactions []Interaction, colonies int) []int {
	totals := make([]int, colonies)
	for _, in := range interactions {
		if in.Colony >= 0 && in.Colony < colonies {
			totals[in.Colony] += in.NumberLost
		}
	}
	return totals
}
