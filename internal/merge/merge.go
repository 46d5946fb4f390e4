// Package merge consolidates the ant stacks of a colony that ended a turn on
// the same cell.
package merge

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

// ErrCastMismatch is wrapped by CastMismatchError.
var ErrCastMismatch = errors.New("merge: stacks of different casts share a cell")

// CastMismatchError reports two stacks of one colony on one cell with different casts.
type CastMismatchError struct {
	Colony   int
	Location core.Coord
	First    world.Cast
	Second   world.Cast
}

func (e *CastMismatchError) Error() string {
	return fmt.Sprintf("merge: colony %d at %v: cannot merge %s with %s", e.Colony, e.Location, e.First, e.Second)
}

func (e *CastMismatchError) Unwrap() error {
	return ErrCastMismatch
}

// Stacks merges stacks by location in first-occurrence order. Empty stacks
// are dropped before grouping. The merged stack keeps the facing of the first
// member and sums ants and carried food.
func Stacks(ants []world.AntStack) ([]world.AntStack, error) {
	var out []world.AntStack
	index := make(map[core.Coord]int, len(ants))
	for _, a := range ants {
		if a.NumberOfAnts <= 0 {
			continue
		}
		i, ok := index[a.Location]
		if !ok {
			index[a.Location] = len(out)
			out = append(out, a)
			continue
		}
		if out[i].Cast != a.Cast {
			return nil, &CastMismatchError{Location: a.Location, First: out[i].Cast, Second: a.Cast}
		}
		out[i].NumberOfAnts += a.NumberOfAnts
		out[i].FoodHeld += a.FoodHeld
	}
	return out, nil
}

// State merges the stacks of every colony of w and marks each stack's current
// location as its start location for the next turn.
func State(w *world.State) error {
	for ci := range w.Colonies {
		merged, err := Stacks(w.Colonies[ci].Ants)
		if err != nil {
			var mismatch *CastMismatchError
			if errors.As(err, &mismatch) {
				mismatch.Colony = ci
			}
			return err
		}
		for i := range merged {
			merged[i].StartLocation = merged[i].Location
		}
		w.Colonies[ci].Ants = merged
	}
	return nil
}
