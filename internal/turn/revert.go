package turn

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/vovakirdan/antfarm/internal/action"
	"github.com/vovakirdan/antfarm/internal/world"
)

// ErrRevertMismatch is returned by CheckRevert when undoing the turn's
// actions does not restore the turn-start state.
var ErrRevertMismatch = errors.New("turn: revert does not restore turn start")

// CheckRevert applies every action through stage 12 without combat, reverts
// them all in reverse order and compares the result with the turn-start
// state. It draws nothing from the random sequence.
func (c *Controller) CheckRevert() error {
	w, err := c.compute(FinalStage, 0)
	if err != nil {
		return fmt.Errorf("turn: revert check: %w", err)
	}
	for ci := len(c.selections) - 1; ci >= 0; ci-- {
		acts := c.selections[ci]
		for ai := len(acts) - 1; ai >= 0; ai-- {
			ref := world.AntRef{Colony: ci, Ant: ai}
			if err := action.Revert(&w, &c.snapshot, ref, acts[ai], c.params); err != nil {
				return fmt.Errorf("turn: revert check: colony %d ant %d: %w", ci, ai, err)
			}
		}
	}

	if !reflect.DeepEqual(w.Terrain, c.snapshot.Terrain) {
		return fmt.Errorf("%w: terrain differs", ErrRevertMismatch)
	}
	for ci := range w.Colonies {
		got, want := &w.Colonies[ci], &c.snapshot.Colonies[ci]
		if got.FoodSupply != want.FoodSupply {
			return fmt.Errorf("%w: colony %d food supply %d, expected %d", ErrRevertMismatch, ci, got.FoodSupply, want.FoodSupply)
		}
		if len(got.Eggs) != len(want.Eggs) || (len(want.Eggs) > 0 && !reflect.DeepEqual(got.Eggs, want.Eggs)) {
			return fmt.Errorf("%w: colony %d eggs differ", ErrRevertMismatch, ci)
		}
		for ai := range got.Ants {
			g, s := got.Ants[ai], want.Ants[ai]
			if g.Location != s.Location || g.Facing != s.Facing {
				return fmt.Errorf("%w: colony %d ant %d at %v facing %d, expected %v facing %d",
					ErrRevertMismatch, ci, ai, g.Location, g.Facing, s.Location, s.Facing)
			}
		}
	}
	return nil
}
