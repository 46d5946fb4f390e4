package action

import (
	"fmt"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

// Revert undoes a fully applied action on w, restoring the stack (and any
// terrain it dug) to turnStart and refunding what the action cost.
func Revert(w *world.State, turnStart *world.State, ref world.AntRef, act Action, p Params) error {
	stack := w.Stack(ref)
	orig := turnStart.Stack(ref)
	if stack == nil || orig == nil {
		return fmt.Errorf("%w: %d/%d", ErrUnknownAnt, ref.Colony, ref.Ant)
	}

	switch act.Kind {
	case KindNone, KindDefend, KindMove:
	case KindLayEgg:
		colony := &w.Colonies[ref.Colony]
		// Eggs are laid where the queen stands, which LayEgg never changes.
		unlayEgg(colony, &turnStart.Colonies[ref.Colony], stack.Location)
		colony.FoodSupply += act.Cost(p)
	case KindDig:
		if _, err := act.WhatToDig.Terrain(); err != nil {
			return err
		}
		t, ok := turnStart.TerrainAt(act.Location)
		if !ok || !w.SetTerrain(act.Location, t) {
			return fmt.Errorf("%w: dig target %v is off the map", ErrInvalidAction, act.Location)
		}
		w.Colonies[ref.Colony].FoodSupply += act.Cost(p)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, act.Kind)
	}

	stack.Location = orig.Location
	stack.Facing = orig.Facing
	return nil
}

// unlayEgg removes one egg at loc, never going below what the turn started
// with, since a capped egg stack did not grow.
func unlayEgg(colony, start *world.Colony, loc core.Coord) {
	i, ok := colony.EggIndexAt(loc)
	if !ok {
		return
	}
	floor := 0
	if j, ok := start.EggIndexAt(loc); ok {
		floor = start.Eggs[j].NumberOfEggs
	}
	n := colony.Eggs[i].NumberOfEggs - 1
	if n < floor {
		n = floor
	}
	if n <= 0 {
		colony.Eggs = append(colony.Eggs[:i], colony.Eggs[i+1:]...)
		return
	}
	colony.Eggs[i].NumberOfEggs = n
}
