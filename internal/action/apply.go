package action

import (
	"fmt"

	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

// Stages is the number of the final stage of a turn.
const Stages = 12

const (
	digMoveStage  = 3  // Dig relocates after this stage
	finalizeStage = 11 // one-shot effects from this stage on
)

// Params are the rule values the action model needs.
type Params struct {
	EggMax         int
	IncubationDays int
	LayCost        int
	TunnelCost     int
	ChamberCost    int
}

// ParamsFrom extracts the action parameters from the rules.
func ParamsFrom(r config.Rules) Params {
	return Params{
		EggMax:         r.Eggs.MaxPerStack,
		IncubationDays: r.Eggs.IncubationDays,
		LayCost:        r.Eggs.LayCost,
		TunnelCost:     r.Dig.TunnelCost,
		ChamberCost:    r.Dig.ChamberCost,
	}
}

// StepIndex returns the index into a move of numSteps steps that a stack has
// reached at a stage: ceil(numSteps*stage/12) - 1. It is -1 at stage 0 and
// numSteps-1 at stage 12, and never decreases as the stage grows.
func StepIndex(numSteps, stage int) int {
	if stage < 0 {
		stage = 0
	}
	if stage > Stages {
		stage = Stages
	}
	return (numSteps*stage+Stages-1)/Stages - 1
}

// Applier applies actions for one resolution pass, that is one computation
// of a working state from the turn-start snapshot. It remembers which stacks
// already received their final-stage effect so stage 11 and 12 can both be
// applied to the same working state without charging twice.
type Applier struct {
	params Params
	done   map[world.AntRef]bool
}

// NewApplier creates an Applier for one resolution pass.
func NewApplier(p Params) *Applier {
	return &Applier{params: p, done: make(map[world.AntRef]bool)}
}

// ApplyStage mutates w to reflect act's effect through stage.
// The stack must be at its start-of-turn position or at an earlier stage of the same action.
func (p *Applier) ApplyStage(w *world.State, ref world.AntRef, act Action, stage int) error {
	stack := w.Stack(ref)
	if stack == nil {
		return fmt.Errorf("%w: %d/%d", ErrUnknownAnt, ref.Colony, ref.Ant)
	}

	switch act.Kind {
	case KindNone, KindDefend:
		return nil
	case KindMove:
		applyMove(stack, act.Steps, stage)
		return nil
	case KindLayEgg:
		if stage < finalizeStage || p.done[ref] {
			return nil
		}
		p.done[ref] = true
		colony := &w.Colonies[ref.Colony]
		layEgg(colony, stack.Location, p.params)
		colony.FoodSupply -= p.params.LayCost
		return nil
	case KindDig:
		dug, err := act.WhatToDig.Terrain()
		if err != nil {
			return err
		}
		if stage > digMoveStage {
			if f := core.FacingFromMovement(stack.StartLocation, act.Location); f != core.NoFacing {
				stack.Facing = f
			}
			stack.Location = act.Location
		}
		if stage < finalizeStage || p.done[ref] {
			return nil
		}
		if !w.SetTerrain(act.Location, dug) {
			return fmt.Errorf("%w: dig target %v is off the map", ErrInvalidAction, act.Location)
		}
		p.done[ref] = true
		w.Colonies[ref.Colony].FoodSupply -= act.Cost(p.params)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, act.Kind)
}

func applyMove(stack *world.AntStack, steps []core.Coord, stage int) {
	k := StepIndex(len(steps), stage)
	if k < 0 {
		return
	}
	from := stack.StartLocation
	if k > 0 {
		from = steps[k-1]
	}
	if f := core.FacingFromMovement(from, steps[k]); f != core.NoFacing {
		stack.Facing = f
	}
	stack.Location = steps[k]
}

func layEgg(colony *world.Colony, loc core.Coord, p Params) {
	if i, ok := colony.EggIndexAt(loc); ok {
		if colony.Eggs[i].NumberOfEggs < p.EggMax {
			colony.Eggs[i].NumberOfEggs++
		}
		return
	}
	colony.Eggs = append(colony.Eggs, world.EggStack{
		Location:     loc,
		NumberOfEggs: 1,
		DaysToHatch:  p.IncubationDays,
	})
}
