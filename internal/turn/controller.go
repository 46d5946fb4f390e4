// Package turn drives the resolution of one turn through its 12 stages, each
// split into Before, Interacting and After substages, and commits the result
// as the next turn-start state.
//
// Every displayed state is recomputed from the turn-start snapshot, the
// selections and the interaction log, so any reached position can be shown
// again without replaying the random sequence.
package turn

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/antfarm/internal/action"
	"github.com/vovakirdan/antfarm/internal/combat"
	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/economy"
	"github.com/vovakirdan/antfarm/internal/merge"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/world"
)

var (
	// ErrBadSelections is returned by New when selections do not fit the snapshot.
	ErrBadSelections = errors.New("turn: bad selections")
	// ErrNotDone is returned by Commit before stage 12 has been resolved.
	ErrNotDone = errors.New("turn: resolution not finished")
	// ErrTurnComplete is returned by Step once the turn has been resolved.
	ErrTurnComplete = errors.New("turn: already complete")
	// ErrNotReached is returned by DisplayAt for a position not yet resolved.
	ErrNotReached = errors.New("turn: position not reached")
)

// Selections holds one action per ant stack per colony.
type Selections [][]action.Action

// Controller is the working memory of one turn's resolution.
type Controller struct {
	snapshot   world.State
	selections Selections
	rules      config.Rules
	params     action.Params
	src        rng.Source

	pos       Position
	done      bool
	err       error
	displayed world.State
	log       [][]combat.Interaction
	last      []combat.Interaction
	final     world.State
	report    economy.Report
}

// New validates the selections against the snapshot and returns a controller
// at (0, After). The snapshot is copied and never modified.
func New(snapshot world.State, selections Selections, rules config.Rules, src rng.Source) (*Controller, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("turn: %w", err)
	}
	start := snapshot.Clone()
	if err := start.Validate(); err != nil {
		return nil, fmt.Errorf("turn: snapshot: %w", err)
	}
	for ci := range start.Colonies {
		for ai := range start.Colonies[ci].Ants {
			a := &start.Colonies[ci].Ants[ai]
			a.StartLocation = a.Location
		}
	}

	params := action.ParamsFrom(rules)
	if err := checkSelections(&start, selections, params); err != nil {
		return nil, err
	}

	sel := make(Selections, len(selections))
	for ci, acts := range selections {
		sel[ci] = append([]action.Action(nil), acts...)
	}

	return &Controller{
		snapshot:   start,
		selections: sel,
		rules:      rules.Clone(),
		params:     params,
		src:        src,
		pos:        Position{Stage: 0, Substage: After},
		displayed:  start.Clone(),
		log:        make([][]combat.Interaction, FinalStage+1),
	}, nil
}

func checkSelections(w *world.State, selections Selections, p action.Params) error {
	if len(selections) != len(w.Colonies) {
		return fmt.Errorf("%w: %d selections for %d colonies", ErrBadSelections, len(selections), len(w.Colonies))
	}
	for ci, acts := range selections {
		colony := &w.Colonies[ci]
		if len(acts) != len(colony.Ants) {
			return fmt.Errorf("%w: colony %d has %d actions for %d stacks", ErrBadSelections, ci, len(acts), len(colony.Ants))
		}
		cost := 0
		for ai, act := range acts {
			if err := act.Check(colony.Ants[ai]); err != nil {
				return fmt.Errorf("%w: colony %d ant %d: %w", ErrBadSelections, ci, ai, err)
			}
			if act.Kind == action.KindDig && !w.InBounds(act.Location) {
				return fmt.Errorf("%w: colony %d ant %d: dig target %v is off the map", ErrBadSelections, ci, ai, act.Location)
			}
			if act.Kind == action.KindMove {
				for _, s := range act.Steps {
					if !w.InBounds(s) {
						return fmt.Errorf("%w: colony %d ant %d: step %v is off the map", ErrBadSelections, ci, ai, s)
					}
				}
			}
			cost += act.Cost(p)
		}
		if cost > colony.FoodSupply {
			return fmt.Errorf("%w: colony %d orders cost %d food, has %d", ErrBadSelections, ci, cost, colony.FoodSupply)
		}
	}
	return nil
}

// Step performs exactly one transition of the state machine.
func (c *Controller) Step() error {
	if c.err != nil {
		return c.err
	}
	if c.done {
		return ErrTurnComplete
	}

	n := c.pos.Stage
	switch {
	case n == 0:
		c.displayed = c.snapshot.Clone()
		c.pos = Position{Stage: 1, Substage: Before}

	case c.pos.Substage == Before:
		w, err := c.compute(n, n-1)
		if err != nil {
			return c.fail(err)
		}
		c.displayed = w
		c.pos.Substage = Interacting

	case c.pos.Substage == Interacting:
		ints := combat.ForStage(&c.displayed, c.defending, c.rules.Combat.KillProbability, c.src)
		c.log[n] = ints
		c.last = ints
		c.pos.Substage = After

	case c.pos.Substage == After:
		w, err := c.compute(n, n)
		if err != nil {
			return c.fail(err)
		}
		if n < FinalStage {
			c.displayed = w
			c.pos = Position{Stage: n + 1, Substage: Before}
			return nil
		}
		c.report = economy.Process(&w, &c.snapshot, c.rules, c.src)
		c.displayed = w
		c.final = w.Clone()
		c.done = true
	}
	return nil
}

func (c *Controller) fail(err error) error {
	c.err = fmt.Errorf("turn: stage %d: %w", c.pos.Stage, err)
	return c.err
}

// compute rebuilds the state with every action applied through stage and
// the interactions of stages 1..through subtracted.
func (c *Controller) compute(stage, through int) (world.State, error) {
	w := c.snapshot.Clone()
	ap := action.NewApplier(c.params)
	for ci, acts := range c.selections {
		for ai, act := range acts {
			ref := world.AntRef{Colony: ci, Ant: ai}
			if err := ap.ApplyStage(&w, ref, act, stage); err != nil {
				return world.State{}, fmt.Errorf("colony %d ant %d: %w", ci, ai, err)
			}
		}
	}
	for s := 1; s <= through && s <= FinalStage; s++ {
		combat.Apply(&w, c.log[s])
	}
	return w, nil
}

func (c *Controller) defending(ref world.AntRef) bool {
	return c.selections[ref.Colony][ref.Ant].Kind == action.KindDefend
}

// SkipToEnd runs every remaining transition. Display is skipped but the
// resolution is complete.
func (c *Controller) SkipToEnd() error {
	for !c.done {
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Done reports whether stage 12 has been fully resolved.
func (c *Controller) Done() bool {
	return c.done
}

// Err returns the fatal error that stopped resolution, if any.
func (c *Controller) Err() error {
	return c.err
}

// Position returns the state the next Step will execute. Once the turn is
// done it stays at (12, After).
func (c *Controller) Position() Position {
	return c.pos
}

// Shown returns the position the displayed state belongs to.
func (c *Controller) Shown() Position {
	if c.done {
		return c.pos
	}
	idx := c.pos.Index() - 1
	if idx < 0 {
		idx = 0
	}
	return PositionAt(idx)
}

// Displayed returns a copy of the current displayed state.
func (c *Controller) Displayed() world.State {
	return c.displayed.Clone()
}

// TurnStart returns a copy of the turn-start state.
func (c *Controller) TurnStart() world.State {
	return c.snapshot.Clone()
}

// Selections returns the actions being resolved.
func (c *Controller) Selections() Selections {
	return c.selections
}

// Interactions returns the interaction log indexed by stage. Index 0 is always empty.
func (c *Controller) Interactions() [][]combat.Interaction {
	out := make([][]combat.Interaction, len(c.log))
	for i, ints := range c.log {
		out[i] = append([]combat.Interaction(nil), ints...)
	}
	return out
}

// LastInteractions returns the interactions of the most recent Interacting transition.
func (c *Controller) LastInteractions() []combat.Interaction {
	return append([]combat.Interaction(nil), c.last...)
}

// Economy returns the end-of-turn report. It is zero until Done.
func (c *Controller) Economy() economy.Report {
	return c.report
}

// DisplayAt recomputes the displayed state of an already resolved position.
// It never draws from the random sequence.
func (c *Controller) DisplayAt(p Position) (world.State, error) {
	if !p.Valid() {
		return world.State{}, fmt.Errorf("turn: invalid position %v", p)
	}
	if !c.done && p.Index() >= c.pos.Index() {
		return world.State{}, fmt.Errorf("%w: %v", ErrNotReached, p)
	}
	switch {
	case p.Stage == 0:
		return c.snapshot.Clone(), nil
	case p.Substage == After && p.Stage == FinalStage:
		return c.final.Clone(), nil
	case p.Substage == After:
		return c.compute(p.Stage, p.Stage)
	default:
		return c.compute(p.Stage, p.Stage-1)
	}
}

// Commit merges the stacks of the resolved state and returns it as the next
// turn-start state. Partial resolutions are never committed.
func (c *Controller) Commit() (world.State, error) {
	if c.err != nil {
		return world.State{}, c.err
	}
	if !c.done {
		return world.State{}, ErrNotDone
	}
	out := c.final.Clone()
	if err := merge.State(&out); err != nil {
		c.err = fmt.Errorf("turn: commit: %w", err)
		return world.State{}, c.err
	}
	out.Turn++
	return out, nil
}
