package turn

import (
	"github.com/vovakirdan/antfarm/internal/action"
	"github.com/vovakirdan/antfarm/internal/combat"
	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/economy"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/world"
)

// Result is the outcome of a fully resolved turn.
type Result struct {
	State        world.State            `json:"state"`
	Interactions [][]combat.Interaction `json:"interactions"`
	Economy      economy.Report         `json:"economy"`
}

// Resolve runs a whole turn without display and commits it.
func Resolve(snapshot world.State, selections Selections, rules config.Rules, src rng.Source) (Result, error) {
	c, err := New(snapshot, selections, rules, src)
	if err != nil {
		return Result{}, err
	}
	if err := c.SkipToEnd(); err != nil {
		return Result{}, err
	}
	next, err := c.Commit()
	if err != nil {
		return Result{}, err
	}
	return Result{
		State:        next,
		Interactions: c.Interactions(),
		Economy:      c.Economy(),
	}, nil
}

// Idle returns selections that give every stack of w the None action.
func Idle(w *world.State) Selections {
	sel := make(Selections, len(w.Colonies))
	for ci, c := range w.Colonies {
		sel[ci] = make([]action.Action, len(c.Ants))
	}
	return sel
}
