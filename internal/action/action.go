// Package action defines the per-ant orders of a turn and how each order
// takes effect over the 12 stages of turn resolution.
package action

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/world"
)

var (
	// ErrUnknownAction is returned for an action kind that is not enumerated.
	ErrUnknownAction = errors.New("action: unknown action")
	// ErrUnknownDig is returned for a dig target that is neither tunnel nor chamber.
	ErrUnknownDig = errors.New("action: unknown dig kind")
	// ErrInvalidAction is returned when an action cannot be carried out by its stack.
	ErrInvalidAction = errors.New("action: invalid action")
	// ErrUnknownAnt is returned when an AntRef names no stack.
	ErrUnknownAnt = errors.New("action: unknown ant stack")
)

// Kind selects the variant of an Action.
type Kind uint8

const (
	KindNone Kind = iota
	KindMove
	KindDefend
	KindLayEgg
	KindDig
)

var kindNames = [...]string{
	KindNone:   "none",
	KindMove:   "move",
	KindDefend: "defend",
	KindLayEgg: "lay_egg",
	KindDig:    "dig",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind converts an action name into its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// DigKind is what a Dig action turns its target cell into.
// The zero value is deliberately not a valid target.
type DigKind uint8

const (
	DigTunnel DigKind = iota + 1
	DigChamber
)

func (d DigKind) String() string {
	switch d {
	case DigTunnel:
		return "tunnel"
	case DigChamber:
		return "chamber"
	default:
		return fmt.Sprintf("dig(%d)", uint8(d))
	}
}

// ParseDigKind converts a dig target name into its DigKind.
func ParseDigKind(name string) (DigKind, error) {
	switch name {
	case "tunnel":
		return DigTunnel, nil
	case "chamber":
		return DigChamber, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDig, name)
}

// Terrain returns the dug terrain code for the target.
func (d DigKind) Terrain() (world.Terrain, error) {
	switch d {
	case DigTunnel:
		return world.TerrainTunnel, nil
	case DigChamber:
		return world.TerrainChamber, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnknownDig, uint8(d))
}

// Action is the single order given to one ant stack for one turn.
// Steps is used by KindMove; Location and WhatToDig by KindDig.
type Action struct {
	Kind      Kind
	Steps     []core.Coord
	Location  core.Coord
	WhatToDig DigKind
}

// None returns the idle action.
func None() Action { return Action{Kind: KindNone} }

// Defend returns the action that makes a stack provoke combat with adjacent enemies.
func Defend() Action { return Action{Kind: KindDefend} }

// LayEgg returns the egg laying action.
func LayEgg() Action { return Action{Kind: KindLayEgg} }

// Move returns a move along steps. The first step is the stack's own cell.
func Move(steps ...core.Coord) Action {
	return Action{Kind: KindMove, Steps: append([]core.Coord(nil), steps...)}
}

// Dig returns a dig of the given cell.
func Dig(loc core.Coord, what DigKind) Action {
	return Action{Kind: KindDig, Location: loc, WhatToDig: what}
}

// Check reports whether the action is well formed for a stack at its turn start.
func (a Action) Check(stack world.AntStack) error {
	switch a.Kind {
	case KindNone, KindDefend:
		return nil
	case KindMove:
		if len(a.Steps) == 0 {
			return fmt.Errorf("%w: move has no steps", ErrInvalidAction)
		}
		if a.Steps[0] != stack.StartLocation && !core.Adjacent(stack.StartLocation, a.Steps[0]) {
			return fmt.Errorf("%w: move starts at %v, stack is at %v", ErrInvalidAction, a.Steps[0], stack.StartLocation)
		}
		for i := 1; i < len(a.Steps); i++ {
			if !core.Adjacent(a.Steps[i-1], a.Steps[i]) {
				return fmt.Errorf("%w: steps %v and %v are not adjacent", ErrInvalidAction, a.Steps[i-1], a.Steps[i])
			}
		}
		return nil
	case KindLayEgg:
		if stack.Cast != world.CastQueen {
			return fmt.Errorf("%w: only a queen can lay eggs, not a %s", ErrInvalidAction, stack.Cast)
		}
		return nil
	case KindDig:
		if _, err := a.WhatToDig.Terrain(); err != nil {
			return err
		}
		if a.Location != stack.StartLocation && !core.Adjacent(stack.StartLocation, a.Location) {
			return fmt.Errorf("%w: dig target %v is out of reach of %v", ErrInvalidAction, a.Location, stack.StartLocation)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownAction, a.Kind)
}

// Cost returns the food a fully applied action takes from its colony.
func (a Action) Cost(p Params) int {
	switch a.Kind {
	case KindLayEgg:
		return p.LayCost
	case KindDig:
		switch a.WhatToDig {
		case DigTunnel:
			return p.TunnelCost
		case DigChamber:
			return p.ChamberCost
		}
	}
	return 0
}

type wireAction struct {
	Type        string       `json:"type"`
	Steps       []core.Coord `json:"steps,omitempty"`
	Destination *core.Coord  `json:"destination,omitempty"`
	Location    *core.Coord  `json:"location,omitempty"`
	WhatToDig   string       `json:"what_to_dig,omitempty"`
}

// MarshalJSON encodes the action as {"type": ..., ...}.
func (a Action) MarshalJSON() ([]byte, error) {
	if int(a.Kind) >= len(kindNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, uint8(a.Kind))
	}
	w := wireAction{Type: a.Kind.String()}
	switch a.Kind {
	case KindMove:
		w.Steps = a.Steps
	case KindDig:
		if _, err := a.WhatToDig.Terrain(); err != nil {
			return nil, err
		}
		loc := a.Location
		w.Location = &loc
		w.WhatToDig = a.WhatToDig.String()
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes an action. Unknown types and dig targets are rejected,
// as is the single-destination move form.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind, err := ParseKind(w.Type)
	if err != nil {
		return err
	}
	out := Action{Kind: kind}
	switch kind {
	case KindMove:
		if w.Destination != nil {
			return fmt.Errorf("%w: move by destination is not supported, use steps", ErrInvalidAction)
		}
		if len(w.Steps) == 0 {
			return fmt.Errorf("%w: move has no steps", ErrInvalidAction)
		}
		out.Steps = w.Steps
	case KindDig:
		if w.Location == nil {
			return fmt.Errorf("%w: dig has no location", ErrInvalidAction)
		}
		what, err := ParseDigKind(w.WhatToDig)
		if err != nil {
			return err
		}
		out.Location = *w.Location
		out.WhatToDig = what
	}
	*a = out
	return nil
}
