package turn

import "fmt"

// FinalStage is the last stage of a turn.
const FinalStage = 12

// Substage orders effects within a stage relative to combat.
type Substage uint8

const (
	Before Substage = iota
	Interacting
	After
)

func (s Substage) String() string {
	switch s {
	case Before:
		return "before"
	case Interacting:
		return "interacting"
	case After:
		return "after"
	default:
		return fmt.Sprintf("substage(%d)", uint8(s))
	}
}

// Position is a state of the controller. Stage 0 only exists as (0, After).
type Position struct {
	Stage    int      `json:"stage"`
	Substage Substage `json:"substage"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d/%s", p.Stage, p.Substage)
}

// Valid reports whether p is a reachable position.
func (p Position) Valid() bool {
	if p.Stage == 0 {
		return p.Substage == After
	}
	return p.Stage > 0 && p.Stage <= FinalStage && p.Substage <= After
}

// Index orders positions: (0, After) is 0 and (12, After) is 36.
func (p Position) Index() int {
	if p.Stage == 0 {
		return 0
	}
	return 1 + (p.Stage-1)*3 + int(p.Substage)
}

// PositionAt is the inverse of Index.
func PositionAt(index int) Position {
	if index <= 0 {
		return Position{Stage: 0, Substage: After}
	}
	index--
	return Position{Stage: index/3 + 1, Substage: Substage(index % 3)}
}

// Next returns the position that follows p. The final position has no successor.
func (p Position) Next() (Position, bool) {
	if p.Index() >= LastIndex {
		return p, false
	}
	return PositionAt(p.Index() + 1), true
}

// LastIndex is the index of (12, After).
var LastIndex = Position{Stage: FinalStage, Substage: After}.Index()
