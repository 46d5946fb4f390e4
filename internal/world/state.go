// Package world holds the authoritative world snapshot exchanged between turns:
// the terrain grid, the colonies with their ant and egg stacks, and food items.
package world

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/antfarm/internal/core"
)

var (
	// ErrUnknownCast is returned when decoding an unrecognized cast name.
	ErrUnknownCast = errors.New("world: unknown cast")
	// ErrInvalidState is returned by Validate for broken structural invariants.
	ErrInvalidState = errors.New("world: invalid state")
)

// Cast is an ant's role. All ants in one stack share a cast.
type Cast uint8

const (
	CastWorker Cast = iota
	CastQueen
	CastWarrior
	CastLarva
)

var castNames = [...]string{
	CastWorker:  "worker",
	CastQueen:   "queen",
	CastWarrior: "warrior",
	CastLarva:   "larva",
}

// String returns the lowercase name of the cast.
func (c Cast) String() string {
	if int(c) < len(castNames) {
		return castNames[c]
	}
	return fmt.Sprintf("cast(%d)", uint8(c))
}

// MarshalText encodes the cast by name.
func (c Cast) MarshalText() ([]byte, error) {
	if int(c) >= len(castNames) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCast, uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a cast name.
func (c *Cast) UnmarshalText(b []byte) error {
	for i, n := range castNames {
		if n == string(b) {
			*c = Cast(i)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownCast, string(b))
}

// AntStack is one or more ants of the same cast on one cell.
// StartLocation is fixed for the whole turn.
type AntStack struct {
	Cast          Cast       `json:"cast"`
	Facing        int        `json:"facing"`
	Location      core.Coord `json:"location"`
	StartLocation core.Coord `json:"start_location"`
	NumberOfAnts  int        `json:"number_of_ants"`
	FoodHeld      int        `json:"food_held"`
}

// EggStack is a clutch of eggs on one cell.
type EggStack struct {
	Location     core.Coord `json:"location"`
	NumberOfEggs int        `json:"number_of_eggs"`
	DaysToHatch  int        `json:"days_to_hatch"`
}

// Colony is one player's ants, eggs and banked food. Its identity is its index.
type Colony struct {
	Ants       []AntStack `json:"ants"`
	Eggs       []EggStack `json:"eggs"`
	FoodSupply int        `json:"food_supply"`
	AntColor   string     `json:"ant_color"`
}

// FoodItem is forageable food lying on a cell.
type FoodItem struct {
	Location core.Coord `json:"location"`
	Value    int        `json:"value"`
}

// State is a complete world snapshot.
type State struct {
	Turn     int         `json:"turn"`
	Terrain  [][]Terrain `json:"terrain"`
	Colonies []Colony    `json:"colonies"`
	Food     []FoodItem  `json:"food"`
}

// AntRef identifies an ant stack within one turn.
type AntRef struct {
	Colony int `json:"colony"`
	Ant    int `json:"ant"`
}

// Width returns the number of columns of the terrain grid.
func (s *State) Width() int {
	if len(s.Terrain) == 0 {
		return 0
	}
	return len(s.Terrain[0])
}

// Height returns the number of rows of the terrain grid.
func (s *State) Height() int {
	return len(s.Terrain)
}

// InBounds reports whether c lies on the terrain grid.
func (s *State) InBounds(c core.Coord) bool {
	return c.Y >= 0 && c.Y < len(s.Terrain) && c.X >= 0 && c.X < len(s.Terrain[c.Y])
}

// TerrainAt returns the terrain code of a cell.
func (s *State) TerrainAt(c core.Coord) (Terrain, bool) {
	if !s.InBounds(c) {
		return 0, false
	}
	return s.Terrain[c.Y][c.X], true
}

// SetTerrain recodes a cell. Out-of-bounds coordinates are reported as false.
func (s *State) SetTerrain(c core.Coord, t Terrain) bool {
	if !s.InBounds(c) {
		return false
	}
	s.Terrain[c.Y][c.X] = t
	return true
}

// Stack returns a pointer to the referenced ant stack, or nil if it does not exist.
func (s *State) Stack(ref AntRef) *AntStack {
	if ref.Colony < 0 || ref.Colony >= len(s.Colonies) {
		return nil
	}
	ants := s.Colonies[ref.Colony].Ants
	if ref.Ant < 0 || ref.Ant >= len(ants) {
		return nil
	}
	return &ants[ref.Ant]
}

// StackAt returns the first living ant stack on a cell across all colonies.
func (s *State) StackAt(c core.Coord) (AntRef, bool) {
	for ci := range s.Colonies {
		for ai, a := range s.Colonies[ci].Ants {
			if a.NumberOfAnts > 0 && a.Location == c {
				return AntRef{Colony: ci, Ant: ai}, true
			}
		}
	}
	return AntRef{}, false
}

// StacksAt returns every living ant stack on a cell, in colony then ant order.
func (s *State) StacksAt(c core.Coord) []AntRef {
	var refs []AntRef
	for ci := range s.Colonies {
		for ai, a := range s.Colonies[ci].Ants {
			if a.NumberOfAnts > 0 && a.Location == c {
				refs = append(refs, AntRef{Colony: ci, Ant: ai})
			}
		}
	}
	return refs
}

// FoodIndexAt returns the index of the food item on a cell.
func (s *State) FoodIndexAt(c core.Coord) (int, bool) {
	for i, f := range s.Food {
		if f.Location == c {
			return i, true
		}
	}
	return -1, false
}

// EggIndexAt returns the index of a colony's egg stack on a cell.
func (c *Colony) EggIndexAt(loc core.Coord) (int, bool) {
	for i, e := range c.Eggs {
		if e.Location == loc {
			return i, true
		}
	}
	return -1, false
}

// Clone returns a deep copy of the state. Working copies never alias the snapshot.
func (s *State) Clone() State {
	out := State{
		Turn:     s.Turn,
		Terrain:  make([][]Terrain, len(s.Terrain)),
		Colonies: make([]Colony, len(s.Colonies)),
		Food:     append([]FoodItem(nil), s.Food...),
	}
	for y, row := range s.Terrain {
		out.Terrain[y] = append([]Terrain(nil), row...)
	}
	for i, c := range s.Colonies {
		out.Colonies[i] = Colony{
			Ants:       append([]AntStack(nil), c.Ants...),
			Eggs:       append([]EggStack(nil), c.Eggs...),
			FoodSupply: c.FoodSupply,
			AntColor:   c.AntColor,
		}
	}
	return out
}

// Validate checks the structural invariants of a committed snapshot.
func (s *State) Validate() error {
	width := s.Width()
	for y, row := range s.Terrain {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d cells, expected %d", ErrInvalidState, y, len(row), width)
		}
		for x, t := range row {
			if !t.Valid() {
				return fmt.Errorf("%w: cell [%d,%d]: %w", ErrInvalidState, x, y, ErrUnknownTerrain)
			}
		}
	}

	foodCells := make(map[core.Coord]bool, len(s.Food))
	for _, f := range s.Food {
		if !s.InBounds(f.Location) {
			return fmt.Errorf("%w: food at %v out of bounds", ErrInvalidState, f.Location)
		}
		if f.Value <= 0 {
			return fmt.Errorf("%w: food at %v has value %d", ErrInvalidState, f.Location, f.Value)
		}
		if foodCells[f.Location] {
			return fmt.Errorf("%w: more than one food item at %v", ErrInvalidState, f.Location)
		}
		foodCells[f.Location] = true
	}

	for ci, c := range s.Colonies {
		if c.FoodSupply < 0 {
			return fmt.Errorf("%w: colony %d has negative food supply", ErrInvalidState, ci)
		}
		for ai, a := range c.Ants {
			if !s.InBounds(a.Location) {
				return fmt.Errorf("%w: colony %d ant %d at %v out of bounds", ErrInvalidState, ci, ai, a.Location)
			}
			if a.NumberOfAnts <= 0 {
				return fmt.Errorf("%w: colony %d ant %d has %d ants", ErrInvalidState, ci, ai, a.NumberOfAnts)
			}
			if a.FoodHeld < 0 {
				return fmt.Errorf("%w: colony %d ant %d holds negative food", ErrInvalidState, ci, ai)
			}
		}
		eggCells := make(map[core.Coord]bool, len(c.Eggs))
		for _, e := range c.Eggs {
			if eggCells[e.Location] {
				return fmt.Errorf("%w: colony %d has more than one egg stack at %v", ErrInvalidState, ci, e.Location)
			}
			eggCells[e.Location] = true
		}
	}
	return nil
}
