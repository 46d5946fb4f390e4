// Package core provides fundamental types and utilities shared by the engine,
// the viewer and the CLI. It contains no external dependencies to keep turn
// resolution pure and testable.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoord is returned when a coordinate does not have exactly two components.
var ErrInvalidCoord = errors.New("core: coordinate must have exactly 2 components")

// NoFacing is returned by FacingFromMovement when the two cells are equal.
const NoFacing = -1

// Facings is the number of distinct facing codes (clock positions).
const Facings = 12

// Coord is a cell on the hex grid. X is the column and Y is the row of the
// rectangular terrain grid; odd rows are drawn shifted half a cell right.
type Coord struct {
	X, Y int
}

// C is a shorthand constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns the coordinate in its wire form.
func (c Coord) String() string {
	return fmt.Sprintf("[%d,%d]", c.X, c.Y)
}

// MarshalJSON encodes the coordinate as a two element array.
func (c Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.X, c.Y})
}

// UnmarshalJSON decodes a two element array. Any other length is rejected.
func (c *Coord) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("core: decode coordinate: %w", err)
	}
	parsed, err := CoordFromSlice(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CoordFromSlice converts a raw [x, y] pair into a Coord.
func CoordFromSlice(v []int) (Coord, error) {
	if len(v) != 2 {
		return Coord{}, fmt.Errorf("%w: got %d", ErrInvalidCoord, len(v))
	}
	return Coord{X: v[0], Y: v[1]}, nil
}

// Equal reports whether two coordinates name the same cell.
func Equal(a, b Coord) bool {
	return a == b
}

// neighbor offsets for even and odd rows, clockwise starting at north-east.
var (
	evenRowOffsets = [6]Coord{{0, -1}, {1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}
	oddRowOffsets  = [6]Coord{{1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 0}, {0, -1}}
)

// Neighbors returns the six adjacent cells, clockwise from north-east.
func Neighbors(c Coord) [6]Coord {
	offsets := &evenRowOffsets
	if c.Y&1 == 1 {
		offsets = &oddRowOffsets
	}
	var result [6]Coord
	for i, d := range offsets {
		result[i] = Coord{X: c.X + d.X, Y: c.Y + d.Y}
	}
	return result
}

// Adjacent reports whether b is one of the six neighbours of a.
// A cell is never adjacent to itself.
func Adjacent(a, b Coord) bool {
	for _, n := range Neighbors(a) {
		if n == b {
			return true
		}
	}
	return false
}

// Center returns the drawing centre of a cell in unit-width cell space.
func Center(c Coord) (float64, float64) {
	x := float64(c.X)
	if c.Y&1 == 1 {
		x += 0.5
	}
	return x, float64(c.Y) * math.Sqrt(3) / 2
}

// FacingFromMovement returns the clock-position facing (0 = up, 3 = east,
// 6 = down, 9 = west) of a move from one cell towards another.
func FacingFromMovement(from, to Coord) int {
	if from == to {
		return NoFacing
	}
	fx, fy := Center(from)
	tx, ty := Center(to)
	// Screen y grows downwards, so north is -dy.
	deg := math.Atan2(tx-fx, fy-ty) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	code := int(math.Round(deg/30)) % Facings
	return code
}
