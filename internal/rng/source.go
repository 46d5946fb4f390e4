// Package rng provides the shared random sequence a turn is resolved with.
// Every participant resolving the same turn must draw from an identical
// sequence in an identical order; the engine consumes it left to right
// (combat first, then food spawning) and never re-seeds it mid-turn.
package rng

import (
	"math/rand"
)

// Source produces successive values in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a deterministic Source backed by math/rand.
type Seeded struct {
	r *rand.Rand
}

// NewSeeded returns a Source whose sequence is fully determined by seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns the next value of the sequence.
func (s *Seeded) Float64() float64 {
	return s.r.Float64()
}

// Fixed replays a predetermined sequence. Once exhausted it keeps returning
// Exhausted, which is chosen so that no probability check succeeds.
type Fixed struct {
	values []float64
	pos    int
}

// Exhausted is returned by Fixed after its values run out.
const Exhausted = 0.999999

// NewFixed returns a Source that yields values in order.
func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: append([]float64(nil), values...)}
}

// Float64 returns the next value of the sequence.
func (f *Fixed) Float64() float64 {
	if f.pos >= len(f.values) {
		return Exhausted
	}
	v := f.values[f.pos]
	f.pos++
	return v
}

// Remaining returns how many predetermined values are left.
func (f *Fixed) Remaining() int {
	return len(f.values) - f.pos
}

// Recorder wraps a Source and remembers every value drawn from it, so the
// exact sequence a turn consumed can be stored and replayed with NewFixed.
type Recorder struct {
	src   Source
	drawn []float64
}

// NewRecorder wraps src.
func NewRecorder(src Source) *Recorder {
	return &Recorder{src: src}
}

// Float64 draws from the wrapped source and records the value.
func (r *Recorder) Float64() float64 {
	v := r.src.Float64()
	r.drawn = append(r.drawn, v)
	return v
}

// Drawn returns a copy of the values drawn so far.
func (r *Recorder) Drawn() []float64 {
	return append([]float64(nil), r.drawn...)
}

// Count returns how many values have been drawn.
func (r *Recorder) Count() int {
	return len(r.drawn)
}

// TurnSeed derives the seed of one turn from a game seed, so every
// participant can rebuild the same sequence from the game record alone.
func TurnSeed(gameSeed int64, turn int) int64 {
	// splitmix64 finalizer over the combined value
	z := uint64(gameSeed) + uint64(turn+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z)
}
