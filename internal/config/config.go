// Package config provides the YAML-based rules that tune turn resolution:
// combat odds, carry capacity, egg laying, digging costs and food spawning.
package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/vovakirdan/antfarm/internal/world"
)

// ErrInvalidRules is returned by Validate when a rule value is out of range.
var ErrInvalidRules = errors.New("config: invalid rules")

// Rules contains every tunable constant of turn resolution.
type Rules struct {
	Combat CombatRules              `yaml:"combat"`
	Forage ForageRules              `yaml:"forage"`
	Eggs   EggRules                 `yaml:"eggs"`
	Dig    DigRules                 `yaml:"dig"`
	Spawn  map[string][]SpawnChance `yaml:"spawn"` // keyed by terrain name
}

// CombatRules defines interaction odds.
type CombatRules struct {
	KillProbability float64 `yaml:"kill_probability"` // per enemy ant, per roll
}

// ForageRules defines how much food a stack can hold.
type ForageRules struct {
	CarryPerAnt int `yaml:"carry_per_ant"`
}

// EggRules defines egg laying and hatching.
type EggRules struct {
	MaxPerStack       int  `yaml:"max_per_stack"`
	IncubationDays    int  `yaml:"incubation_days"` // Whole turns after the laying turn
	LayCost           int  `yaml:"lay_cost"`
	IncubationEnabled bool `yaml:"incubation_enabled"`
}

// DigRules defines the food cost of digging.
type DigRules struct {
	TunnelCost  int `yaml:"tunnel_cost"`
	ChamberCost int `yaml:"chamber_cost"`
}

// SpawnChance is the probability that food of a given size appears on a cell.
type SpawnChance struct {
	Size        int     `yaml:"size"`
	Probability float64 `yaml:"probability"`
}

// SpawnTable returns the spawn chances of a terrain, smallest size first.
func (r *Rules) SpawnTable(t world.Terrain) []SpawnChance {
	table := append([]SpawnChance(nil), r.Spawn[t.String()]...)
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].Size < table[j].Size
	})
	return table
}

// Validate checks that every value is usable by the engine.
func (r *Rules) Validate() error {
	if r.Combat.KillProbability < 0 || r.Combat.KillProbability > 1 {
		return fmt.Errorf("%w: kill_probability %v not in [0,1]", ErrInvalidRules, r.Combat.KillProbability)
	}
	if r.Forage.CarryPerAnt < 0 {
		return fmt.Errorf("%w: carry_per_ant is negative", ErrInvalidRules)
	}
	if r.Eggs.MaxPerStack < 1 {
		return fmt.Errorf("%w: max_per_stack must be at least 1", ErrInvalidRules)
	}
	if r.Eggs.IncubationDays < 0 || r.Eggs.LayCost < 0 {
		return fmt.Errorf("%w: egg values must not be negative", ErrInvalidRules)
	}
	if r.Dig.TunnelCost < 0 || r.Dig.ChamberCost < 0 {
		return fmt.Errorf("%w: dig costs must not be negative", ErrInvalidRules)
	}
	for name, table := range r.Spawn {
		if _, err := world.ParseTerrain(name); err != nil {
			return fmt.Errorf("%w: spawn table: %w", ErrInvalidRules, err)
		}
		sizes := make(map[int]bool, len(table))
		for _, c := range table {
			if c.Size <= 0 {
				return fmt.Errorf("%w: spawn size %d for %s must be positive", ErrInvalidRules, c.Size, name)
			}
			if sizes[c.Size] {
				return fmt.Errorf("%w: spawn size %d listed twice for %s", ErrInvalidRules, c.Size, name)
			}
			sizes[c.Size] = true
			if c.Probability < 0 || c.Probability > 1 {
				return fmt.Errorf("%w: spawn probability %v for %s not in [0,1]", ErrInvalidRules, c.Probability, name)
			}
		}
	}
	return nil
}

// Clone returns a copy that shares no spawn tables with r.
func (r Rules) Clone() Rules {
	out := r
	out.Spawn = make(map[string][]SpawnChance, len(r.Spawn))
	for k, v := range r.Spawn {
		out.Spawn[k] = append([]SpawnChance(nil), v...)
	}
	return out
}
