package config

import "fmt"

// Preset represents a named rules variant.
type Preset string

const (
	PresetPeaceful Preset = "peaceful"
	PresetNormal   Preset = "normal"
	PresetBrutal   Preset = "brutal"
)

// Presets lists the known presets in display order.
var Presets = []Preset{PresetPeaceful, PresetNormal, PresetBrutal}

// ParsePreset validates a preset name.
func ParsePreset(name string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown preset %q", ErrInvalidRules, name)
}

// ApplyPreset modifies the rules based on a preset.
func ApplyPreset(cfg *Rules, preset Preset) {
	switch preset {
	case PresetPeaceful:
		cfg.Combat.KillProbability = 1.0 / 6
		scaleSpawn(cfg, 1.5)
	case PresetBrutal:
		cfg.Combat.KillProbability = 0.5
		cfg.Eggs.LayCost++
		scaleSpawn(cfg, 0.5)
	}
}

func scaleSpawn(cfg *Rules, factor float64) {
	for name, table := range cfg.Spawn {
		scaled := make([]SpawnChance, len(table))
		for i, c := range table {
			p := c.Probability * factor
			if p > 1 {
				p = 1
			}
			scaled[i] = SpawnChance{Size: c.Size, Probability: p}
		}
		cfg.Spawn[name] = scaled
	}
}
