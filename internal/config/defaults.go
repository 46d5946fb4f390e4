package config

import (
	_ "embed"

	"github.com/vovakirdan/antfarm/internal/world"
)

//go:embed defaults/rules.yaml
var defaultRulesYAML []byte

// DefaultRules returns the hardcoded default rules. They match defaults/rules.yaml.
func DefaultRules() Rules {
	return Rules{
		Combat: CombatRules{
			KillProbability: 1.0 / 3,
		},
		Forage: ForageRules{
			CarryPerAnt: 2,
		},
		Eggs: EggRules{
			MaxPerStack:       10,
			IncubationDays:    3,
			LayCost:           2,
			IncubationEnabled: true,
		},
		Dig: DigRules{
			TunnelCost:  1,
			ChamberCost: 3,
		},
		Spawn: map[string][]SpawnChance{
			world.TerrainDirt.String(): {
				{Size: 1, Probability: 0.02},
				{Size: 2, Probability: 0.01},
			},
			world.TerrainSurface.String(): {
				{Size: 1, Probability: 0.04},
				{Size: 3, Probability: 0.02},
				{Size: 5, Probability: 0.01},
			},
		},
	}
}
