package scenarios

import (
	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/mapgen"
	"github.com/vovakirdan/antfarm/internal/registry"
	"github.com/vovakirdan/antfarm/internal/world"
)

func init() {
	registry.Register("skirmish", func() registry.Scenario { return skirmish() })
	registry.Register("forage", func() registry.Scenario { return forage() })
	registry.Register("dig", func() registry.Scenario { return dig() })
	registry.Register("generated", func() registry.Scenario { return &generated{} })
}

// skirmish: two nests a few cells apart with warriors already facing off.
func skirmish() *fixed {
	return &fixed{
		id:    "skirmish",
		title: "Skirmish",
		layout: []string{
			`          `,
			`""""""""""`,
			`._...%.._.`,
			`.o.%....o.`,
			`..........`,
			`##########`,
		},
		colonies: []world.Colony{
			{
				Ants: []world.AntStack{
					stack(world.CastQueen, core.C(1, 3), 1),
					stack(world.CastWarrior, core.C(3, 2), 6),
					stack(world.CastWorker, core.C(1, 2), 4),
				},
				FoodSupply: 10,
				AntColor:   "red",
			},
			{
				Ants: []world.AntStack{
					stack(world.CastQueen, core.C(8, 3), 1),
					stack(world.CastWarrior, core.C(4, 2), 5),
					stack(world.CastWorker, core.C(8, 2), 3),
				},
				FoodSupply: 10,
				AntColor:   "blue",
			},
		},
		food: []world.FoodItem{
			{Location: core.C(4, 1), Value: 5},
			{Location: core.C(0, 1), Value: 2},
			{Location: core.C(9, 1), Value: 2},
		},
	}
}

// forage: a single colony under a surface strewn with food.
func forage() *fixed {
	return &fixed{
		id:    "forage",
		title: "Forage Run",
		layout: []string{
			`            `,
			`            `,
			`""""""""""""`,
			`....._......`,
			`.....o......`,
			`....%%%.....`,
			`############`,
		},
		colonies: []world.Colony{
			{
				Ants: []world.AntStack{
					stack(world.CastQueen, core.C(5, 4), 1),
					stack(world.CastWorker, core.C(5, 3), 5),
					stack(world.CastWorker, core.C(5, 2), 3),
				},
				FoodSupply: 4,
				AntColor:   "yellow",
			},
		},
		food: []world.FoodItem{
			{Location: core.C(1, 2), Value: 3},
			{Location: core.C(3, 2), Value: 1},
			{Location: core.C(8, 2), Value: 4},
			{Location: core.C(11, 2), Value: 6},
		},
	}
}

// dig: a colony sealed in stone-riddled ground with food to tunnel towards.
func dig() *fixed {
	return &fixed{
		id:    "dig",
		title: "Dig Deep",
		layout: []string{
			`          `,
			`""""""""""`,
			`..%%......`,
			`.%..o..%..`,
			`..%....%%.`,
			`.....%....`,
			`##########`,
		},
		colonies: []world.Colony{
			{
				Ants: []world.AntStack{
					stack(world.CastQueen, core.C(4, 3), 1),
					stack(world.CastWorker, core.C(3, 3), 6),
				},
				Eggs:       []world.EggStack{{Location: core.C(5, 3), NumberOfEggs: 2, DaysToHatch: 2}},
				FoodSupply: 12,
				AntColor:   "green",
			},
		},
		food: []world.FoodItem{
			{Location: core.C(8, 5), Value: 8},
			{Location: core.C(0, 5), Value: 4},
		},
	}
}

// generated builds a noise map from the game seed.
type generated struct{}

func (*generated) ID() string    { return "generated" }
func (*generated) Title() string { return "Generated Map" }

func (*generated) Build(seed int64) (world.State, error) {
	cfg := mapgen.DefaultGenConfig()
	cfg.Seed = seed
	return mapgen.Generate(cfg)
}
