package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/registry"
	"github.com/vovakirdan/antfarm/internal/storage"
)

var (
	flagGameID string
	flagPreset string
)

var newCmd = &cobra.Command{
	Use:   "new <scenario>",
	Short: "Create a game from a scenario",
	Long: `Build the turn 0 state of a scenario and store it as a new game.

The game seed comes from --seed, or from the clock when --seed is 0. Every
turn seed is derived from the game seed, so a game replays identically.
The rules (from --rules or the usual search path, with --preset applied) are
stored with the game and used for every later turn.

Examples:
  antfarm new skirmish
  antfarm new generated --seed 42 --id cave
  antfarm new forage --preset peaceful`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&flagGameID, "id", "", "Game ID (default: <scenario>-<timestamp>)")
	newCmd.Flags().StringVar(&flagPreset, "preset", "", "Rules preset: peaceful, normal, brutal")
}

func runNew(_ *cobra.Command, args []string) error {
	g, err := createGame(args[0], flagGameID, flagPreset, flagSeed)
	if err != nil {
		return err
	}
	fmt.Printf("Created game %s from scenario %s (seed %d)\n", g.ID, g.Scenario, g.Seed)
	fmt.Printf("Submit orders with 'antfarm resolve %s <orders.json...>'.\n", g.ID)
	return nil
}

// createGame builds a scenario and stores it as a new game.
func createGame(scenarioID, gameID, preset string, seed int64) (storage.Game, error) {
	if !registry.Exists(scenarioID) {
		return storage.Game{}, fmt.Errorf("unknown scenario %q, run 'antfarm list' to see available scenarios", scenarioID)
	}
	if preset != "" {
		if _, err := config.ParsePreset(preset); err != nil {
			return storage.Game{}, err
		}
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if gameID == "" {
		gameID = fmt.Sprintf("%s-%d", scenarioID, time.Now().Unix())
	}

	initial, err := registry.Build(scenarioID, seed)
	if err != nil {
		return storage.Game{}, err
	}

	rules, err := config.LoadRules(flagRulesPath)
	if err != nil {
		return storage.Game{}, err
	}

	store, err := openStore()
	if err != nil {
		return storage.Game{}, err
	}
	defer store.Close()

	g := storage.Game{ID: gameID, Scenario: scenarioID, Seed: seed, Preset: preset}
	if err := store.CreateGame(g, initial, rules); err != nil {
		return storage.Game{}, err
	}
	logger.Debug("created game", "id", gameID, "scenario", scenarioID, "seed", seed, "rules", flagRulesPath)
	return g, nil
}
