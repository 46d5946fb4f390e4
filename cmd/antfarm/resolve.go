package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/antfarm/internal/multiplayer"
	"github.com/vovakirdan/antfarm/internal/orders"
	"github.com/vovakirdan/antfarm/internal/storage"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

var flagAllowMissing bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <game> <orders.json...>",
	Short: "Resolve one turn from orders files",
	Long: `Read one orders file per colony, resolve the latest turn of the game and
store the result as the next turn.

Each orders file names its colony and the turn it was written for:

  {"turn": 0, "colony": 1, "orders": [{"ant": 0, "type": "move", "steps": [[3,2],[4,2]]}]}

Ants without an order do nothing. With --allow-missing, colonies without an
orders file do nothing as well.

Examples:
  antfarm resolve demo red.json blue.json
  antfarm resolve demo red.json --allow-missing`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&flagAllowMissing, "allow-missing", false, "Let colonies without orders idle")
}

func runResolve(_ *cobra.Command, args []string) error {
	gameID := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	latest, err := store.LatestTurn(gameID)
	if err != nil {
		return err
	}
	sel, err := collectOrders(&latest.State, gameID, args[1:], flagAllowMissing)
	if err != nil {
		return err
	}

	rec, err := store.AdvanceSeeded(gameID, sel, flagSeed)
	if err != nil {
		return err
	}
	logger.Info("turn committed", "game", gameID, "turn", rec.Turn, "seed", rec.Seed, "draws", rec.Draws)
	printSummary(rec)
	return nil
}

// collectOrders loads orders files and assembles the selections of the turn
// that starts from w.
func collectOrders(w *world.State, gameID string, paths []string, allowMissing bool) (turn.Selections, error) {
	c := multiplayer.NewCollector(w)
	for _, path := range paths {
		sub, err := orders.Load(path)
		if err != nil {
			return nil, err
		}
		if sub.Game != "" && sub.Game != gameID {
			return nil, fmt.Errorf("%s: orders are for game %q, not %q", path, sub.Game, gameID)
		}
		if c.Submitted(sub.Colony) {
			return nil, fmt.Errorf("%s: colony %d already has orders", path, sub.Colony)
		}
		if err := c.Submit(sub); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("loaded orders", "path", path, "colony", sub.Colony, "orders", len(sub.Orders))
	}
	if missing := c.Missing(); len(missing) > 0 && !allowMissing {
		return nil, fmt.Errorf("no orders for colonies %v (use --allow-missing to let them idle)", missing)
	}
	return c.Selections(), nil
}

func printSummary(rec storage.TurnRecord) {
	losses := 0
	for _, stage := range rec.Interactions {
		for _, in := range stage {
			losses += in.NumberLost
		}
	}

	fmt.Printf("Turn %d committed (seed %d, %d draws, %d ants lost)\n", rec.Turn, rec.Seed, rec.Draws, losses)
	fmt.Println()
	fmt.Printf("  %-6s  %-8s  %-6s  %-6s  %s\n", "Colony", "Color", "Ants", "Eggs", "Food")
	fmt.Printf("  %-6s  %-8s  %-6s  %-6s  %s\n", "------", "-----", "----", "----", "----")
	for i, col := range rec.State.Colonies {
		ants, eggs := 0, 0
		for _, a := range col.Ants {
			ants += a.NumberOfAnts
		}
		for _, e := range col.Eggs {
			eggs += e.NumberOfEggs
		}
		fmt.Printf("  %-6d  %-8s  %-6d  %-6d  %d\n", i, col.AntColor, ants, eggs, col.FoodSupply)
	}
	if rec.Economy != nil {
		fmt.Println()
		fmt.Printf("Foraged %d, spawned %d food items, hatched %d eggs\n",
			rec.Economy.Foraged, len(rec.Economy.Spawned), rec.Economy.Hatched)
	}
}
