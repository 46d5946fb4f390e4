package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/platform/tui"
	"github.com/vovakirdan/antfarm/internal/rng"
	"github.com/vovakirdan/antfarm/internal/storage"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

var watchCmd = &cobra.Command{
	Use:   "watch <game> [orders.json...]",
	Short: "Animate a turn stage by stage",
	Long: `Animate one turn in the terminal.

With orders files, the latest turn is resolved live and Enter commits it once
every stage has run. Without orders files, the last committed turn is
replayed.

Controls:
  Right/L    - Step one transition (scrubs forward when paused)
  Left/H     - Scrub back
  E/End      - Resolve the remaining stages at once
  Space/P    - Pause
  Enter      - Commit the finished turn
  Q/Ctrl+C   - Quit

Examples:
  antfarm watch demo
  antfarm watch demo red.json blue.json --fps 4`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&flagAllowMissing, "allow-missing", false, "Let colonies without orders idle")
}

func runWatch(_ *cobra.Command, args []string) error {
	gameID := args[0]

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	// Get terminal size early
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	var (
		ctrl     *turn.Controller
		title    string
		onCommit tui.CommitFunc
	)
	if len(args) > 1 {
		ctrl, onCommit, err = liveTurn(store, gameID, args[1:], flagAllowMissing, cfg.Seed)
		if err != nil {
			return err
		}
		title = fmt.Sprintf("%s - turn %d", gameID, ctrl.TurnStart().Turn)
	} else {
		latest, err := store.LatestTurn(gameID)
		if err != nil {
			return err
		}
		if latest.Turn == 0 {
			return fmt.Errorf("game %s has no committed turns yet, pass orders files to resolve one", gameID)
		}
		ctrl, _, err = store.Rerun(gameID, latest.Turn-1)
		if err != nil {
			return err
		}
		title = fmt.Sprintf("%s - replay of turn %d", gameID, latest.Turn-1)
	}

	m, err := tui.Run(ctrl, title, cfg, onCommit)
	if err != nil {
		return err
	}
	if m.Err() != nil {
		return m.Err()
	}
	if m.Committed() {
		fmt.Printf("Turn %d of %s committed.\n", ctrl.TurnStart().Turn+1, gameID)
	}
	return nil
}

// liveTurn builds a controller for the latest turn of a game, seeded the way
// the store seeds it, and a commit callback that stores the result.
func liveTurn(store *storage.Store, gameID string, paths []string, allowMissing bool, seed int64) (*turn.Controller, tui.CommitFunc, error) {
	g, err := store.Game(gameID)
	if err != nil {
		return nil, nil, err
	}
	gameRules, err := g.Rules()
	if err != nil {
		return nil, nil, err
	}
	latest, err := store.LatestTurn(gameID)
	if err != nil {
		return nil, nil, err
	}
	sel, err := collectOrders(&latest.State, gameID, paths, allowMissing)
	if err != nil {
		return nil, nil, err
	}

	if seed == 0 {
		seed = rng.TurnSeed(g.Seed, latest.Turn)
	}
	ctrl, err := turn.New(latest.State, sel, gameRules, rng.NewSeeded(seed))
	if err != nil {
		return nil, nil, err
	}

	onCommit := func(next world.State) error {
		rec, err := store.AdvanceSeeded(gameID, sel, seed)
		if err != nil {
			return err
		}
		if rec.State.Turn != next.Turn {
			return fmt.Errorf("stored turn %d does not match displayed turn %d", rec.State.Turn, next.Turn)
		}
		logger.Debug("turn committed", "game", gameID, "turn", rec.Turn, "draws", rec.Draws)
		return nil
	}
	return ctrl, onCommit, nil
}
