package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/antfarm/internal/core"
	"github.com/vovakirdan/antfarm/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick a scenario interactively",
	Long: `Open a picker listing every scenario. Enter creates a game from the
highlighted scenario and shows its first turn idling; Tab opens the turn
history browser.`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}

	result, err := tui.RunMenu(cfg)
	if err != nil {
		return err
	}

	switch {
	case result.Quit:
		return nil

	case result.WantsHistory:
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return tui.RunHistory(store, "", result.Config.ScreenW, result.Config.ScreenH)
	}

	g, err := createGame(result.ScenarioID, "", "", flagSeed)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctrl, onCommit, err := liveTurn(store, g.ID, nil, true, 0)
	if err != nil {
		return err
	}
	_, err = tui.Run(ctrl, fmt.Sprintf("%s - %s", g.ID, g.Scenario), result.Config, onCommit)
	return err
}
