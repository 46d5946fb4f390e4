package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/antfarm/internal/platform/tui"
	"github.com/vovakirdan/antfarm/internal/storage"
)

var flagPlain bool

var historyCmd = &cobra.Command{
	Use:   "history [game]",
	Short: "Browse committed turns",
	Long: `Show the committed turns of a game. Without a game, the newest game is
shown first. In a terminal the history opens as a browser where Tab switches
between games; --plain prints a table instead.

Examples:
  antfarm history
  antfarm history demo --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print a table instead of opening the browser")
}

func runHistory(_ *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	gameID := ""
	if len(args) > 0 {
		gameID = args[0]
		if _, err := store.Game(gameID); err != nil {
			return err
		}
	}

	width, height, termErr := term.GetSize(int(os.Stdout.Fd()))
	if flagPlain || termErr != nil {
		return printHistory(store, gameID)
	}
	return tui.RunHistory(store, gameID, width, height)
}

func printHistory(store *storage.Store, gameID string) error {
	if gameID == "" {
		games, err := store.Games()
		if err != nil {
			return err
		}
		if len(games) == 0 {
			fmt.Println("No games stored yet.")
			return nil
		}
		gameID = games[0].ID
	}

	turns, err := store.Turns(gameID)
	if err != nil {
		return err
	}

	fmt.Printf("Turn history - %s\n", gameID)
	fmt.Println()
	fmt.Printf("  %-4s  %-5s  %-4s  %-6s  %-6s  %-5s  %-5s  %s\n", "Turn", "Draws", "Lost", "Forage", "Banked", "Food+", "Hatch", "Date")
	fmt.Printf("  %-4s  %-5s  %-4s  %-6s  %-6s  %-5s  %-5s  %s\n", "----", "-----", "----", "------", "------", "-----", "-----", "----")
	for _, rec := range turns {
		row := tui.TurnRow(rec)
		fmt.Printf("  %-4s  %-5s  %-4s  %-6s  %-6s  %-5s  %-5s  %s\n",
			row[0], row[1], row[2], row[3], row[4], row[5], row[6], row[7])
	}
	return nil
}
