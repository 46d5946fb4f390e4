// antfarm resolves simultaneous-turn ant colony games and animates each turn
// in the terminal.
//
// Usage:
//
//	antfarm list                        - List available scenarios
//	antfarm new <scenario>              - Create a game from a scenario
//	antfarm resolve <game> <orders...>  - Resolve one turn from orders files
//	antfarm watch <game> [orders...]    - Animate a turn in the terminal
//	antfarm replay <game>               - Re-resolve stored turns and verify them
//	antfarm history [game]              - Browse committed turns
//	antfarm menu                        - Pick a scenario interactively
//	antfarm serve                       - Start SSH server for remote players
//
// Global flags:
//
//	--fps <rate>     - Stage transitions per second (default: 8)
//	--seed <value>   - Random sequence seed (0 = derive from the game seed)
//	--db <path>      - Set database path (default: ~/.antfarm/antfarm.db)
//	--rules <path>   - Custom rules YAML for new games
//	--verbose        - Debug logging
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/antfarm/internal/storage"

	// Import scenarios to register them
	_ "github.com/vovakirdan/antfarm/internal/scenarios"
)

var (
	// Global flags
	flagFPS       int
	flagSeed      int64
	flagDBPath    string
	flagRulesPath string
	flagVerbose   bool
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "antfarm",
})

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "antfarm",
	Short: "Antfarm - simultaneous-turn ant colonies in your terminal",
	Long: `Antfarm resolves turns of an ant colony game where every colony moves
at once. Each turn runs through twelve stages of movement and combat
followed by foraging, food spawning and egg hatching.

Available commands:
  list     - Show all available scenarios
  new      - Create a game from a scenario
  resolve  - Resolve one turn from orders files
  watch    - Animate a turn stage by stage
  replay   - Re-resolve stored turns and verify them
  history  - Browse committed turns
  menu     - Interactive scenario picker
  serve    - Start SSH server for remote players

Examples:
  antfarm list
  antfarm new skirmish --id demo
  antfarm resolve demo red.json blue.json
  antfarm watch demo
  antfarm serve --ssh :2222`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagVerbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 8, "Stage transitions per second")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Random sequence seed (0 = derive from the game seed and turn)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.antfarm/antfarm.db", "Path to game database")
	rootCmd.PersistentFlags().StringVar(&flagRulesPath, "rules", "", "Path to custom rules YAML, stored with new games")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
}

// openStore opens the game database.
func openStore() (*storage.Store, error) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open game database: %w", err)
	}
	logger.Debug("opened store", "db", flagDBPath)
	return store, nil
}
