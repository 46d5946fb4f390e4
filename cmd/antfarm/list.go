package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/antfarm/internal/config"
	"github.com/vovakirdan/antfarm/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available scenarios",
	Long:  `Shows a list of all scenarios registered in antfarm and the rules presets.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	scenarios := registry.List()

	if len(scenarios) == 0 {
		fmt.Println("No scenarios available.")
		return
	}

	fmt.Println("Available scenarios:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, s := range scenarios {
		if len(s.ID) > maxIDLen {
			maxIDLen = len(s.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, s := range scenarios {
		fmt.Printf("  %-*s  %s\n", maxIDLen, s.ID, s.Title)
	}

	fmt.Println()
	fmt.Print("Presets:")
	for _, p := range config.Presets {
		fmt.Printf(" %s", p)
	}
	fmt.Println()
	fmt.Println()
	fmt.Println("Run 'antfarm new <id>' to start a game.")
}
