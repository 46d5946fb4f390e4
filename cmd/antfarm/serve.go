package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/antfarm/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagPollPeriod  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the antfarm SSH server",
	Long: `Start an SSH server where players watch games and submit orders.

Each connection with a terminal watches one game and is shown every turn as
soon as it is committed. A connection running "submit <game>" reads one
orders document from stdin. Once every colony has submitted, the turn is
resolved and stored.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.antfarm/host_key

Examples:
  antfarm serve                           # Listen on :23234 with auto-generated key
  antfarm serve --ssh :2222               # Listen on port 2222
  antfarm serve --db ./games.db           # Use specific database

Players connect with:
  ssh localhost -p 23234 demo
  ssh localhost -p 23234 submit demo < red.json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	defaults := tui.DefaultSSHServerConfig()
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", defaults.Address, "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().DurationVar(&flagPollPeriod, "poll", defaults.PollPeriod, "How often to check for turns committed by other processes")
}

func runServe(_ *cobra.Command, _ []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    flagFPS,
		PollPeriod:  flagPollPeriod,
	}

	server, err := tui.NewSSHServer(cfg, store)
	if err != nil {
		return fmt.Errorf("cannot create server: %w", err)
	}

	fmt.Printf("Starting antfarm SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
