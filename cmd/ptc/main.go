package main

import (
	"errors"
	"fmt"
	"os"

	"ptc/internal/cli"
	"ptc/internal/cli/commands"
	"ptc/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "ptc",
		Short:         "P test case runner",
		Long:          `Discover P test cases in a workspace and run them one at a time through the P checker, keeping the results of the last run for review.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		// the report already lists what did not pass
		if !errors.Is(err, commands.ErrNotPassed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
