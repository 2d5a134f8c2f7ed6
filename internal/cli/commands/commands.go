package commands

import (
	"github.com/spf13/cobra"

	"ptc/internal/cli"
	"ptc/internal/config"
)

// Commands holds all CLI commands
type Commands struct {
	app     *App
	Run     *RunCommand
	List    *ListCommand
	Watch   *WatchCommand
	Check   *CheckCommand
	Faills  *FaillsCommand
	History *HistoryCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	app := &App{Config: cfg}
	return &Commands{
		app:     app,
		Run:     NewRunCommand(app),
		List:    NewListCommand(app),
		Watch:   NewWatchCommand(app),
		Check:   NewCheckCommand(app),
		Faills:  NewFaillsCommand(app),
		History: NewHistoryCommand(app),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	rootCmd.PersistentFlags().StringVarP(&flags.ProjectPath, "project", "p", "", "Workspace root to discover tests in (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flags.ConfigFile, "config", "", "Path to the YAML config file (default: <project>/ptc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.Checker, "checker", "", "Checker binary to invoke (default: p)")
	rootCmd.PersistentFlags().IntVarP(&flags.Iterations, "iterations", "i", 0, "Schedules explored per test case (default: 1000)")
	rootCmd.PersistentFlags().StringVar(&flags.HistoryDSN, "history-dsn", "", "Record runs in a SQL database (sqlite://<path> or mysql://<dsn>)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return c.app.Init(flags)
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		c.app.Sync()
	}

	// Run command
	runCmd := &cobra.Command{
		Use:   "run [file-or-case...]",
		Short: "Run P test cases through the checker",
		Long: `Discover test cases and run them one at a time with "p check".
Arguments select test files (path or name) or test cases (name, or File.p:Case).
Without arguments every discovered test case runs.`,
		RunE: c.Run.Execute,
	}
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files or cases by name pattern (supports wildcards, e.g. 'Test*Raft*' or '*Leader*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test case that does not pass")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only test cases that did not pass in the last run")
	runCmd.Flags().StringVar(&flags.Order, "order", "", "Run order: declaration or lifo")
	runCmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Stream checker output instead of showing a progress bar")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tests",
		Long:  "Scan the workspace and list P test files without running them",
		RunE:  c.List.Execute,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter test files by name pattern (supports wildcards)")
	listCmd.Flags().BoolVarP(&flags.TestCases, "test-cases", "c", false, "List test cases under each file")
	rootCmd.AddCommand(listCmd)

	// Watch command
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the test tree in sync with the workspace",
		Long:  "Watch test folders and re-discover test cases whenever a test file changes",
		RunE:  c.Watch.Execute,
	}
	watchCmd.Flags().BoolVar(&flags.RunOnChange, "run", false, "Run the test cases of a file whenever it changes")
	watchCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test case that does not pass")
	rootCmd.AddCommand(watchCmd)

	// Check command
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the checker is installed",
		RunE:  c.Check.Execute,
	}
	rootCmd.AddCommand(checkCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test cases that did not pass in the last run in an interactive viewer",
		RunE:  c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Long:  "List recent runs recorded in the history database (requires --history-dsn)",
		RunE:  c.History.Execute,
	}
	historyCmd.Flags().IntVarP(&flags.Limit, "limit", "n", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
