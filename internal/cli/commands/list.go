package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ptc/internal/tree"
)

// ListCommand handles the list command
type ListCommand struct {
	app *App
}

// NewListCommand creates a new ListCommand
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	if _, err := lc.app.Syncer.Discover(cmd.Context(), lc.app.Finder); err != nil {
		return err
	}

	// Filter test files
	pattern := lc.app.Config.Flags.NameFilter
	var files []*tree.Node
	for _, file := range lc.app.Tree.Files() {
		if lc.app.Filter.Match(file.Label, pattern) {
			files = append(files, file)
		}
	}

	if len(files) == 0 {
		color.Yellow("No tests found")
		return nil
	}

	// The last report is optional; without one nothing is marked
	last, _ := lc.app.Storage.Load()
	lc.app.Formatter.PrintTree(files, lc.app.Config.Flags.TestCases, last)
	return nil
}
