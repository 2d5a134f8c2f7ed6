package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	app *App
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(app *App) *FaillsCommand {
	return &FaillsCommand{app: app}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	report, err := fc.app.Storage.Load()
	if err != nil {
		return fmt.Errorf("no previous run found (run `ptc run` first): %w", err)
	}

	return fc.app.Viewer.View(report)
}
