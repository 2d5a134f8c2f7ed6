package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// CheckCommand reports whether the checker binary can be invoked
type CheckCommand struct {
	app *App
}

// NewCheckCommand creates a new CheckCommand
func NewCheckCommand(app *App) *CheckCommand {
	return &CheckCommand{app: app}
}

// Execute runs the command
func (cc *CheckCommand) Execute(cmd *cobra.Command, args []string) error {
	checker := cc.app.Config.Checker
	if !cc.app.Checker.Installed(cmd.Context()) {
		color.Red("✗ %s is not installed", checker)
		return fmt.Errorf("checker %q not found", checker)
	}
	color.Green("✓ %s is installed", checker)
	return nil
}
