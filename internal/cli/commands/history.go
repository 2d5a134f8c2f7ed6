package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"ptc/internal/storage"
)

// HistoryCommand lists recent runs from the history database
type HistoryCommand struct {
	app *App
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(app *App) *HistoryCommand {
	return &HistoryCommand{app: app}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := hc.app.Config
	if cfg.HistoryDSN == "" {
		return errors.New("no history database configured (use --history-dsn, PTC_HISTORY_DSN or history: in ptc.yaml)")
	}

	history, err := storage.OpenHistory(cmd.Context(), cfg.HistoryDSN, hc.app.Logger)
	if err != nil {
		return err
	}
	defer history.Close()

	runs, err := history.Recent(cmd.Context(), cfg.Flags.Limit)
	if err != nil {
		return err
	}
	hc.app.Formatter.PrintHistory(runs)
	return nil
}
