package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ptc/internal/docsync"
)

const watchDebounce = 300 * time.Millisecond

// WatchCommand keeps the tree in sync with the workspace and optionally
// reruns the cases of changed files.
type WatchCommand struct {
	app *App
	run *RunCommand
}

// NewWatchCommand creates a new WatchCommand
func NewWatchCommand(app *App) *WatchCommand {
	return &WatchCommand{app: app, run: NewRunCommand(app)}
}

// Execute runs the command
func (wc *WatchCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := wc.app.Config
	runOnChange := cfg.Flags.RunOnChange
	if runOnChange && !wc.app.Checker.Installed(ctx) {
		return errors.New("checker " + cfg.Checker + " is not installed; cannot run on change")
	}

	count, err := wc.app.Syncer.Discover(ctx, wc.app.Finder)
	if err != nil {
		return err
	}
	color.Green("Watching %d test file(s) in %s (Ctrl+C to stop)", count, cfg.GetProjectPath())

	watcher, err := docsync.NewWatcher(wc.app.Syncer, wc.app.Logger, watchDebounce)
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(cfg.GetProjectPath()); err != nil {
		return err
	}

	changed := make(chan string, 16)
	watcher.OnChange(func(path string) {
		select {
		case changed <- path:
		default:
			wc.app.Logger.Debug("change queue full", zap.String("file", path))
		}
	})

	errc := make(chan error, 1)
	go func() { errc <- watcher.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			<-errc
			return nil
		case err := <-errc:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case path := <-changed:
			wc.handleChange(ctx, path, runOnChange)
		}
	}
}

func (wc *WatchCommand) handleChange(ctx context.Context, path string, runOnChange bool) {
	uri := docsync.FileURI(path)
	if _, ok := wc.app.Syncer.Qualifies(docsync.Document{URI: uri}); !ok {
		return
	}
	node, ok := wc.app.Tree.Get(uri)
	if !ok {
		color.Yellow("- %s (no tests)", path)
		return
	}
	cases := node.Children()
	color.Cyan("~ %s (%d test case(s))", node.Label, len(cases))
	if !runOnChange {
		return
	}

	report, err := wc.run.run(ctx, wc.app.Tree.Expand(cases), false)
	if err != nil {
		wc.app.Logger.Error("run failed", zap.String("file", path), zap.Error(err))
		return
	}
	passed, failed, errored := report.Counts()
	color.White("  passed: %d, failed: %d, errored: %d", passed, failed, errored)
}
