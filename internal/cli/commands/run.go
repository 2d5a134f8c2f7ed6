package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ptc/internal/domain"
	"ptc/internal/execution"
	"ptc/internal/storage"
	"ptc/internal/tree"
	"ptc/internal/ui"
)

// ErrNotPassed is returned when a run finished with failed or errored cases
var ErrNotPassed = errors.New("test cases did not pass")

// RunCommand handles the run command
type RunCommand struct {
	app *App
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(app *App) *RunCommand {
	return &RunCommand{app: app}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := rc.app.Config
	if !rc.app.Checker.Installed(ctx) {
		return fmt.Errorf("checker %q is not installed or not on PATH; install the P toolchain first", cfg.Checker)
	}

	if _, err := rc.app.Syncer.Discover(ctx, rc.app.Finder); err != nil {
		return err
	}

	cases, err := rc.selectCases(args)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	report, err := rc.run(ctx, cases, !cfg.Flags.NoProgress)
	if err != nil {
		return err
	}

	rc.app.Formatter.PrintReport(report)
	if len(report.NotPassed()) > 0 {
		return fmt.Errorf("%d of %d: %w", len(report.NotPassed()), len(report.Entries), ErrNotPassed)
	}
	return nil
}

// selectCases resolves the arguments and applies --filter and --failed
func (rc *RunCommand) selectCases(args []string) ([]*tree.Node, error) {
	cfg := rc.app.Config

	targets, err := resolveTargets(cfg, rc.app.Tree, args)
	if err != nil {
		return nil, err
	}
	cases := rc.app.Tree.Expand(targets)
	cases = filterCases(rc.app.Filter, cases, cfg.Flags.NameFilter)

	if cfg.Flags.OnlyFailed {
		last, err := rc.app.Storage.Load()
		if err != nil {
			return nil, fmt.Errorf("no previous run to take failed tests from: %w", err)
		}
		cases = onlyNotPassed(cases, last)
	}
	return cases, nil
}

// run processes cases, then saves and records the report
func (rc *RunCommand) run(ctx context.Context, cases []*tree.Node, showProgress bool) (*domain.Report, error) {
	cfg := rc.app.Config
	logger := rc.app.Logger

	var out io.Writer = rc.app.Out
	var progress *ui.ProgressBar
	if showProgress {
		// the case log keeps the checker output
		out = io.Discard
		progress = ui.NewProgressBar(len(cases))
	}

	selector := rc.app.NewSelector(out)
	defer func() {
		if err := selector.Close(); err != nil {
			logger.Warn("failed to close channels", zap.Error(err))
		}
	}()

	orchestrator := execution.NewOrchestrator(
		rc.app.Tree,
		selector,
		rc.app.Checker,
		rc.app.Parser,
		execution.NewScheduler(cfg.Order),
		logger,
	)
	if progress != nil {
		orchestrator.SetObserver(progress)
	} else {
		orchestrator.SetObserver(&consoleObserver{out: rc.app.Out})
	}

	report := orchestrator.Run(ctx, execution.Request{
		Include:  cases,
		FailFast: cfg.Flags.FailFast,
	})
	if progress != nil {
		progress.Finish()
	}

	if err := rc.app.Storage.Save(report); err != nil {
		return nil, fmt.Errorf("failed to save test results: %w", err)
	}
	if cfg.HistoryDSN != "" {
		if err := recordHistory(context.WithoutCancel(ctx), cfg.HistoryDSN, report, logger); err != nil {
			logger.Warn("failed to record run history", zap.Error(err))
		}
	}
	return report, nil
}

func recordHistory(ctx context.Context, dsn string, report *domain.Report, logger *zap.Logger) error {
	history, err := storage.OpenHistory(ctx, dsn, logger)
	if err != nil {
		return err
	}
	defer history.Close()
	return history.Record(ctx, report)
}

// consoleObserver prints one line per case when the progress bar is off
type consoleObserver struct {
	out io.Writer
}

var _ execution.Observer = (*consoleObserver)(nil)

func (o *consoleObserver) CaseStarted(node *tree.Node) {
	fmt.Fprintf(o.out, "%s %s\n", color.CyanString("▶"), node.Label)
}

func (o *consoleObserver) CaseFinished(node *tree.Node, entry domain.Entry) {
	switch entry.Status {
	case domain.StatusPassed:
		fmt.Fprintf(o.out, "%s %s\n", color.GreenString("✓"), node.Label)
	case domain.StatusFailed:
		fmt.Fprintf(o.out, "%s %s: %s\n", color.RedString("✗"), node.Label, entry.Message)
	default:
		fmt.Fprintf(o.out, "%s %s: %s\n", color.YellowString("!"), node.Label, entry.Message)
	}
}
