package commands

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"ptc/internal/cli"
	"ptc/internal/config"
	"ptc/internal/discovery"
	"ptc/internal/docsync"
	"ptc/internal/execution"
	"ptc/internal/logging"
	"ptc/internal/parser"
	"ptc/internal/storage"
	"ptc/internal/tree"
	"ptc/internal/ui"
)

// App holds the dependencies shared by every command. It is filled in once
// the flags are parsed, since the logger and config depend on them.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Tree      *tree.Tree
	Finder    *discovery.Finder
	Filter    *discovery.Filter
	Syncer    *docsync.Syncer
	Checker   *execution.Checker
	Parser    *parser.CheckerParser
	Storage   storage.Storage
	Formatter *ui.Formatter
	Viewer    ui.Viewer

	// Out receives the output of execution channels
	Out io.Writer
}

// Init loads the config and builds the dependencies
func (a *App) Init(flags *cli.Flags) error {
	if err := a.Config.Reload(flags.ToConfigFlags()); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(flags.Verbose)
	if err != nil {
		return err
	}
	a.Logger = logger

	a.Tree = tree.New()
	a.Finder = discovery.NewFinder(logger)
	a.Filter = discovery.NewFilter()
	a.Syncer = docsync.NewSyncer(a.Config, a.Tree, discovery.NewLineScanner(a.Config.Keyword), logger)
	a.Checker = execution.NewChecker(a.Config, logger)
	a.Parser = parser.NewCheckerParser()
	a.Storage = storage.NewJSONStorage(a.Config)
	a.Formatter = ui.NewFormatter(a.Config)
	a.Viewer = ui.NewErrorViewer(a.Config, a.Checker.Command)
	if a.Out == nil {
		a.Out = os.Stdout
	}

	logger.Debug("config loaded",
		zap.String("project", a.Config.GetProjectPath()),
		zap.String("checker", a.Config.Checker),
		zap.Int("iterations", a.Config.Iterations),
		zap.String("order", a.Config.Order))
	return nil
}

// Sync flushes the logger
func (a *App) Sync() {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

// NewSelector returns a channel selector that opens shell channels in the
// workspace root, writing their output to out.
func (a *App) NewSelector(out io.Writer) *execution.Selector {
	factory := func(name string) (execution.Channel, error) {
		return execution.NewShellChannel(name, a.Config.Shell, a.Config.GetProjectPath(), out, a.Config.CaseTimeout, a.Logger), nil
	}
	return execution.NewSelector(a.Config.ReservedChannel, factory, a.Logger)
}
