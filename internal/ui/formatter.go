package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"

	"ptc/internal/config"
	"ptc/internal/domain"
	"ptc/internal/storage"
	"ptc/internal/tree"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer

	cyan   *color.Color
	green  *color.Color
	red    *color.Color
	yellow *color.Color
	white  *color.Color
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter(cfg *config.Config) *Formatter {
	return NewFormatterTo(cfg, color.Output)
}

// NewFormatterTo creates a new Formatter writing to w
func NewFormatterTo(cfg *config.Config, w io.Writer) *Formatter {
	if w == nil {
		w = os.Stdout
	}
	return &Formatter{
		config: cfg,
		out:    w,
		cyan:   color.New(color.FgCyan),
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		white:  color.New(color.FgWhite),
	}
}

// relPath returns path relative to the workspace root for display
func (f *Formatter) relPath(path string) string {
	if rel, err := filepath.Rel(f.config.GetProjectPath(), path); err == nil {
		return rel
	}
	return path
}

// PrintTree prints the discovered test files, optionally with their cases.
// last is optional; if set, files and cases that did not pass in it are marked with [F].
func (f *Formatter) PrintTree(files []*tree.Node, showTestCases bool, last *domain.Report) {
	failed := storage.NotPassedSet(last)
	marker := func(key string) string {
		if _, ok := failed[key]; ok {
			return " " + f.red.Sprint("[F]")
		}
		return ""
	}

	if showTestCases {
		f.green.Fprintf(f.out, "Found %d test file(s) with test cases:\n\n", len(files))
	} else {
		f.green.Fprintf(f.out, "Found %d test file(s):\n\n", len(files))
	}

	for i, file := range files {
		isLastFile := i == len(files)-1
		branch := "├── "
		if isLastFile {
			branch = "└── "
		}
		f.cyan.Fprintf(f.out, "%s%s%s\n", branch, f.relPath(file.File), marker(storage.FileKey(file.File)))

		if !showTestCases {
			continue
		}

		indent := "│   "
		if isLastFile {
			indent = "    "
		}
		cases := file.Children()
		for j, c := range cases {
			prefix := indent + "├── "
			if j == len(cases)-1 {
				prefix = indent + "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", prefix, f.yellow.Sprint(c.Label), marker(storage.CaseKey(file.File, c.Label)))
		}

		if !isLastFile {
			fmt.Fprintln(f.out)
		}
	}
}

// PrintReport prints run statistics followed by the cases that did not pass
func (f *Formatter) PrintReport(report *domain.Report) {
	passed, failed, errored := report.Counts()

	fmt.Fprint(f.out, "\n")
	f.cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	f.cyan.Fprintln(f.out, "║                    Test Execution Statistics                  ║")
	f.cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(f.out)

	row := func(label string, c *color.Color, value any) {
		fmt.Fprintf(f.out, "│ %-31s │ ", label)
		c.Fprintf(f.out, "%-27v", value)
		fmt.Fprint(f.out, " │\n")
	}
	sep := func() {
		fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
	}

	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	row("Requested Test Cases", f.white, report.Requested)
	sep()
	row("Passed", f.green, passed)
	sep()
	row("Failed", f.red, failed)
	sep()
	row("Errored", f.yellow, errored)
	sep()
	row("Duration", f.white, fmt.Sprintf("%.2fs", report.Duration.Seconds()))
	sep()
	row("Timestamp", f.white, report.StartedAt.Format(time.DateTime))
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Fprintln(f.out)
	if report.Cancelled {
		f.yellow.Fprintf(f.out, "! Run cancelled after %d of %d test case(s)\n", len(report.Entries), report.Requested)
	}

	notPassed := report.NotPassed()
	if len(notPassed) == 0 {
		if len(report.Entries) > 0 {
			f.green.Fprintln(f.out, "✓ All tests passed!")
		}
		return
	}

	f.red.Fprintf(f.out, "✗ %d test case(s) did not pass\n\n", len(notPassed))
	f.printNotPassed(notPassed)
}

// printNotPassed groups the entries by file and prints them as a tree
func (f *Formatter) printNotPassed(entries []domain.Entry) {
	byFile := make(map[string][]domain.Entry)
	for _, e := range entries {
		byFile[e.File] = append(byFile[e.File], e)
	}
	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for i, file := range files {
		isLastFile := i == len(files)-1
		branch, indent := "├── ", "│   "
		if isLastFile {
			branch, indent = "└── ", "    "
		}
		f.yellow.Fprintf(f.out, "%s%s\n", branch, f.relPath(file))

		cases := byFile[file]
		for j, e := range cases {
			prefix := indent + "├── "
			if j == len(cases)-1 {
				prefix = indent + "└── "
			}
			c := f.red
			if e.Status == domain.StatusErrored {
				c = f.yellow
			}
			fmt.Fprintf(f.out, "%s%s %s\n", prefix, c.Sprint(e.Label), e.Message)
		}
	}
}

// PrintHistory prints recent runs as a table
func (f *Formatter) PrintHistory(runs []storage.RunSummary) {
	if len(runs) == 0 {
		f.yellow.Fprintln(f.out, "No runs recorded yet.")
		return
	}
	fmt.Fprintf(f.out, "%-36s  %-19s  %9s  %6s  %6s  %7s\n", "RUN", "STARTED", "DURATION", "PASSED", "FAILED", "ERRORED")
	for _, r := range runs {
		fmt.Fprintf(f.out, "%-36s  %-19s  %8.2fs  ", r.ID, r.StartedAt.Local().Format(time.DateTime), r.Duration.Seconds())
		f.green.Fprintf(f.out, "%6d", r.Passed)
		fmt.Fprint(f.out, "  ")
		f.red.Fprintf(f.out, "%6d", r.Failed)
		fmt.Fprint(f.out, "  ")
		f.yellow.Fprintf(f.out, "%7d", r.Errored)
		if r.Cancelled {
			fmt.Fprint(f.out, "  (cancelled)")
		}
		fmt.Fprintln(f.out)
	}
}
