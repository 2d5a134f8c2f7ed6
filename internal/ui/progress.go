package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"ptc/internal/domain"
	"ptc/internal/tree"
)

// ProgressBar shows run progress and observes case results
type ProgressBar struct {
	bar     *progressbar.ProgressBar
	passed  int
	failed  int
	errored int
	current string
}

// NewProgressBar creates a new progress bar writing to stderr
func NewProgressBar(count int) *ProgressBar {
	return NewProgressBarTo(os.Stderr, count)
}

// NewProgressBarTo creates a new progress bar writing to w
func NewProgressBarTo(w io.Writer, count int) *ProgressBar {
	p := &ProgressBar{}
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(p.describe()),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(w),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

// CaseStarted shows the case currently on the channel
func (p *ProgressBar) CaseStarted(node *tree.Node) {
	p.current = node.Label
	p.bar.Describe(p.describe())
}

// CaseFinished advances the bar and updates the counts
func (p *ProgressBar) CaseFinished(_ *tree.Node, entry domain.Entry) {
	switch entry.Status {
	case domain.StatusPassed:
		p.passed++
	case domain.StatusFailed:
		p.failed++
	case domain.StatusErrored:
		p.errored++
	}
	p.current = ""
	p.bar.Add(1)
	p.bar.Describe(p.describe())
}

// Counts returns the passed, failed and errored cases seen so far
func (p *ProgressBar) Counts() (passed, failed, errored int) {
	return p.passed, p.failed, p.errored
}

func (p *ProgressBar) describe() string {
	desc := color.CyanString("Running tests: ") +
		color.GreenString("[passed: %d", p.passed) +
		" | " +
		color.RedString("failed: %d", p.failed) +
		" | " +
		color.YellowString("errored: %d]", p.errored)
	if p.current != "" {
		desc += " " + p.current
	}
	return desc
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}
