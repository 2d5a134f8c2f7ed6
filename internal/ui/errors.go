package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"ptc/internal/config"
	"ptc/internal/domain"
)

// Viewer displays the cases of a report that did not pass
type Viewer interface {
	View(report *domain.Report) error
}

// CommandFunc returns the shell command that reruns a case
type CommandFunc func(label string) string

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	config  *config.Config
	command CommandFunc
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(cfg *config.Config, command CommandFunc) *ErrorViewer {
	return &ErrorViewer{
		config:  cfg,
		command: command,
	}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(report *domain.Report) error {
	entries := report.NotPassed()
	if len(entries) == 0 {
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)
	for i, e := range entries {
		list.AddItem(listItemText(i, e), "", 0, nil)
	}
	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	header := fmt.Sprintf(" Test Failures (%d of %d cases) | Use ↑↓ to navigate, [yellow]C[white] to copy rerun command, → to view details, ← to go back, Ctrl+C to exit ",
		len(entries), len(report.Entries))
	headerView.SetText(header)

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index >= 0 && index < len(entries) {
			statsView.SetText(ev.formatEntryStats(entries[index]))
			detailsView.SetText(ev.formatEntryDetails(entries[index]))
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'c' || event.Rune() == 'C' {
				index := list.GetCurrentItem()
				if index >= 0 && index < len(entries) {
					if err := clipboard.WriteAll(ev.command(entries[index].Label)); err != nil {
						headerView.SetText(fmt.Sprintf(" [red]Copy failed: %v[white] ", err))
					} else {
						headerView.SetText(fmt.Sprintf(" [green]Copied rerun command for %s[white] | %s", entries[index].Label, header))
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(int, string, string, rune) {
		headerView.SetText(header)
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

func listItemText(index int, e domain.Entry) string {
	mark := "[red]✗"
	if e.Status == domain.StatusErrored {
		mark = "[yellow]!"
	}
	return fmt.Sprintf("%s [yellow]%d.[white] %s", mark, index+1, tview.Escape(e.Label))
}

// formatEntryDetails formats a case result for display using tview color tags
func (ev *ErrorViewer) formatEntryDetails(e domain.Entry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white] (%s)\n\n", tview.Escape(e.Label), e.Status)
	fmt.Fprintf(&b, "[cyan]File: %s[white]\n", tview.Escape(e.File))
	if e.Location != nil {
		fmt.Fprintf(&b, "[yellow]Location: %s[white]\n", tview.Escape(e.Location.String()))
	}
	fmt.Fprintf(&b, "[cyan]Log: %s[white]\n\n", tview.Escape(ev.config.GetCaseLogFile(e.Label)))

	if e.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(e.Message))
	}
	if e.Detail != "" {
		fmt.Fprintf(&b, "[yellow]Checker Output:[white]\n%s\n\n", tview.Escape(e.Detail))
	}
	fmt.Fprintf(&b, "[yellow]Rerun:[white]\n%s\n", tview.Escape(ev.command(e.Label)))

	return b.String()
}

// formatEntryStats formats the stats header for a case result
func (ev *ErrorViewer) formatEntryStats(e domain.Entry) string {
	path := e.File
	if path == "" {
		path = "Unknown path"
	}
	return fmt.Sprintf("[cyan]path:[white] [yellow]%s[white]::[yellow]%s[white] [gray](%s)[white]\n",
		tview.Escape(path), tview.Escape(e.Label), e.Duration.Round(1e6))
}
