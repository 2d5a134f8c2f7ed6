package parser

import (
	"strings"

	"ptc/internal/domain"
)

const (
	// PassMarker appears in checker output when no bug was found
	PassMarker = "Found 0 bugs"
	// FailMarker appears in checker output when a bug was found
	FailMarker = "found a bug"
)

// CheckerParser classifies checker log output
type CheckerParser struct {
	passMarker string
	failMarker string
}

// NewCheckerParser creates a CheckerParser for the checker's log markers
func NewCheckerParser() *CheckerParser {
	return &CheckerParser{passMarker: PassMarker, failMarker: FailMarker}
}

// Classify returns the verdict for one case's log. The pass marker is
// checked first, so output containing both markers is a pass. Output with
// neither marker, including empty output, is errored.
func (p *CheckerParser) Classify(output string) domain.Status {
	switch {
	case strings.Contains(output, p.passMarker):
		return domain.StatusPassed
	case strings.Contains(output, p.failMarker):
		return domain.StatusFailed
	default:
		return domain.StatusErrored
	}
}

// BugLines returns the log lines that mention a found bug
func (p *CheckerParser) BugLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, p.failMarker) {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	return lines
}
