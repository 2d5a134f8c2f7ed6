package parser

import "ptc/internal/domain"

// Parser turns captured checker output into a verdict
type Parser interface {
	Classify(output string) domain.Status
	BugLines(output string) []string
}

var _ Parser = (*CheckerParser)(nil)
