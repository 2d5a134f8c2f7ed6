package discovery

import (
	"iter"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"ptc/internal/domain"
)

// Declaration is a test declaration found in a text buffer
type Declaration struct {
	Name  string
	Range domain.Range
}

// LineScanner finds test declaration lines: the keyword as the first token
// of a line, followed by the declared name.
type LineScanner struct {
	keyword string
}

// NewLineScanner creates a LineScanner for the given declaration keyword
func NewLineScanner(keyword string) *LineScanner {
	return &LineScanner{keyword: keyword}
}

// Scan returns a lazy sequence of the declarations in text, in line order.
// Each call compiles its own matcher, so sequences from different calls
// never share state.
func (s *LineScanner) Scan(text string) iter.Seq[Declaration] {
	return func(yield func(Declaration) bool) {
		pattern := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(s.keyword) + `\s+(\S+)`)

		lineNo := 0
		for line := range strings.Lines(text) {
			line = strings.TrimRight(line, "\r\n")
			if match := pattern.FindStringSubmatch(line); match != nil {
				decl := Declaration{
					Name: match[1],
					Range: domain.Range{
						Start: domain.Position{Line: lineNo, Column: 0},
						End:   domain.Position{Line: lineNo, Column: utf8.RuneCountInString(line)},
					},
				}
				if !yield(decl) {
					return
				}
			}
			lineNo++
		}
	}
}

// ScanAll collects every declaration in text
func (s *LineScanner) ScanAll(text string) []Declaration {
	return slices.Collect(s.Scan(text))
}
