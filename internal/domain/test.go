package domain

import (
	"fmt"
	"strings"
)

// Status is the run state of a test node
type Status int

const (
	StatusUnstarted Status = iota
	StatusRunning
	StatusPassed
	StatusFailed
	StatusErrored
)

var statusNames = map[Status]string{
	StatusUnstarted: "unstarted",
	StatusRunning:   "running",
	StatusPassed:    "passed",
	StatusFailed:    "failed",
	StatusErrored:   "errored",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// MarshalText encodes the status by name so stored reports stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name written by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}

// Done reports whether the status is a final verdict.
func (s Status) Done() bool {
	return s == StatusPassed || s == StatusFailed || s == StatusErrored
}

// Position is a zero-based line and column in a text buffer
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range spans two positions in a text buffer
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsZero reports whether the range was never set.
func (r Range) IsZero() bool {
	return r == Range{}
}

// Location points at a range inside a file
type Location struct {
	File  string `json:"file"`
	Range Range  `json:"range"`
}

// String renders the location as file:line:column with one-based numbers,
// the form editors and terminals turn into jump links.
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Range.Start.Line+1, l.Range.Start.Column+1)
}
