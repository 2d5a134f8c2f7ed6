package discovery

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ptc/internal/domain"
)

func names(decls []Declaration) []string {
	out := make([]string, 0, len(decls))
	for _, d := range decls {
		out = append(out, d.Name)
	}
	return out
}

func TestLineScanner_Scan(t *testing.T) {
	scanner := NewLineScanner("test")

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "two declarations",
			text:     "test Bar\ntest Baz\n",
			expected: []string{"Bar", "Baz"},
		},
		{
			name:     "leading whitespace",
			text:     "  test tcSingleClient [main=TestWithSingleClient]:\n\ttest tcTwo [main=Two]:",
			expected: []string{"tcSingleClient", "tcTwo"},
		},
		{
			name:     "keyword as part of identifier",
			text:     "testing Foo\ntestcase Bar\nmytest Baz\n",
			expected: []string{},
		},
		{
			name:     "keyword without name",
			text:     "test\ntest   \n",
			expected: []string{},
		},
		{
			name:     "keyword not first token",
			text:     "// test Commented\nmachine test Foo\n",
			expected: []string{},
		},
		{
			name:     "several spaces before name",
			text:     "test    Spaced",
			expected: []string{"Spaced"},
		},
		{
			name:     "crlf line endings",
			text:     "test A\r\ntest B\r\n",
			expected: []string{"A", "B"},
		},
		{
			name:     "empty buffer",
			text:     "",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(scanner.ScanAll(tt.text))
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("declarations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLineScanner_Ranges(t *testing.T) {
	scanner := NewLineScanner("test")
	text := "machine Main {}\n\ntest tcOne [main=Main]:\r\n  test tcTwö [main=Main]:"

	decls := scanner.ScanAll(text)
	require.Len(t, decls, 2)

	assert.Equal(t, domain.Range{
		Start: domain.Position{Line: 2, Column: 0},
		End:   domain.Position{Line: 2, Column: len("test tcOne [main=Main]:")},
	}, decls[0].Range)

	// columns count characters, not bytes
	assert.Equal(t, domain.Range{
		Start: domain.Position{Line: 3, Column: 0},
		End:   domain.Position{Line: 3, Column: 25},
	}, decls[1].Range)
}

func TestLineScanner_Repeatable(t *testing.T) {
	scanner := NewLineScanner("test")
	text := "test A\nfoo\ntest B\n  test C\n"

	first := scanner.ScanAll(text)
	second := scanner.ScanAll(text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("re-scan differs (-first +second):\n%s", diff)
	}

	// a scan of another buffer in between must not disturb later scans
	_ = scanner.ScanAll("test Other\n")
	third := scanner.ScanAll(text)
	assert.Equal(t, []string{"A", "B", "C"}, names(third))
}

func TestLineScanner_StopsEarly(t *testing.T) {
	scanner := NewLineScanner("test")

	var seen []string
	for decl := range scanner.Scan("test A\ntest B\ntest C\n") {
		seen = append(seen, decl.Name)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"A", "B"}, seen)
}

func TestLineScanner_CountMatchesDeclarationLines(t *testing.T) {
	scanner := NewLineScanner("test")
	buffers := []string{
		"test a\ntest\ntest b c\n testing d\n\ttest e",
		strings.Repeat("test x\nnot y\n", 50),
		"event e;\nmachine M {}\n",
	}

	for _, buf := range buffers {
		want := 0
		for _, line := range strings.Split(buf, "\n") {
			fields := strings.Fields(line)
			if len(fields) >= 2 && fields[0] == "test" {
				want++
			}
		}
		assert.Len(t, scanner.ScanAll(buf), want)
	}
}
