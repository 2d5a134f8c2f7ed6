package execution

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ptc/internal/config"
)

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

// writeChecker installs a fake checker script that prints output for every check
func writeChecker(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-p")
	script := "#!/usr/bin/env bash\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	cfg.CaseTimeout = 10 * time.Second
	return cfg
}

func TestChecker_Command(t *testing.T) {
	cfg := config.New()
	c := NewChecker(cfg, zaptest.NewLogger(t))

	assert.Equal(t,
		"p check -tc tcSingleClient -o PCheckerOutput/tcSingleClient -i 1000 |& tee PCheckerOutput/tcSingleClient/check.log",
		c.Command("tcSingleClient"))

	cfg.Iterations = 25
	assert.Equal(t,
		"p check -tc tcA -o PCheckerOutput/tcA -i 25 |& tee PCheckerOutput/tcA/check.log",
		c.Command("tcA"))

	// names with shell metacharacters are quoted
	cmd := c.Command("bad;rm")
	assert.Contains(t, cmd, "-tc 'bad;rm'")
	assert.Contains(t, cmd, "tee 'PCheckerOutput/bad;rm/check.log'")
}

func TestChecker_EnsureArtifact(t *testing.T) {
	cfg := newTestConfig(t)
	c := NewChecker(cfg, zaptest.NewLogger(t))

	path, err := c.EnsureArtifact("tcA")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.ProjectPath, "PCheckerOutput", "tcA", "check.log"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	// the log of an earlier run is cleared
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0644))
	_, err = c.EnsureArtifact("tcA")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestChecker_EnsureArtifactRejectsUnsafeLabels(t *testing.T) {
	cfg := newTestConfig(t)
	c := NewChecker(cfg, zaptest.NewLogger(t))
	root := cfg.GetProjectPath()

	for _, label := range []string{"../../escape", "..", ".", "", "a/b", `a\b`, "/abs"} {
		t.Run(label, func(t *testing.T) {
			_, err := c.EnsureArtifact(label)
			assert.ErrorIs(t, err, ErrInvalidLabel)
		})
	}

	entries, err := os.ReadDir(filepath.Dir(root))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "escape", e.Name())
	}
	assert.NoDirExists(t, filepath.Join(root, "PCheckerOutput"))

	// labels with dots stay under the workspace
	path, err := c.EnsureArtifact("tc..x")
	require.NoError(t, err)
	rel, err := filepath.Rel(root, path)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(rel, ".."), rel)
}

func TestChecker_InvokeUnsafeLabel(t *testing.T) {
	cfg := newTestConfig(t)
	c := NewChecker(cfg, zaptest.NewLogger(t))
	ch := newFakeChannel("ptc-1")

	_, err := c.Invoke(context.Background(), ch, "../../escape")
	assert.ErrorIs(t, err, ErrInvalidLabel)
	assert.Empty(t, ch.sent)
}

func TestChecker_InvokeIgnoresStaleLog(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	cfg := newTestConfig(t)
	cfg.Checker = writeChecker(t, t.TempDir(), `echo "the checker found a bug"`)
	c := NewChecker(cfg, zaptest.NewLogger(t))

	path := c.ArtifactPath("tcA")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("Found 0 bugs\n"), 0644))

	// "|&" does not parse in a POSIX sh, so tee may never run
	var out strings.Builder
	ch := NewShellChannel("ptc-1", "sh", cfg.ProjectPath, &syncWriter{w: &out}, time.Minute, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = ch.Close() })

	output, err := c.Invoke(context.Background(), ch, "tcA")
	require.NoError(t, err)
	assert.NotContains(t, output, "Found 0 bugs")
}

func TestChecker_Invoke(t *testing.T) {
	requireBash(t)

	cfg := newTestConfig(t)
	cfg.Checker = writeChecker(t, t.TempDir(), `
# arguments: check -tc <case> -o <dir> -i <n>
if [ "$3" = "tcBuggy" ]; then
  echo "... Checker found a bug."
else
  echo "... Found 0 bugs."
fi
echo "iterations=$7" >&2`)

	c := NewChecker(cfg, zaptest.NewLogger(t))
	var out strings.Builder
	ch := NewShellChannel("ptc-1", "bash", cfg.ProjectPath, &syncWriter{w: &out}, time.Minute, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = ch.Close() })

	output, err := c.Invoke(context.Background(), ch, "tcGood")
	require.NoError(t, err)
	assert.Contains(t, output, "Found 0 bugs")
	assert.Contains(t, output, "iterations=1000")

	output, err = c.Invoke(context.Background(), ch, "tcBuggy")
	require.NoError(t, err)
	assert.Contains(t, output, "found a bug")
}

func TestChecker_InvokeClosedChannel(t *testing.T) {
	cfg := newTestConfig(t)
	c := NewChecker(cfg, zaptest.NewLogger(t))

	ch := newFakeChannel("ptc-1")
	require.NoError(t, ch.Close())

	_, err := c.Invoke(context.Background(), ch, "tcA")
	assert.ErrorIs(t, err, ErrChannelClosed)
}

func TestChecker_Installed(t *testing.T) {
	requireBash(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		checker string
		want    bool
	}{
		{name: "version succeeds", checker: writeChecker(t, dir, "echo 2.3.0"), want: true},
		{name: "missing binary", checker: filepath.Join(dir, "does-not-exist"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.Checker = tt.checker
			assert.Equal(t, tt.want, NewChecker(cfg, zaptest.NewLogger(t)).Installed(context.Background()))
		})
	}

	t.Run("non-zero exit", func(t *testing.T) {
		failing := filepath.Join(t.TempDir(), "failing-p")
		require.NoError(t, os.WriteFile(failing, []byte("#!/usr/bin/env bash\nexit 3\n"), 0755))
		cfg := newTestConfig(t)
		cfg.Checker = failing
		assert.False(t, NewChecker(cfg, zaptest.NewLogger(t)).Installed(context.Background()))
	})
}
