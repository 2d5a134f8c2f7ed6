package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ptc/internal/config"
)

var safeWord = regexp.MustCompile(`^[A-Za-z0-9_.,:/@%+=-]+$`)

// Checker drives the external checker binary
type Checker struct {
	config *config.Config
	logger *zap.Logger
}

// NewChecker creates a new Checker
func NewChecker(cfg *config.Config, logger *zap.Logger) *Checker {
	return &Checker{config: cfg, logger: logger.Named("checker")}
}

// Command returns the command line that checks one case and tees its
// output into the case log file.
func (c *Checker) Command(label string) string {
	outputDir := c.config.GetCaseOutputDir(label)
	outputFile := c.config.GetCaseLogFile(label)
	return strings.Join([]string{
		shellQuote(c.config.Checker), "check",
		"-tc", shellQuote(label),
		"-o", shellQuote(outputDir),
		"-i", strconv.Itoa(c.config.Iterations),
		"|&", "tee", shellQuote(outputFile),
	}, " ")
}

// ArtifactPath returns the absolute path of a case's log file
func (c *Checker) ArtifactPath(label string) string {
	return filepath.Join(c.config.GetProjectPath(), filepath.FromSlash(c.config.GetCaseLogFile(label)))
}

// ErrInvalidLabel is returned for case labels that cannot name an output directory
var ErrInvalidLabel = errors.New("invalid case label")

// checkLabel rejects labels that would not stay one directory below the
// output dir, such as "..", "a/b" or absolute paths.
func checkLabel(label string) error {
	if label == "" || label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
	return nil
}

// EnsureArtifact creates an empty log file for the case, truncating the log
// of an earlier run so that a command producing no output reads as empty.
func (c *Checker) EnsureArtifact(label string) (string, error) {
	if err := checkLabel(label); err != nil {
		return "", err
	}
	path := c.ArtifactPath(label)
	if rel, err := filepath.Rel(c.config.GetProjectPath(), path); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q leaves the workspace", ErrInvalidLabel, label)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("create output file: %w", err)
	}
	return path, f.Close()
}

// Invoke sends the check command for label to ch, waits for it to finish
// and returns the contents of the case log file.
func (c *Checker) Invoke(ctx context.Context, ch Channel, label string) (string, error) {
	path, err := c.EnsureArtifact(label)
	if err != nil {
		return "", err
	}

	command := c.Command(label)
	c.logger.Debug("dispatching", zap.String("channel", ch.Name()), zap.String("command", command))

	done, err := ch.Send(ctx, command)
	if err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}

	var timeout <-chan time.Time
	if c.config.CaseTimeout > 0 {
		timer := time.NewTimer(c.config.CaseTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
	case <-timeout:
		return "", fmt.Errorf("checker did not finish within %s", c.config.CaseTimeout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read output file: %w", err)
	}
	return string(data), nil
}

// Installed reports whether the checker binary runs. Any failure to run
// "<checker> --version" counts as not installed.
func (c *Checker) Installed(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, c.config.Checker, "--version")
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			c.logger.Debug("checker probe failed", zap.Int("exit_code", exitErr.ExitCode()))
		} else {
			c.logger.Debug("checker probe failed", zap.Error(err))
		}
		return false
	}
	return true
}

func shellQuote(s string) string {
	if safeWord.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
