package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// Finder searches a workspace for test declaration files
type Finder struct {
	logger *zap.Logger
}

// NewFinder creates a new Finder
func NewFinder(logger *zap.Logger) *Finder {
	return &Finder{logger: logger.Named("finder")}
}

// FindFiles returns the files under root whose slash-separated path relative
// to root matches pattern and matches none of the exclude globs.
// Results are absolute paths in lexical order.
func (f *Finder) FindFiles(root, pattern string, excludes []string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid search pattern: %s", pattern)
	}
	for _, ex := range excludes {
		if !doublestar.ValidatePattern(ex) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", ex)
		}
	}

	// Clean and validate the root path
	root, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("workspace root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip hidden directories (starting with .)
			if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if !doublestar.MatchUnvalidated(pattern, rel) {
			return nil
		}
		for _, ex := range excludes {
			if doublestar.MatchUnvalidated(ex, rel) {
				f.logger.Debug("excluded", zap.String("file", rel), zap.String("glob", ex))
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", root, err)
	}

	f.logger.Debug("search finished", zap.String("pattern", pattern), zap.Int("files", len(files)))
	return files, nil
}
