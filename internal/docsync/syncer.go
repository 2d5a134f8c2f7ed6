// Package docsync keeps the test tree in step with test declaration files.
package docsync

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ptc/internal/config"
	"ptc/internal/discovery"
	"ptc/internal/tree"
)

// FileSearcher finds files relative to a workspace root
type FileSearcher interface {
	FindFiles(root, pattern string, excludes []string) ([]string, error)
}

// Syncer reconciles file nodes against document contents
type Syncer struct {
	config  *config.Config
	tree    *tree.Tree
	scanner *discovery.LineScanner
	logger  *zap.Logger
}

// NewSyncer creates a new Syncer
func NewSyncer(cfg *config.Config, tr *tree.Tree, scanner *discovery.LineScanner, logger *zap.Logger) *Syncer {
	return &Syncer{
		config:  cfg,
		tree:    tr,
		scanner: scanner,
		logger:  logger.Named("docsync"),
	}
}

// Tree returns the tree the syncer maintains
func (s *Syncer) Tree() *tree.Tree {
	return s.tree
}

// Qualifies reports whether doc is a file under the test folder with the
// test file extension, returning its path.
func (s *Syncer) Qualifies(doc Document) (string, bool) {
	path, ok := doc.filePath()
	if !ok {
		return "", false
	}
	if !strings.HasSuffix(path, s.config.Extension) {
		return "", false
	}
	for _, segment := range strings.Split(filepath.ToSlash(filepath.Dir(path)), "/") {
		if segment == s.config.TestFolder {
			return path, true
		}
	}
	return "", false
}

// Update re-parses a changed document and replaces its file node's cases.
// It returns the file node, or nil when the document does not qualify or
// declares no tests.
func (s *Syncer) Update(doc Document) *tree.Node {
	path, ok := s.Qualifies(doc)
	if !ok {
		return nil
	}

	cases := s.parse(doc.Text)
	node := s.tree.Reconcile(doc.URI, filepath.Base(path), path, cases)

	if node == nil {
		s.logger.Debug("file has no tests", zap.String("file", path))
	} else {
		s.logger.Debug("file synced", zap.String("file", path), zap.Int("cases", len(cases)))
	}
	return node
}

// Delete prunes the file node of a document about to be removed.
func (s *Syncer) Delete(doc Document) {
	path, ok := s.Qualifies(doc)
	if !ok {
		return
	}
	s.tree.Reconcile(doc.URI, filepath.Base(path), path, nil)
	s.logger.Debug("file removed", zap.String("file", path))
}

func (s *Syncer) parse(text string) []*tree.Node {
	var cases []*tree.Node
	for decl := range s.scanner.Scan(text) {
		cases = append(cases, tree.NewCase(strconv.Itoa(decl.Range.Start.Line), decl.Name, decl.Range))
	}
	return cases
}

// Discover searches the workspace for test files and syncs each one.
// Files are read concurrently; unreadable files are skipped.
// It returns the number of file nodes in the tree.
func (s *Syncer) Discover(ctx context.Context, finder FileSearcher) (int, error) {
	files, err := finder.FindFiles(s.config.GetProjectPath(), s.config.GetSearchPattern(), s.config.ExcludeGlobs)
	if err != nil {
		return 0, fmt.Errorf("discover test files: %w", err)
	}

	docs := make([]Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := ReadDocument(file)
			if err != nil {
				s.logger.Warn("skipping unreadable test file", zap.String("file", file), zap.Error(err))
				return nil
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for _, doc := range docs {
		if doc.URI != "" {
			s.Update(doc)
		}
	}
	return s.tree.Len(), nil
}
