package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"ptc/internal/config"
	"ptc/internal/discovery"
	"ptc/internal/docsync"
	"ptc/internal/domain"
	"ptc/internal/storage"
	"ptc/internal/tree"
)

// resolveTargets maps command-line arguments to tree nodes. An argument
// names a test file (path relative to the workspace, absolute path or base
// name), a test case label, or a case within a file as "File.p:Case".
// No arguments selects every file node.
func resolveTargets(cfg *config.Config, tr *tree.Tree, args []string) ([]*tree.Node, error) {
	files := tr.Files()
	if len(args) == 0 {
		return files, nil
	}

	var nodes []*tree.Node
	for _, arg := range args {
		matched := resolveTarget(cfg, tr, files, arg)
		if len(matched) == 0 {
			return nil, fmt.Errorf("no test file or test case matches %q", arg)
		}
		nodes = append(nodes, matched...)
	}
	return nodes, nil
}

func resolveTarget(cfg *config.Config, tr *tree.Tree, files []*tree.Node, arg string) []*tree.Node {
	if file, label, ok := strings.Cut(arg, ":"); ok && strings.HasSuffix(file, cfg.Extension) {
		var out []*tree.Node
		for _, f := range matchFiles(cfg, tr, files, file) {
			for _, c := range f.Children() {
				if c.Label == label {
					out = append(out, c)
				}
			}
		}
		return out
	}

	if matched := matchFiles(cfg, tr, files, arg); len(matched) > 0 {
		return matched
	}

	var out []*tree.Node
	for _, f := range files {
		for _, c := range f.Children() {
			if c.Label == arg {
				out = append(out, c)
			}
		}
	}
	return out
}

func matchFiles(cfg *config.Config, tr *tree.Tree, files []*tree.Node, arg string) []*tree.Node {
	path := arg
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.GetProjectPath(), path)
	}
	if node, ok := tr.Get(docsync.FileURI(path)); ok {
		return []*tree.Node{node}
	}

	var out []*tree.Node
	for _, f := range files {
		if f.Label == arg {
			out = append(out, f)
		}
	}
	return out
}

// filterCases keeps the cases whose label or file name matches pattern
func filterCases(filter *discovery.Filter, cases []*tree.Node, pattern string) []*tree.Node {
	if pattern == "" {
		return cases
	}
	var out []*tree.Node
	for _, c := range cases {
		fileLabel := ""
		if p := c.Parent(); p != nil {
			fileLabel = p.Label
		}
		if filter.Match(c.Label, pattern) || filter.Match(fileLabel, pattern) {
			out = append(out, c)
		}
	}
	return out
}

// onlyNotPassed keeps the cases that did not pass in last
func onlyNotPassed(cases []*tree.Node, last *domain.Report) []*tree.Node {
	set := storage.NotPassedSet(last)
	var out []*tree.Node
	for _, c := range cases {
		if _, ok := set[storage.CaseKey(c.File, c.Label)]; ok {
			out = append(out, c)
		}
	}
	return out
}
