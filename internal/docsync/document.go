package docsync

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Document is a text buffer identified by a URI. Files on disk use the
// file scheme; unsaved editor buffers carry other schemes (untitled:).
type Document struct {
	URI  string
	Text string
}

// FileURI returns the file URI for a filesystem path
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}

// ReadDocument loads a file from disk as a Document
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("error reading file %s: %w", path, err)
	}
	return Document{URI: FileURI(path), Text: string(data)}, nil
}

// filePath returns the filesystem path of a file-scheme document
func (d Document) filePath() (string, bool) {
	u, err := url.Parse(d.URI)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}
