package storage

import (
	"path/filepath"

	"ptc/internal/config"
	"ptc/internal/domain"
)

// Storage persists and loads the last run report (e.g. for the faills viewer).
type Storage interface {
	Save(report *domain.Report) error
	Load() (*domain.Report, error)
}

// JSONStorage stores the report in a JSON file under the configured state path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's report path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// FileKey returns the key used to match a test file across runs
func FileKey(file string) string {
	return filepath.ToSlash(filepath.Clean(file))
}

// CaseKey returns the key used to match a test case across runs
func CaseKey(file, label string) string {
	return FileKey(file) + "::" + label
}

// NotPassedSet returns the file and case keys of the entries that did not pass
// in report. A nil report yields an empty set.
func NotPassedSet(report *domain.Report) map[string]struct{} {
	set := make(map[string]struct{})
	if report == nil {
		return set
	}
	for _, e := range report.NotPassed() {
		set[FileKey(e.File)] = struct{}{}
		set[CaseKey(e.File, e.Label)] = struct{}{}
	}
	return set
}
