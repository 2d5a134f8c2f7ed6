package config

import (
	"fmt"
	"path"
	"path/filepath"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Workspace settings
	ProjectPath  string
	TestFolder   string
	FilePattern  string
	Extension    string
	Keyword      string
	ExcludeGlobs []string

	// Checker settings
	Checker     string
	Iterations  int
	OutputDir   string
	LogFile     string
	Shell       string
	CaseTimeout time.Duration

	// Run settings
	ReservedChannel string
	Order           string

	// Persistence settings
	StateDir   string
	ReportFile string
	HistoryDSN string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	ProjectPath string
	ConfigFile  string
	NameFilter  string
	TestCases   bool
	FailFast    bool
	OnlyFailed  bool
	Order       string
	Iterations  int
	Checker     string
	HistoryDSN  string
	Limit       int
	Verbose     bool
	NoProgress  bool
	RunOnChange bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:     DefaultProjectPath,
		TestFolder:      DefaultTestFolder,
		FilePattern:     DefaultFilePattern,
		Extension:       DefaultExtension,
		Keyword:         DefaultKeyword,
		Checker:         DefaultChecker,
		Iterations:      DefaultIterations,
		OutputDir:       DefaultOutputDir,
		LogFile:         DefaultLogFile,
		Shell:           DefaultShell,
		CaseTimeout:     DefaultCaseTimeout,
		ReservedChannel: DefaultReservedChannel,
		Order:           DefaultOrder,
		StateDir:        DefaultStateDir,
		ReportFile:      DefaultReportFile,
	}
	cfg.ExcludeGlobs = make([]string, len(DefaultExcludeGlobs))
	copy(cfg.ExcludeGlobs, DefaultExcludeGlobs)
	return cfg
}

// ApplyFlags copies flag overrides onto the config
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags

	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	if flags.Iterations > 0 {
		c.Iterations = flags.Iterations
	}
	if flags.Checker != "" {
		c.Checker = flags.Checker
	}
	if flags.Order != "" {
		c.Order = flags.Order
	}
	if flags.HistoryDSN != "" {
		c.HistoryDSN = flags.HistoryDSN
	}
}

// Validate checks values that cannot be expressed as defaults
func (c *Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Order != OrderDeclaration && c.Order != OrderLIFO {
		return fmt.Errorf("unknown run order %q (want %q or %q)", c.Order, OrderDeclaration, OrderLIFO)
	}
	if c.Checker == "" {
		return fmt.Errorf("checker binary must not be empty")
	}
	return nil
}

// GetProjectPath returns the absolute workspace root
func (c *Config) GetProjectPath() string {
	if abs, err := filepath.Abs(c.ProjectPath); err == nil {
		return abs
	}
	return c.ProjectPath
}

// GetSearchPattern returns the test file pattern relative to the workspace root
func (c *Config) GetSearchPattern() string {
	return path.Join(c.TestFolder, c.FilePattern)
}

// GetCaseOutputDir returns the checker output directory for a case, relative to the workspace root
func (c *Config) GetCaseOutputDir(label string) string {
	return path.Join(c.OutputDir, label)
}

// GetCaseLogFile returns the checker log for a case, relative to the workspace root
func (c *Config) GetCaseLogFile(label string) string {
	return path.Join(c.GetCaseOutputDir(label), c.LogFile)
}

// GetReportPath returns the full path to the last report file.
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetReportPath() string {
	p := filepath.Join(c.ProjectPath, c.StateDir, c.ReportFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetConfigFilePath returns the YAML config file to read
func (c *Config) GetConfigFilePath() string {
	if c.Flags.ConfigFile != "" {
		return c.Flags.ConfigFile
	}
	return filepath.Join(c.ProjectPath, DefaultConfigFile)
}
