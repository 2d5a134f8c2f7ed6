package cli

import "ptc/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ProjectPath: f.ProjectPath,
		ConfigFile:  f.ConfigFile,
		NameFilter:  f.NameFilter,
		TestCases:   f.TestCases,
		FailFast:    f.FailFast,
		OnlyFailed:  f.OnlyFailed,
		Order:       f.Order,
		Iterations:  f.Iterations,
		Checker:     f.Checker,
		HistoryDSN:  f.HistoryDSN,
		Limit:       f.Limit,
		Verbose:     f.Verbose,
		NoProgress:  f.NoProgress,
		RunOnChange: f.RunOnChange,
	}
}
