package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Environment variables read after the config file
const (
	EnvChecker    = "PTC_CHECKER"
	EnvIterations = "PTC_ITERATIONS"
	EnvExclude    = "PTC_EXCLUDE"
	EnvHistory    = "PTC_HISTORY_DSN"
)

//go:embed schema.json
var schemaData []byte

var (
	fileSchema  *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// FileConfig is the shape of ptc.yaml
type FileConfig struct {
	Checker     string   `yaml:"checker,omitempty"`
	Iterations  int      `yaml:"iterations,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
	TestFolder  string   `yaml:"test_folder,omitempty"`
	FilePattern string   `yaml:"file_pattern,omitempty"`
	OutputDir   string   `yaml:"output_dir,omitempty"`
	Shell       string   `yaml:"shell,omitempty"`
	CaseTimeout string   `yaml:"case_timeout,omitempty"`
	Order       string   `yaml:"order,omitempty"`
	History     string   `yaml:"history,omitempty"`
}

// Load creates a config from defaults, the YAML file, the environment and flags,
// in that order of precedence (flags win).
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Reload(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reload resets the config to defaults and applies every layer again.
func (c *Config) Reload(flags Flags) error {
	*c = *New()
	// project path decides where the file and .env are looked up
	if flags.ProjectPath != "" {
		c.ProjectPath = flags.ProjectPath
	}
	c.Flags = flags

	if err := c.applyFile(c.GetConfigFilePath(), flags.ConfigFile != ""); err != nil {
		return err
	}
	if err := c.applyEnv(); err != nil {
		return err
	}
	c.ApplyFlags(flags)
	return c.Validate()
}

func (c *Config) applyFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := ValidateFile(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return c.applyFileConfig(fc)
}

func (c *Config) applyFileConfig(fc FileConfig) error {
	if fc.Checker != "" {
		c.Checker = fc.Checker
	}
	if fc.Iterations > 0 {
		c.Iterations = fc.Iterations
	}
	if len(fc.Exclude) > 0 {
		c.ExcludeGlobs = fc.Exclude
	}
	if fc.TestFolder != "" {
		c.TestFolder = fc.TestFolder
	}
	if fc.FilePattern != "" {
		c.FilePattern = fc.FilePattern
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.Shell != "" {
		c.Shell = fc.Shell
	}
	if fc.CaseTimeout != "" {
		d, err := time.ParseDuration(fc.CaseTimeout)
		if err != nil {
			return fmt.Errorf("invalid case_timeout: %w", err)
		}
		c.CaseTimeout = d
	}
	if fc.Order != "" {
		c.Order = fc.Order
	}
	if fc.History != "" {
		c.HistoryDSN = fc.History
	}
	return nil
}

func (c *Config) applyEnv() error {
	// .env is optional, real environment variables take precedence over it
	_ = godotenv.Load(filepath.Join(c.ProjectPath, ".env"))

	if v := os.Getenv(EnvChecker); v != "" {
		c.Checker = v
	}
	if v := os.Getenv(EnvIterations); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvIterations, err)
		}
		c.Iterations = n
	}
	if v := os.Getenv(EnvExclude); v != "" {
		var globs []string
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				globs = append(globs, g)
			}
		}
		c.ExcludeGlobs = globs
	}
	if v := os.Getenv(EnvHistory); v != "" {
		c.HistoryDSN = v
	}
	return nil
}

func compileSchema() error {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaData))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal config schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("ptc.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("add config schema resource: %w", err)
			return
		}
		fileSchema, err = compiler.Compile("ptc.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile config schema: %w", err)
		}
	})
	return compileErr
}

// ValidateFile validates YAML config data against the embedded schema.
func ValidateFile(data []byte) error {
	if err := compileSchema(); err != nil {
		return err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("convert config to JSON: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("convert config to JSON: %w", err)
	}

	if err := fileSchema.Validate(inst); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
