// Package config loads the scanner configuration.
//
// Defaults are embedded at build time; a YAML file named by FORKVULN_CONFIG
// may override any subset of keys. Nothing is taken from command line flags.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/ortelius/forkpoint-cves/util"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// EnvConfigFile names the optional override file
const EnvConfigFile = "FORKVULN_CONFIG"

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the settings shared by both stages
type Config struct {
	Catalog  CatalogConfig `yaml:"catalog"`
	OSV      OSVConfig     `yaml:"osv"`
	HTTP     HTTPConfig    `yaml:"http"`
	Retry    RetryConfig   `yaml:"retry"`
	Workers  WorkerConfig  `yaml:"workers"`
	Matcher  MatcherConfig `yaml:"matcher"`
	Files    FilesConfig   `yaml:"files"`
	Log      LogConfig     `yaml:"log"`
	Progress bool          `yaml:"progress"`
}

// CatalogConfig configures the paginated catalog API
type CatalogConfig struct {
	URL       string        `yaml:"url"`
	PageDelay time.Duration `yaml:"page_delay"`
}

// OSVConfig configures the vulnerability database API
type OSVConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig configures the shared HTTP client
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig configures exponential backoff for transient failures
type RetryConfig struct {
	MaxRetries uint64        `yaml:"max_retries"`
	BaseDelay  time.Duration `yaml:"base_delay"`
}

// WorkerConfig configures the stage 2 worker pool
type WorkerConfig struct {
	Lanes int `yaml:"lanes"`
}

// MatcherConfig selects the version comparator used for range matching
type MatcherConfig struct {
	EcosystemVersions bool `yaml:"ecosystem_versions"`
}

// FilesConfig names the flat files written and read by the stages
type FilesConfig struct {
	ForkPoints string `yaml:"fork_points"`
	Results    string `yaml:"results"`
	Summary    string `yaml:"summary"`
}

// LogConfig configures zap
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the embedded defaults
func Default() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults overlaid with the file named by FORKVULN_CONFIG, if set
func Load(fs afero.Fs) (*Config, error) {
	return LoadFrom(fs, util.GetEnvDefault(EnvConfigFile, ""))
}

// LoadFrom returns the defaults overlaid with the YAML file at path.
// An empty path yields the defaults.
func LoadFrom(fs afero.Fs, path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at run time
func (c *Config) Validate() error {
	var errs []error
	if util.IsEmpty(c.Catalog.URL) {
		errs = append(errs, errors.New("catalog.url is required"))
	}
	if util.IsEmpty(c.OSV.URL) {
		errs = append(errs, errors.New("osv.url is required"))
	}
	if c.Workers.Lanes < 1 {
		errs = append(errs, fmt.Errorf("workers.lanes must be >= 1, got %d", c.Workers.Lanes))
	}
	if c.Retry.BaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("retry.base_delay must be positive, got %s", c.Retry.BaseDelay))
	}
	if c.Catalog.PageDelay < 0 {
		errs = append(errs, fmt.Errorf("catalog.page_delay must not be negative, got %s", c.Catalog.PageDelay))
	}
	if util.IsEmpty(c.Files.ForkPoints) || util.IsEmpty(c.Files.Results) || util.IsEmpty(c.Files.Summary) {
		errs = append(errs, errors.New("files.fork_points, files.results and files.summary are required"))
	}
	return errors.Join(errs...)
}
