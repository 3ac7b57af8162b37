// Package config loads the adocxref YAML configuration.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/adocxref/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "adocxref.yaml"

// Config is the complete tool configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Xref    XrefConfig    `yaml:"xref"`
	Orphans OrphansConfig `yaml:"orphans"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Export  ExportConfig  `yaml:"export"`
	Watch   WatchConfig   `yaml:"watch"`
}

// SourceConfig selects where content is read from. Dir and Git are
// mutually exclusive.
type SourceConfig struct {
	Dir      string `yaml:"dir,omitempty"`      // Content tree on disk
	Git      string `yaml:"git,omitempty"`      // Path of a git repository
	Revision string `yaml:"revision,omitempty"` // Revision read from Git
}

// OutputConfig controls where modified documents are written.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean"` // Remove Dir before writing
}

// XrefConfig selects the rewrite passes.
type XrefConfig struct {
	LocalToGlobal  bool   `yaml:"local_to_global"`
	AlternateStyle string `yaml:"alternate_style"` // full|short|basic, empty disables the style pass
	Loft           bool   `yaml:"loft"`
}

// OrphansConfig controls the orphan page check.
type OrphansConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Exceptions []string `yaml:"exceptions,omitempty"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables Prometheus metrics written to a textfile.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile,omitempty"`
}

// ExportConfig enables the SQLite anchor export.
type ExportConfig struct {
	SQLite string `yaml:"sqlite,omitempty"`
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DebounceDuration returns the parsed debounce, or the default when the
// value does not parse.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// Load reads, expands, normalizes, defaults and validates the file at
// configPath. .env files next to it are loaded first so that ${VAR}
// references can use them.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFiles(filepath.Dir(configPath)); err != nil {
		slog.Warn("Could not load .env file", slog.String("error", err.Error()))
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "read configuration").
			WithContext("path", configPath).
			Build()
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML that has already been expanded.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "decode configuration").Build()
	}
	for _, w := range Normalize(cfg).Warnings {
		slog.Warn("Config normalization", slog.String("detail", w))
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create configuration directory").
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write configuration").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

const exampleConfig = `# adocxref configuration
source:
  # Antora content tree containing antora.yml files
  dir: .
  # Alternatively read a git repository at a revision:
  # git: /path/to/repo
  # revision: HEAD

output:
  dir: build/adocxref
  clean: false

xref:
  local_to_global: true
  # full, short or basic; leave empty to keep xrefs untouched
  alternate_style: ""
  loft: false

orphans:
  enabled: true
  exceptions: []

logging:
  level: info
  format: text

metrics:
  enabled: false
  # textfile: /var/lib/node_exporter/adocxref.prom

export:
  # sqlite: build/anchors.db

watch:
  debounce: 300ms
`
