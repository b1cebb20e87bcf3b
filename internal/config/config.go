// Package config reads and writes searchpat configuration.
// Supports both global (~/.searchpat/config.yaml) and local
// (.searchpat/config.yaml). Reading uses local if it exists, otherwise
// global. Writing defaults to global; --local selects local.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoConfigPath is returned when the config path cannot be determined.
	ErrNoConfigPath = errors.New("cannot determine config path")
	// ErrUnknownKey is returned when getting/setting an unknown config key.
	ErrUnknownKey = errors.New("unknown config key")
	// ErrInvalidValue is returned when a config value is invalid.
	ErrInvalidValue = errors.New("invalid config value")
)

// DirEnv overrides the directory holding the global config and history.
const DirEnv = "SEARCHPAT_CONFIG_DIR"

// Scope represents the configuration scope (global or local).
type Scope int

const (
	// ScopeGlobal is user-wide config in ~/.searchpat/config.yaml (default)
	ScopeGlobal Scope = iota
	// ScopeLocal is project-specific config in .searchpat/config.yaml
	ScopeLocal
)

// Search holds defaults for the search flags.
type Search struct {
	Types     []string `yaml:"types,omitempty"`
	Workers   *int     `yaml:"workers,omitempty"`
	MaxLength *int     `yaml:"max_length,omitempty"`
	Exclude   []string `yaml:"exclude,omitempty"`
	Hidden    *bool    `yaml:"hidden,omitempty"`
}

// History holds run history options.
type History struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// Limits holds size limit configuration options.
type Limits struct {
	MaxLineLength *int `yaml:"max_line_length,omitempty"`
}

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Default limits applied when not configured.
const (
	DefaultMaxLineLength = 10 * 1024 * 1024 // 10 MB
)

// Validation bounds for configuration values.
const (
	MinMaxLineLength = 1
	MaxMaxLineLength = 1024 * 1024 * 1024 // 1 GB
	MaxWorkers       = 4096
)

// Config contains configuration for searchpat.
type Config struct {
	Search  Search  `yaml:"search,omitempty"`
	Color   string  `yaml:"color,omitempty"`
	History History `yaml:"history,omitempty"`
	Limits  Limits  `yaml:"limits,omitempty"`

	// path is the file this config was loaded from (for Save)
	path  string
	scope Scope
}

// Validate checks that all configured values are within acceptable bounds.
// Returns nil if all values are valid or not set (defaults will be used).
func (c *Config) Validate() error {
	if c.Search.Workers != nil {
		v := *c.Search.Workers
		if v < 0 || v > MaxWorkers {
			return fmt.Errorf("%w: search.workers must be between 0 and %d, got %d",
				ErrInvalidValue, MaxWorkers, v)
		}
	}
	if c.Search.MaxLength != nil && *c.Search.MaxLength < 0 {
		return fmt.Errorf("%w: search.max_length must not be negative, got %d",
			ErrInvalidValue, *c.Search.MaxLength)
	}
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q",
			ErrInvalidValue, c.Color)
	}
	if c.Limits.MaxLineLength != nil {
		v := *c.Limits.MaxLineLength
		if v < MinMaxLineLength || v > MaxMaxLineLength {
			return fmt.Errorf("%w: max_line_length must be between %d and %d, got %d",
				ErrInvalidValue, MinMaxLineLength, MaxMaxLineLength, v)
		}
	}
	return nil
}

// Types returns the configured extension allow-list, or nil when unset.
func (c *Config) Types() []string {
	return c.Search.Types
}

// Workers returns the worker pool size (defaults to the number of CPUs).
func (c *Config) Workers() int {
	if c.Search.Workers == nil {
		return runtime.NumCPU()
	}
	return *c.Search.Workers
}

// MaxLength returns the long-line cutoff (defaults to 0, disabled).
func (c *Config) MaxLength() int {
	if c.Search.MaxLength == nil {
		return 0
	}
	return *c.Search.MaxLength
}

// Exclude returns extra exclude globs.
func (c *Config) Exclude() []string {
	return c.Search.Exclude
}

// Hidden returns whether hidden files are searched (defaults to false).
func (c *Config) Hidden() bool {
	return c.Search.Hidden != nil && *c.Search.Hidden
}

// ColorMode returns the colour mode (defaults to auto).
func (c *Config) ColorMode() string {
	if c.Color == "" {
		return ColorAuto
	}
	return c.Color
}

// HistoryEnabled returns whether runs are recorded (defaults to true).
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// MaxLineLength returns the maximum line length for scanning (defaults to 10 MB).
// Longer lines, typically minified bundles or base64 blobs, make the file
// count as skipped.
func (c *Config) MaxLineLength() int {
	if c.Limits.MaxLineLength == nil {
		return DefaultMaxLineLength
	}
	return *c.Limits.MaxLineLength
}

// LocalPath returns the path to the local (project) config file.
func LocalPath() string {
	return filepath.Join(".searchpat", "config.yaml")
}

// Dir returns the global searchpat directory: $SEARCHPAT_CONFIG_DIR or
// ~/.searchpat. Returns "" when neither can be determined.
func Dir() string {
	if d := os.Getenv(DirEnv); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".searchpat")
}

// GlobalPath returns the path to the global (user) config file.
func GlobalPath() string {
	dir := Dir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads configuration: uses local if it exists, otherwise global.
func Load() (*Config, error) {
	if _, err := os.Stat(LocalPath()); err == nil {
		return LoadScope(ScopeLocal)
	}
	return LoadScope(ScopeGlobal)
}

// LoadScope reads configuration from a specific scope.
func LoadScope(scope Scope) (*Config, error) {
	path := pathForScope(scope)
	if path == "" {
		return &Config{scope: scope}, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path, scope: scope}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed config file %s: %w\n\nTo fix: edit the file to correct the YAML syntax, or delete it to use defaults", path, err)
	}
	cfg.path = path
	cfg.scope = scope

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Scope returns which scope this config was loaded from.
func (c *Config) Scope() Scope {
	return c.scope
}

// Path returns the file this config was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// SaveScope writes the configuration to the specified scope.
func (c *Config) SaveScope(scope Scope) error {
	path := pathForScope(scope)
	if path == "" {
		return ErrNoConfigPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	c.path, c.scope = path, scope
	return nil
}

func pathForScope(scope Scope) string {
	switch scope {
	case ScopeLocal:
		return LocalPath()
	case ScopeGlobal:
		return GlobalPath()
	default:
		return ""
	}
}
