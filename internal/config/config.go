// Package config loads and validates the optional .launcher.yaml file and
// the LAUNCHER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/deixis/launcher/internal/log"
)

// FileName is the configuration file looked up in the config directory.
const FileName = ".launcher.yaml"

// Environment variables that override the file.
const (
	EnvExecutable = "LAUNCHER_EXECUTABLE"
	EnvTimeout    = "LAUNCHER_TIMEOUT"
	EnvLogLevel   = "LAUNCHER_LOG_LEVEL"
)

// DefaultHistoryCache is the number of reports kept in memory by the MCP server.
const DefaultHistoryCache = 16

// ErrNoExecutable is returned by RequireExecutable when no launch target is configured.
var ErrNoExecutable = errors.New("no executable configured")

// Config holds the parsed .launcher.yaml configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int           `yaml:"version"`
	Executable   string        `yaml:"executable"` // path of the game build to launch
	RawTimeout   string        `yaml:"timeout"`    // e.g. "30m"; empty means none
	RawMaxOutput int           `yaml:"max_output"` // bytes per stream; 0 means unlimited
	LogLevel     string        `yaml:"log_level"`
	History      HistoryConfig `yaml:"history"`
}

// HistoryConfig controls where launch reports are kept.
type HistoryConfig struct {
	Disabled bool   `yaml:"disabled"`
	Dir      string `yaml:"dir"`   // default: <user cache dir>/launcher/runs
	Cache    int    `yaml:"cache"` // in-memory LRU entries
}

// Timeout returns the configured timeout, or 0 for none.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.RawTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// MaxOutputBytes returns the per-stream capture limit, or 0 for unlimited.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return 0
}

// HistoryCache returns the configured LRU size or the default.
func (c *Config) HistoryCache() int {
	if c.History.Cache > 0 {
		return c.History.Cache
	}
	return DefaultHistoryCache
}

// HistoryDir returns the directory launch reports are written to.
// An empty result means the store should pick a temporary directory.
func (c *Config) HistoryDir() string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cache, "launcher", "runs")
}

// Validate reports malformed values.
func (c *Config) Validate() error {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.RawTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid timeout %q: must not be negative", c.RawTimeout)
		}
	}
	if c.RawMaxOutput < 0 {
		return fmt.Errorf("invalid max_output %d: must not be negative", c.RawMaxOutput)
	}
	if c.History.Cache < 0 {
		return fmt.Errorf("invalid history.cache %d: must not be negative", c.History.Cache)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// RequireExecutable returns the launch target or ErrNoExecutable.
// It does not check that the file exists; that is left to the OS at spawn time.
func (c *Config) RequireExecutable() (string, error) {
	if c.Executable == "" {
		return "", fmt.Errorf("%w: set executable in %s or %s", ErrNoExecutable, FileName, EnvExecutable)
	}
	return c.Executable, nil
}

// LoadResult holds the parsed config and where it came from.
type LoadResult struct {
	Config *Config
	Path   string // config file path; empty if no file was found
}

// Load reads FileName from dir on fsys and applies environment overrides
// from getenv. A missing file yields a default Config. A relative executable
// in the file is resolved against dir.
func Load(fsys afero.Fs, dir string, getenv func(string) string) (*LoadResult, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := &Config{}
	path := filepath.Join(dir, FileName)
	data, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", FileName, err)
		}
		if cfg.Executable != "" && !filepath.IsAbs(cfg.Executable) {
			cfg.Executable = filepath.Join(dir, cfg.Executable)
		}
	case errors.Is(err, os.ErrNotExist):
		path = ""
	default:
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	applyEnv(cfg, getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LoadResult{Config: cfg, Path: path}, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvExecutable); v != "" {
		cfg.Executable = v
	}
	if v := getenv(EnvTimeout); v != "" {
		cfg.RawTimeout = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
}
