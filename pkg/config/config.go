// Package config handles loading and saving netview configuration.
//
// A configuration file carries the two records the viewer is driven by: the
// load arguments (where the matrices, node data, names and linkage live, and
// how to threshold them) and the display settings. Relative source paths are
// resolved against the directory of the file they were read from.
//
// User-level files follow the XDG Base Directory specification:
//   - Config:  ~/.config/netview/config.yaml
//   - State:   ~/.local/state/netview/ (saved snapshots)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var validate = validator.New()

// Config is the top-level configuration.
type Config struct {
	Load    LoadArgs `yaml:"load"`
	Display Display  `yaml:"display"`
}

// DefaultConfig returns a Config with sensible defaults. It names no data
// sources, so it does not validate until matrices are added.
func DefaultConfig() Config {
	return Config{
		Load:    DefaultLoadArgs(),
		Display: DefaultDisplay(),
	}
}

// Validate checks both records.
func (c Config) Validate() error {
	if err := c.Load.Validate(); err != nil {
		return err
	}
	return c.Display.Validate()
}

// xdgDir returns $env/netview, or ~/<fallback>/netview when env is unset.
// It is empty when neither is available.
func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, "netview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{home}, fallback...), "netview")...)
}

// ConfigDir is where config.yaml lives.
func ConfigDir() string { return xdgDir("XDG_CONFIG_HOME", ".config") }

// StateDir holds the log file and saved snapshots.
func StateDir() string { return xdgDir("XDG_STATE_HOME", ".local", "state") }

// SnapshotDir is where snapshots are written when no path is given.
func SnapshotDir() string {
	if dir := StateDir(); dir != "" {
		return filepath.Join(dir, "snapshots")
	}
	return "."
}

// ConfigPath returns the user config file, or "" without a home directory.
func ConfigPath() string {
	if dir := ConfigDir(); dir != "" {
		return filepath.Join(dir, "config.yaml")
	}
	return ""
}

// LoadFrom reads the config at path over DefaultConfig and resolves
// relative sources against the file's directory. A missing file yields
// the defaults. The result is not validated.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Load = cfg.Load.ResolvePaths(filepath.Dir(path))
	return cfg, nil
}

// SaveTo writes cfg as YAML, creating the directory.
func SaveTo(cfg Config, path string) error {
	if path == "" {
		return fmt.Errorf("no config path")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// structError turns validator output into one ErrInvalidConfig error naming
// the first offending field.
func structError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s is required", ErrInvalidConfig, e.Namespace())
	case "min", "gte":
		return fmt.Errorf("%w: %s must be at least %s", ErrInvalidConfig, e.Namespace(), e.Param())
	case "gt":
		return fmt.Errorf("%w: %s must be greater than %s", ErrInvalidConfig, e.Namespace(), e.Param())
	default:
		return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, e.Namespace(), e.Tag())
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
