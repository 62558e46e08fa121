// Package config loads the optional safecrab YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/safecrab/safecrab/internal/engine"
	"github.com/safecrab/safecrab/internal/shell"
	"go.yaml.in/yaml/v3"
)

// Config is the file-backed scan configuration. Zero values mean "use the
// built-in default".
type Config struct {
	Timeout           Duration             `yaml:"timeout"`
	HighRiskProcesses []string             `yaml:"high_risk_processes"`
	PortProfiles      []engine.PortProfile `yaml:"port_profiles"`
	VPNInterface      string               `yaml:"vpn_interface"`
}

// Duration decodes Go duration strings such as "5s" or "1m30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

var ErrInvalidConfig = errors.New("invalid config")

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{Timeout: Duration(shell.DefaultTimeout)}
}

// CommandTimeout returns the per-command timeout, falling back to the
// default when unset.
func (c Config) CommandTimeout() time.Duration {
	if c.Timeout <= 0 {
		return shell.DefaultTimeout
	}
	return time.Duration(c.Timeout)
}

// Validate rejects values that would make the scan meaningless.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	for i, p := range c.PortProfiles {
		if p.Port == 0 {
			return fmt.Errorf("%w: port_profiles[%d]: port is required", ErrInvalidConfig, i)
		}
		if strings.TrimSpace(p.Recommendation) == "" {
			return fmt.Errorf("%w: port_profiles[%d]: recommendation is required", ErrInvalidConfig, i)
		}
	}
	for i, name := range c.HighRiskProcesses {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: high_risk_processes[%d] is empty", ErrInvalidConfig, i)
		}
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/safecrab/config.yaml, or
// ~/.config/safecrab/config.yaml when XDG_CONFIG_HOME is unset.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "safecrab", "config.yaml")
}

// Load reads the config at path. An empty path means the default location,
// where a missing file is not an error. A missing explicit file is.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config bytes on top of the defaults. Unknown keys are
// rejected so typos surface.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
