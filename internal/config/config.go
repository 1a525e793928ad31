// Package config loads the winbridge client configuration from
// ~/.config/winbridge/config.yaml. Unknown keys are rejected so typos
// fail loudly instead of being silently ignored.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ValidationError reports an invalid configuration value with the YAML
// path that holds it.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// WindowDefaults are the creation options applied when the CLI creates
// a window without explicit flags.
type WindowDefaults struct {
	Title  string  `yaml:"title,omitempty"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	Theme  string  `yaml:"theme,omitempty"`
}

// MonitorSpec describes one simulated monitor for the embedded host.
type MonitorSpec struct {
	Name        string  `yaml:"name"`
	ScaleFactor float64 `yaml:"scale_factor"`
	X           int     `yaml:"x"`
	Y           int     `yaml:"y"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
}

// Config holds the client configuration.
type Config struct {
	// SocketPath overrides the runtime-dir socket lookup when set.
	SocketPath string `yaml:"socket_path,omitempty"`
	// TimeoutSeconds bounds each command round trip.
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	LogLevel       string `yaml:"log_level"`

	DefaultWindow WindowDefaults `yaml:"default_window,omitempty"`

	// SimMonitors configures the embedded host simulator. Empty means
	// one 1920x1080 monitor at scale factor 1.
	SimMonitors []MonitorSpec `yaml:"sim_monitors,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		TimeoutSeconds: 5,
		LogLevel:       "info",
		DefaultWindow: WindowDefaults{
			Width:  800,
			Height: 600,
		},
	}
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winbridge", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing
// file yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads the configuration from an explicit path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the standard location.
func (c *Config) Save() error {
	if err := c.Validate(); err != nil {
		return err
	}

	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return &ValidationError{Path: "timeout_seconds", Err: fmt.Errorf("timeout_seconds must be > 0")}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.DefaultWindow.Width < 0 || c.DefaultWindow.Height < 0 {
		return &ValidationError{Path: "default_window", Err: fmt.Errorf("width and height must be >= 0")}
	}
	switch c.DefaultWindow.Theme {
	case "", "light", "dark":
	default:
		return &ValidationError{Path: "default_window.theme", Err: fmt.Errorf("theme must be light or dark")}
	}
	for i, m := range c.SimMonitors {
		path := fmt.Sprintf("sim_monitors[%d]", i)
		if m.Name == "" {
			return &ValidationError{Path: path + ".name", Err: fmt.Errorf("name is required")}
		}
		if m.ScaleFactor <= 0 {
			return &ValidationError{Path: path + ".scale_factor", Err: fmt.Errorf("scale_factor must be > 0")}
		}
		if m.Width <= 0 || m.Height <= 0 {
			return &ValidationError{Path: path, Err: fmt.Errorf("width and height must be > 0")}
		}
	}
	return nil
}
