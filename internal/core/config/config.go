// Package config handles configuration loading and validation for tasq.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for values left empty in the config file.
const (
	DefaultBaseURL         = "http://localhost:5000/api"
	DefaultLoginURL        = "http://localhost:5000/login"
	DefaultCookieName      = "session"
	DefaultTimeout         = 30 * time.Second
	DefaultTheme           = "dark"
	DefaultScrollThreshold = 3
	DefaultRemovalDelay    = 639 * time.Millisecond
)

// Config holds the application configuration.
type Config struct {
	API     APIConfig `yaml:"api"`
	TUI     TUIConfig `yaml:"tui"`
	DataDir string    `yaml:"-"` // set by caller, not from config file
}

// APIConfig describes how to reach and authenticate against the task API.
type APIConfig struct {
	BaseURL       string        `yaml:"base_url"`
	LoginURL      string        `yaml:"login_url"`
	Token         string        `yaml:"token"` // bearer token, optional
	SessionCookie SessionCookie `yaml:"session_cookie"`
	Timeout       Duration      `yaml:"timeout"`
}

// SessionCookie is the name and value of the server session cookie.
type SessionCookie struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	Theme           string   `yaml:"theme"`
	ScrollThreshold int      `yaml:"scroll_threshold"` // rows from the bottom that trigger loading
	RemovalDelay    Duration `yaml:"removal_delay"`    // how long completed tasks stay visible
}

// Duration is a time.Duration that reads "30s" style strings from YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:       DefaultBaseURL,
			LoginURL:      DefaultLoginURL,
			SessionCookie: SessionCookie{Name: DefaultCookieName},
			Timeout:       Duration(DefaultTimeout),
		},
		TUI: TUIConfig{
			Theme:           DefaultTheme,
			ScrollThreshold: DefaultScrollThreshold,
			RemovalDelay:    Duration(DefaultRemovalDelay),
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.DataDir = dataDir

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}

			// Re-set dataDir since Unmarshal may have cleared it
			cfg.DataDir = dataDir
		}
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.LoginURL == "" {
		c.API.LoginURL = defaults.API.LoginURL
	}
	if c.API.SessionCookie.Name == "" {
		c.API.SessionCookie.Name = defaults.API.SessionCookie.Name
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.ScrollThreshold == 0 {
		c.TUI.ScrollThreshold = defaults.TUI.ScrollThreshold
	}
	if c.TUI.RemovalDelay == 0 {
		c.TUI.RemovalDelay = defaults.TUI.RemovalDelay
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}

	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}

	if c.TUI.ScrollThreshold < 0 {
		return fmt.Errorf("tui.scroll_threshold cannot be negative")
	}

	if c.TUI.RemovalDelay < 0 {
		return fmt.Errorf("tui.removal_delay cannot be negative")
	}

	return nil
}

// LogFile returns the default log file path inside the data directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "tasq.log")
}

// PrefsFile returns the path of the persisted UI preferences.
func (c *Config) PrefsFile() string {
	return filepath.Join(c.DataDir, "prefs.json")
}
