package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hay-kot/tasq/internal/client"
	"github.com/hay-kot/tasq/internal/core/config"
	"github.com/hay-kot/tasq/internal/core/prefs"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Overrides for the API section of the config file.
	BaseURL string
	Token   string
	Cookie  string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// Prefs holds the theme and the session saved by `tasq login`.
	Prefs prefs.Store
}

// Client builds an API client. Credentials from flags win over the stored
// login session, which wins over the config file.
func (f *Flags) Client(ctx context.Context) (*client.Client, error) {
	api := f.Config.API

	opts := client.Options{
		BaseURL:     api.BaseURL,
		Token:       api.Token,
		CookieName:  api.SessionCookie.Name,
		CookieValue: api.SessionCookie.Value,
		Timeout:     api.Timeout.Std(),
	}
	if f.BaseURL != "" {
		opts.BaseURL = f.BaseURL
	}

	if f.Prefs != nil {
		p, err := f.Prefs.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load prefs: %w", err)
		}
		if !p.Session.IsZero() {
			opts.Token, opts.CookieValue = p.Session.Token, p.Session.Cookie
		}
	}

	if f.Token != "" || f.Cookie != "" {
		opts.Token, opts.CookieValue = f.Token, f.Cookie
	}

	c, err := client.New(opts)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tasq", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tasq")
}
