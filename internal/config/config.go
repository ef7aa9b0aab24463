// Package config resolves runtime defaults from the user's config file
// and environment. Flags override everything here; this package only
// supplies the values the user did not pass.
package config

import (
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Defaults.
const (
	DefaultShell      = "/bin/sh"
	DefaultActivator  = 'a'
	DefaultScrollback = 2000
)

// Config is the resolved runtime configuration.
type Config struct {
	Shell      string
	Activator  rune
	Scrollback int
	Title      string
	LogFile    string
}

// Path returns the config file location, ~/.config/gridmux/config.json.
func Path() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gridmux", "config.json")
	}
	return ""
}

// Load resolves configuration: built-in defaults, then the config
// file, then environment variables. A missing or malformed config file
// is not an error.
func Load() Config {
	cfg := Config{
		Activator:  DefaultActivator,
		Scrollback: DefaultScrollback,
	}

	if path := Path(); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			cfg.applyFile(data)
		}
	}
	cfg.applyEnv()

	if cfg.Shell == "" {
		if shell := os.Getenv("SHELL"); shell != "" {
			cfg.Shell = shell
		} else {
			cfg.Shell = DefaultShell
		}
	}
	return cfg
}

func (c *Config) applyFile(data []byte) {
	if !gjson.ValidBytes(data) {
		return
	}
	if v := gjson.GetBytes(data, "shell"); v.Exists() {
		c.Shell = v.String()
	}
	if v := gjson.GetBytes(data, "activator"); v.Exists() && v.String() != "" {
		c.Activator = []rune(v.String())[0]
	}
	if v := gjson.GetBytes(data, "scrollback"); v.Exists() && v.Int() >= 0 {
		c.Scrollback = int(v.Int())
	}
	if v := gjson.GetBytes(data, "title"); v.Exists() {
		c.Title = v.String()
	}
	if v := gjson.GetBytes(data, "log_file"); v.Exists() {
		c.LogFile = v.String()
	}
}

func (c *Config) applyEnv() {
	if shell := os.Getenv("GRIDMUX_SHELL"); shell != "" {
		c.Shell = shell
	}
	if act := os.Getenv("GRIDMUX_ACTIVATOR"); act != "" {
		c.Activator = []rune(act)[0]
	}
	if log := os.Getenv("GRIDMUX_LOG"); log != "" {
		c.LogFile = log
	}
}
