// Package config loads the optional YAML config file. Every field has a
// working default; a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Log     LogConfig     `yaml:"log"`
	Theme   ThemeConfig   `yaml:"theme"`
}

// GatewayConfig names the external binary and the argument vectors for the
// one-shot api surface and the persistent listener.
type GatewayConfig struct {
	Command    string   `yaml:"command"`
	APIArgs    []string `yaml:"api_args"`
	ListenArgs []string `yaml:"listen_args"`
}

type FetchConfig struct {
	// PageSize is how many messages are fetched when a conversation is
	// first opened.
	PageSize uint `yaml:"page_size"`
}

type LogConfig struct {
	// File receives the session log. Empty disables file logging.
	File string `yaml:"file"`
	// Debug includes DEBUG lines in the log.
	Debug bool `yaml:"debug"`
}

// ThemeConfig holds lipgloss color values (ANSI index or hex).
type ThemeConfig struct {
	Accent string `yaml:"accent"`
	Unread string `yaml:"unread"`
	Dim    string `yaml:"dim"`
}

func Default() Config {
	return Config{
		Gateway: GatewayConfig{
			Command:    "keybase",
			APIArgs:    []string{"chat", "api"},
			ListenArgs: []string{"chat", "api-listen"},
		},
		Fetch: FetchConfig{PageSize: 20},
		Theme: ThemeConfig{
			Accent: "6",
			Unread: "3",
			Dim:    "8",
		},
	}
}

// DefaultPath is ~/.config/keybase-chat-tui/config.yaml (or the platform
// equivalent). Empty when the user config dir cannot be resolved.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "keybase-chat-tui", "config.yaml")
}

// Load reads path and overlays it on the defaults. A missing file (or an
// empty path) yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if strings.TrimSpace(c.Gateway.Command) == "" {
		c.Gateway.Command = def.Gateway.Command
	}
	if len(c.Gateway.APIArgs) == 0 {
		c.Gateway.APIArgs = def.Gateway.APIArgs
	}
	if len(c.Gateway.ListenArgs) == 0 {
		c.Gateway.ListenArgs = def.Gateway.ListenArgs
	}
	if c.Fetch.PageSize == 0 {
		c.Fetch.PageSize = def.Fetch.PageSize
	}
	if strings.TrimSpace(c.Theme.Accent) == "" {
		c.Theme.Accent = def.Theme.Accent
	}
	if strings.TrimSpace(c.Theme.Unread) == "" {
		c.Theme.Unread = def.Theme.Unread
	}
	if strings.TrimSpace(c.Theme.Dim) == "" {
		c.Theme.Dim = def.Theme.Dim
	}
}
