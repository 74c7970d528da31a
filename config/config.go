// Package config provides configuration loading for gembrowse using TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// General settings
type General struct {
	Homepage string `toml:"homepage"`
}

// Network settings
type Network struct {
	TimeoutSeconds int `toml:"timeoutSeconds"`
	MaxRedirects   int `toml:"maxRedirects"`
}

// Rendering settings
type Rendering struct {
	DefaultWidth int  `toml:"defaultWidth"`
	Plain        bool `toml:"plain"` // disable ANSI styling
}

// Config is the main configuration struct
type Config struct {
	General   General   `toml:"general"`
	Network   Network   `toml:"network"`
	Rendering Rendering `toml:"rendering"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		General: General{
			Homepage: "gemini://gemini.circumlunar.space/",
		},
		Network: Network{
			TimeoutSeconds: 10,
			MaxRedirects:   5,
		},
		Rendering: Rendering{
			DefaultWidth: 80,
			Plain:        false,
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gembrowse"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering user config on top of defaults.
// Returns the default config if no user config exists.
func Load() (*Config, error) {
	cfg := Default()

	configPath, err := ConfigPath()
	if err != nil {
		return cfg, nil // Return defaults if we can't determine path
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil // Return defaults if no user config
	}

	userCfg, err := loadFromTOML(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	return merge(cfg, userCfg), nil
}

// loadFromTOML loads a TOML config file and returns the config.
func loadFromTOML(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	return &cfg, nil
}

// merge layers user config on top of defaults.
// Only non-zero values from user config override defaults.
func merge(defaults, user *Config) *Config {
	result := *defaults

	if user.General.Homepage != "" {
		result.General.Homepage = user.General.Homepage
	}
	if user.Network.TimeoutSeconds != 0 {
		result.Network.TimeoutSeconds = user.Network.TimeoutSeconds
	}
	if user.Network.MaxRedirects != 0 {
		result.Network.MaxRedirects = user.Network.MaxRedirects
	}
	if user.Rendering.DefaultWidth != 0 {
		result.Rendering.DefaultWidth = user.Rendering.DefaultWidth
	}
	if user.Rendering.Plain {
		result.Rendering.Plain = true
	}

	return &result
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for --init-config to generate a user config file.
func DefaultTOML() string {
	return `# gembrowse configuration
# Save to ~/.config/gembrowse/config.toml and customize
# Only include settings you want to change from defaults

[general]
homepage = "gemini://gemini.circumlunar.space/"

[network]
timeoutSeconds = 10           # Connect timeout per request
maxRedirects = 5              # Redirect hops followed before giving up

[rendering]
defaultWidth = 80             # Wrap width for prose
plain = false                 # Disable ANSI styling
`
}
