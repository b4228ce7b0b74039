// Package config loads daemon settings and declarative profiles from a
// TOML document using Viper, following the precedence and
// SetDefault/Unmarshal shape of a typical Viper-backed daemon config
// package: search paths in XDG order, defaults registered before the
// file is read, then one Unmarshal pass into typed Go structs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/bnema/wayoutd/internal/profile"
)

// Settings holds the daemon-level knobs that aren't per-profile.
type Settings struct {
	Socket        string `mapstructure:"socket"`
	SkipTests     bool   `mapstructure:"skip_tests"`
	SettleDelayMs int    `mapstructure:"settle_delay_ms"`
	FileLogging   bool   `mapstructure:"file_logging"`
}

// DefaultSettings are registered with Viper before the config file is
// read, so a document that omits [settings] entirely still works.
var DefaultSettings = Settings{
	SkipTests:     false,
	SettleDelayMs: 500,
}

// rawDocument is the top-level TOML shape Viper unmarshals into before
// profiles are converted to their domain types.
type rawDocument struct {
	Settings Settings     `mapstructure:"settings"`
	Profile  []rawProfile `mapstructure:"profile"`
}

// Document is the fully decoded configuration: daemon settings plus
// the profile list ready for the Profile Manager.
type Document struct {
	Settings Settings
	Profiles []profile.Profile
}

// Load reads and decodes the TOML document at explicitPath, or
// searches the standard XDG locations when explicitPath is empty:
// $XDG_CONFIG_HOME/wayout, ~/.config/wayout, /etc/wayout, then the
// current directory.
func Load(explicitPath string) (Document, error) {
	v := viper.New()
	v.SetConfigName("wayout")
	v.SetConfigType("toml")

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "wayout"))
		} else if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wayout"))
		}
		v.AddConfigPath("/etc/wayout")
		v.AddConfigPath(".")
	}

	v.SetDefault("settings", DefaultSettings)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Document{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var raw rawDocument
	if err := v.Unmarshal(&raw, viper.DecodeHook(decodeHook())); err != nil {
		return Document{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	doc := Document{Settings: raw.Settings}
	for i, rp := range raw.Profile {
		p, err := rp.toProfile(i)
		if err != nil {
			return Document{}, fmt.Errorf("config: profile %d: %w", i, err)
		}
		if err := p.Validate(); err != nil {
			return Document{}, err
		}
		doc.Profiles = append(doc.Profiles, p)
	}

	return doc, nil
}

// ConfigFilePath mirrors Load's search but only resolves the path, for
// callers (the config-watcher, "reload" diagnostics) that need to know
// what file is active without re-decoding it.
func ConfigFilePath(explicitPath string) (string, error) {
	v := viper.New()
	v.SetConfigName("wayout")
	v.SetConfigType("toml")
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "wayout"))
		} else if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "wayout"))
		}
		v.AddConfigPath("/etc/wayout")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("config: read: %w", err)
	}
	return v.ConfigFileUsed(), nil
}
