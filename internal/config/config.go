// Package config resolves erdling settings from the config file and
// environment via viper. The file is optional; every key has a
// built-in default.
package config

import (
	"fmt"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	// Theme selects the canvas palette, "dark" or "light".
	Theme string `mapstructure:"theme" toml:"theme"`
	// LogFile receives structured logs; empty disables logging. The
	// TUI owns the terminal, so logs never go to stderr while it runs.
	LogFile string `mapstructure:"log_file" toml:"log_file"`
	// Verbose switches the log level to debug.
	Verbose bool `mapstructure:"verbose" toml:"verbose"`
	// PanSpeed is the cells scrolled per keyboard pan step.
	PanSpeed int `mapstructure:"pan_speed" toml:"pan_speed"`
	// AutosaveOnClose saves the project without prompting on quit.
	AutosaveOnClose bool `mapstructure:"autosave_on_close" toml:"autosave_on_close"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Theme:    "dark",
		PanSpeed: 2,
	}
}

// SetDefaults registers the built-in values on a viper instance so
// unmarshaling sees them when the config file omits keys. Registering
// every key also makes ERDLING_* environment overrides visible.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("theme", d.Theme)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("pan_speed", d.PanSpeed)
	v.SetDefault("autosave_on_close", d.AutosaveOnClose)
}

// FromViper unmarshals and validates the resolved settings.
func FromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Theme != "dark" && c.Theme != "light" {
		return fmt.Errorf("config: theme must be \"dark\" or \"light\", got %q", c.Theme)
	}
	if c.PanSpeed < 1 {
		return fmt.Errorf("config: pan_speed must be at least 1, got %d", c.PanSpeed)
	}
	return nil
}

// Dark reports whether the dark palette is active.
func (c Config) Dark() bool { return c.Theme != "light" }

// Marshal renders the configuration as a TOML document, used by
// "erdling config init" to write a starter file.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}
