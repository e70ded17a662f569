// Package config loads the mousemapper configuration file through Viper,
// using a singleton Init/Get/Save shape with a domain model of
// profiles, bindings, and macros.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DeviceSelector identifies a source device by path, vendor/product ID, or
// name, in that priority order. An empty selector means "use whatever
// --device the CLI was given."
type DeviceSelector struct {
	Name      string `mapstructure:"name"`
	Path      string `mapstructure:"path"`
	VendorID  uint16 `mapstructure:"vendor_id"`
	ProductID uint16 `mapstructure:"product_id"`
}

// BindingOutput is a tagged Key{target}/Macro{name} union, represented for
// TOML as two optional fields rather than an enum, since neither TOML nor
// mapstructure has first-class tagged unions.
type BindingOutput struct {
	Key   string `mapstructure:"key,omitempty"`
	Macro string `mapstructure:"macro,omitempty"`
}

// IsMacro reports whether this output fires a macro rather than remapping
// to another key.
func (o BindingOutput) IsMacro() bool { return o.Macro != "" }

// Binding pairs a source input name with its output. BindingOutput is
// embedded with squash so its key/macro fields unmarshal from the same
// TOML table as input, e.g. { input = "KEY_A", key = "KEY_B" }.
type Binding struct {
	Input string `mapstructure:"input"`
	BindingOutput `mapstructure:",squash"`
}

// MacroAction is a tagged Click/Press/Release/Delay union, represented the
// same one-of-fields way as BindingOutput.
type MacroAction struct {
	Click string `mapstructure:"click,omitempty"`
	Press string `mapstructure:"press,omitempty"`
	Release string `mapstructure:"release,omitempty"`
	DelayMs uint64 `mapstructure:"delay_ms,omitempty"`
}

// MacroMode is one of RepeatOnHold, Sequence, or Toggle.
type MacroMode string

const (
	ModeRepeatOnHold MacroMode = "repeat_on_hold"
	ModeSequence     MacroMode = "sequence"
	ModeToggle       MacroMode = "toggle"
)

// MacroDef is a named macro definition.
type MacroDef struct {
	Name           string        `mapstructure:"name"`
	Mode           MacroMode     `mapstructure:"mode"`
	Actions        []MacroAction `mapstructure:"actions"`
	IntervalMs     uint64        `mapstructure:"interval_ms"`
	InitialDelayMs uint64        `mapstructure:"initial_delay_ms"`
	JitterMs       uint64        `mapstructure:"jitter_ms"`
}

// Profile groups a named set of bindings and macros.
type Profile struct {
	Name     string    `mapstructure:"name"`
	Bindings []Binding `mapstructure:"bindings"`
	Macros   []MacroDef `mapstructure:"macros"`
}

// Configuration is the full in-memory config handed to the engine.
type Configuration struct {
	Device        DeviceSelector `mapstructure:"device"`
	Profiles      []Profile      `mapstructure:"profiles"`
	ActiveProfile string         `mapstructure:"active_profile"`
}

// ActiveProfileOrFirst resolves the profile the engine should load: the
// named active profile if set and found, otherwise the first profile,
// otherwise nil.
func (c *Configuration) ActiveProfileOrFirst() *Profile {
	if c.ActiveProfile != "" {
		for i := range c.Profiles {
			if c.Profiles[i].Name == c.ActiveProfile {
				return &c.Profiles[i]
			}
		}
	}
	if len(c.Profiles) > 0 {
		return &c.Profiles[0]
	}
	return nil
}

// Default is the configuration used when no file is found or loading fails.
var Default = Configuration{
	Profiles: []Profile{{Name: "default"}},
}

var cfg *Configuration

// Init wires up Viper's search path (system dir, then the invoking user's
// config dir even under sudo, then the current directory) and loads
// mousemapper.toml.
func Init() error {
	viper.SetConfigName("mousemapper")
	viper.SetConfigType("toml")

	viper.AddConfigPath("/etc/mousemapper")
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		viper.AddConfigPath(filepath.Join("/home", sudoUser, ".config", "mousemapper"))
	} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
		viper.AddConfigPath(filepath.Join(home, ".config", "mousemapper"))
	}
	viper.AddConfigPath(".")

	viper.SetDefault("profiles", Default.Profiles)
	viper.SetDefault("active_profile", Default.ActiveProfile)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Configuration{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return nil
}

// Get returns the current configuration, or Default if Init hasn't run.
func Get() *Configuration {
	if cfg == nil {
		return &Default
	}
	return cfg
}

// Save writes the current configuration to GetConfigPath.
func Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		if os.IsPermission(err) && strings.Contains(path, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the path mousemapper.toml was (or will be) loaded
// from, preferring the system path when running as root or under sudo.
func GetConfigPath() string {
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/mousemapper/mousemapper.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/mousemapper/mousemapper.toml"
	}
	return filepath.Join(home, ".config", "mousemapper", "mousemapper.toml")
}

// Set installs cfg as the current configuration, bypassing Viper. Used by
// `mousemapper config init` before it calls Save.
func Set(c *Configuration) { cfg = c }
