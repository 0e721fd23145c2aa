// Package config holds the mount configuration: loaded once at startup,
// validated, then shared read-only by every handler for the life of the
// mount.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete epochfs configuration.
//
// Sources, in order of precedence:
//  1. CLI flags (highest priority)
//  2. Environment variables (EPOCHFS_*)
//  3. Configuration file (YAML or TOML)
//  4. Default values (lowest priority)
//
// The value is immutable after Load returns; handlers receive it by
// value at construction time, never through shared mutable state.
type Config struct {
	// BasePath is the backing directory exposed through the mount.
	// Required; a missing base path aborts startup before mounting.
	BasePath string `mapstructure:"base_path" validate:"required"`

	// Epoch is the virtual epoch year. Zero selects the default: the
	// calendar year of time zero in the local time zone.
	Epoch int `mapstructure:"epoch"`

	// Logging controls the diagnostic log.
	Logging LoggingConfig `mapstructure:"logging"`

	// Mount contains bridge-facing mount options.
	Mount MountConfig `mapstructure:"mount"`
}

// LoggingConfig controls diagnostic output.
type LoggingConfig struct {
	// Level is the minimum level to emit: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output is "stdout", "stderr", or a file path opened append-only
	// once at startup.
	Output string `mapstructure:"output" validate:"required"`
}

// MountConfig contains mount options handed to the bridge.
type MountConfig struct {
	// FSName is the filesystem name shown in mount tables.
	FSName string `mapstructure:"fsname" validate:"required"`

	// AllowOther permits access by users other than the mounter.
	AllowOther bool `mapstructure:"allow_other"`

	// ReadOnly mounts the view read-only.
	ReadOnly bool `mapstructure:"read_only"`
}

// Load reads configuration from an optional file plus EPOCHFS_*
// environment variables, applies defaults, and validates the result.
func Load(configFile string) (*Config, error) {
	cfg, err := Read(configFile)
	if err != nil {
		return nil, err
	}
	if err := Finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads the file and environment layers without defaults or
// validation. Callers that layer higher-precedence sources on top, such
// as CLI flags, finish with Finalize.
func Read(configFile string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix("EPOCHFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Finalize applies computed defaults and validates. The Config must not
// change afterwards.
func Finalize(cfg *Config) error {
	ApplyDefaults(cfg)
	return Validate(cfg)
}
