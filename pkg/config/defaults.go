package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEpochYear is the epoch year used when none is configured: the
// calendar year of time zero in the local time zone (1970 in UTC and
// zones east of Greenwich, 1969 west of it).
func DefaultEpochYear() int {
	return time.Unix(0, 0).Year()
}

// setDefaults registers the lowest-precedence values. base_path has no
// usable default; registering it keeps the key visible to the
// environment layer, and validation rejects the empty value.
func setDefaults(v *viper.Viper) {
	v.SetDefault("base_path", "")
	v.SetDefault("epoch", 0)
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("mount.fsname", "epochfs")
	v.SetDefault("mount.allow_other", false)
	v.SetDefault("mount.read_only", false)
}

// ApplyDefaults fills computed defaults and normalizes values that admit
// several spellings. Runs before validation.
func ApplyDefaults(cfg *Config) {
	if cfg.Epoch == 0 {
		cfg.Epoch = DefaultEpochYear()
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
	if cfg.Mount.FSName == "" {
		cfg.Mount.FSName = "epochfs"
	}
}
