package config

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/mutker/ampurr/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile      = "/etc/ampurr.toml"
	DefaultEnvPrefix       = "AMPURR"
	DefaultLogLevel        = string(LogLevelWarning)
	DefaultLimitFile       = "/etc/ampurr.conf"
	DefaultPowerSupplyPath = "/sys/class/power_supply"
	DefaultCPUPath         = "/sys/devices/system/cpu"
	DefaultLockFile        = "/run/ampurr.pid"
	DefaultInterval        = 2
	DefaultHistoryDB       = "/var/lib/ampurr/history.db"
)

// Config is the tool configuration. The persisted charge limit is not part
// of it; that lives in its own single-value file at LimitFile.
type Config struct {
	LogLevel        string `mapstructure:"log_level"`
	LimitFile       string `mapstructure:"limit_file"`
	PowerSupplyPath string `mapstructure:"power_supply_path"`
	CPUPath         string `mapstructure:"cpu_path"`
	LockFile        string `mapstructure:"lock_file"`
	Interval        int    `mapstructure:"interval"`
	History         bool   `mapstructure:"history"`
	HistoryDB       string `mapstructure:"history_db"`
}

// Default returns the built-in configuration, used when no other source
// can be read.
func Default() *Config {
	return &Config{
		LogLevel:        DefaultLogLevel,
		LimitFile:       DefaultLimitFile,
		PowerSupplyPath: DefaultPowerSupplyPath,
		CPUPath:         DefaultCPUPath,
		LockFile:        DefaultLockFile,
		Interval:        DefaultInterval,
		HistoryDB:       DefaultHistoryDB,
	}
}

// flagKeys maps command line flag names onto configuration keys.
var flagKeys = map[string]string{
	"log-level":  "log_level",
	"interval":   "interval",
	"history":    "history",
	"history-db": "history_db",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("limit_file", DefaultLimitFile)
	v.SetDefault("power_supply_path", DefaultPowerSupplyPath)
	v.SetDefault("cpu_path", DefaultCPUPath)
	v.SetDefault("lock_file", DefaultLockFile)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("history", false)
	v.SetDefault("history_db", DefaultHistoryDB)
}

// Load reads the configuration from, in increasing precedence: defaults,
// the TOML config file, AMPURR_* environment variables and the flags in
// flags that were set explicitly. flags may be nil.
func Load(flags *pflag.FlagSet, opts ...Option) (*Config, error) {
	errFactory := errors.New()

	o := &options{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(o.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, o); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errFactory.Wrap(errors.ErrBindFlags, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readConfigFile loads the config file if one is in play. A missing default
// file is fine; a missing file that was asked for explicitly is not.
func readConfigFile(v *viper.Viper, o *options) error {
	errFactory := errors.New()

	path := o.configPath
	explicit := path != ""
	if !explicit {
		if env, ok := os.LookupEnv(o.envPrefix + "_CONFIG"); ok {
			if env == "" {
				return nil
			}
			path = env
			explicit = true
		} else {
			path = DefaultConfigFile
		}
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return errFactory.Wrap(errors.ErrReadConfig, err)
	}

	return nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	errFactory := errors.New()

	if !LogLevel(c.LogLevel).IsValid() {
		return errFactory.WithData(errors.ErrInvalidLogLevel, c.LogLevel)
	}

	if c.Interval <= 0 {
		return errFactory.WithData(errors.ErrInvalidInterval, c.Interval)
	}

	for key, value := range map[string]string{
		"limit_file":        c.LimitFile,
		"power_supply_path": c.PowerSupplyPath,
		"cpu_path":          c.CPUPath,
	} {
		if value == "" {
			return errFactory.WithData(errors.ErrInvalidConfig, fmt.Sprintf("%s must not be empty", key))
		}
	}

	if c.History && c.HistoryDB == "" {
		return errFactory.WithData(errors.ErrInvalidConfig, "history_db must be set when history is enabled")
	}

	return nil
}
