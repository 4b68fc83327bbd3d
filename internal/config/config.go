// Package config provides functionality for managing configuration options
// for the application using command-line flags, environment variables and
// an optional JSON config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/atinyakov/PassLock/internal/device"
	"github.com/atinyakov/PassLock/internal/repository"
)

// ErrInvalidCapacity is returned when store.capacity is below 1.
var ErrInvalidCapacity = errors.New("store capacity must be at least 1")

// EnvPrefix prefixes every environment variable, e.g. PASSLOCK_STORE_CAPACITY.
const EnvPrefix = "passlock"

// Options holds the configuration values for the application.
type Options struct {
	// Config is the path of the config file that was read, empty if none was.
	Config string `mapstructure:"config"`

	Store  StoreOptions  `mapstructure:"store"`
	Log    LogOptions    `mapstructure:"log"`
	Timing TimingOptions `mapstructure:"timing"`
}

// StoreOptions configures the passcode store.
type StoreOptions struct {
	// Capacity is the maximum number of stored passcodes.
	Capacity int `mapstructure:"capacity"`
}

// LogOptions configures logging.
type LogOptions struct {
	// Level is a zap level name.
	Level string `mapstructure:"level"`
	// File receives log output instead of stderr when set.
	File string `mapstructure:"file"`
}

// TimingOptions holds the control loop and indicator delays.
type TimingOptions struct {
	Poll       time.Duration `mapstructure:"poll"`
	ResetDelay time.Duration `mapstructure:"reset_delay"`
	ModeDelay  time.Duration `mapstructure:"mode_delay"`
	KeyDelay   time.Duration `mapstructure:"key_delay"`
	// Flash is the length of each on and off phase of a status flash.
	Flash time.Duration `mapstructure:"flash"`
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"config":    "config",
	"capacity":  "store.capacity",
	"log-level": "log.level",
	"log-file":  "log.file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("config", "config.json")
	v.SetDefault("store.capacity", repository.DefaultCapacity)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("timing.poll", device.DefaultTiming.Poll)
	v.SetDefault("timing.reset_delay", device.DefaultTiming.ResetDelay)
	v.SetDefault("timing.mode_delay", device.DefaultTiming.ModeDelay)
	v.SetDefault("timing.key_delay", device.DefaultTiming.KeyDelay)
	v.SetDefault("timing.flash", 125*time.Millisecond)
}

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "config.json", "path to config file")
	fs.Int("capacity", repository.DefaultCapacity, "maximum number of stored passcodes")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-file", "", "write logs to this file instead of stderr")
}

// Load resolves the options. Precedence, lowest first: defaults, config
// file, environment, flags explicitly set on fs. fs may be nil.
func Load(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	setDefaults(v)

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := v.GetString("config")
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		path = configPath
	}
	var loaded string
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
			loaded = path
		}
	}

	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	o.Config = loaded
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Validate checks the option values.
func (o *Options) Validate() error {
	if o.Store.Capacity < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, o.Store.Capacity)
	}
	return nil
}

// DeviceConfig converts the options into a device.Config.
func (o *Options) DeviceConfig() device.Config {
	return device.Config{
		Capacity: o.Store.Capacity,
		Timing: device.Timing{
			Poll:       o.Timing.Poll,
			ResetDelay: o.Timing.ResetDelay,
			ModeDelay:  o.Timing.ModeDelay,
			KeyDelay:   o.Timing.KeyDelay,
		},
	}
}
