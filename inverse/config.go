package inverse

import (
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// EnvPrefix is the prefix of environment variables read by LoadConfig.
const EnvPrefix = "INVERSE_"

// ErrInvalidConfig is returned for a configuration that cannot be used.
var ErrInvalidConfig = errors.New("invalid inverse transform config")

// ChainMode selects how the inverters of one chain are combined.
type ChainMode string

const (
	// ChainModeLast applies every inverter to the original item and keeps the
	// last result, so only the final inverter has an effect.
	ChainModeLast ChainMode = "last"
	// ChainModeCompose feeds each inverter the previous inverter's output.
	ChainModeCompose ChainMode = "compose"
)

// Config holds the Applier settings.
type Config struct {
	// Workers is the number of items transformed concurrently. 0 and 1 run
	// sequentially. With more than one worker, inverters run on separate
	// goroutines, so a panicking inverter crashes the process instead of
	// unwinding into the caller of Apply.
	Workers int `koanf:"workers" yaml:"workers"`
	// ChainMode selects how inverters of a chain are combined.
	ChainMode ChainMode `koanf:"chain_mode" yaml:"chain_mode"`
	// LogLevel is a zerolog level name applied to the Applier logger.
	LogLevel string `koanf:"log_level" yaml:"log_level"`
}

// DefaultConfig returns the configuration used by ApplyInverseTransforms.
//
// @example
// config := DefaultConfig()
// config.Workers = runtime.NumCPU()
// applier, err := NewApplier(config)
func DefaultConfig() *Config {
	return &Config{
		Workers:   1,
		ChainMode: ChainModeLast,
		LogLevel:  zerolog.InfoLevel.String(),
	}
}

// LoadConfig merges a YAML file (if present) with environment variables
// (prefix INVERSE_, e.g. INVERSE_WORKERS, INVERSE_CHAIN_MODE).
//
// Arguments:
//   - path: The YAML file. Empty or missing files are skipped.
//
// Returns:
//   - *Config: The merged configuration with defaults applied.
//   - error: A load or decode error, or ErrInvalidConfig.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(err, "loading %s", path)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}
	switch c.ChainMode {
	case ChainModeLast, ChainModeCompose:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown chain mode %q", c.ChainMode)
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "unknown log level %q", c.LogLevel)
		}
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.ChainMode == "" {
		c.ChainMode = ChainModeLast
	}
	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
}

// level parses LogLevel, falling back to info.
func (c *Config) level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
