package internal

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds user settings loaded from config.toml
type Config struct {
	DBPath   string         `toml:"db_path"`
	CacheDir string         `toml:"cache_dir"`
	Workers  int            `toml:"workers"`
	Sampling SamplingConfig `toml:"sampling"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DefaultConfigPath returns ~/.config/chat-session/config.toml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "chat-session", "config.toml"), nil
}

// DefaultConfig returns the settings used when no config file exists
func DefaultConfig() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		DBPath:   filepath.Join(home, ".config", "chat-session", "sessions.db"),
		CacheDir: filepath.Join(home, ".chat-session-cache"),
		Workers:  DefaultWorkers(),
		Sampling: DefaultSampling(),
		Logging:  LoggingConfig{Level: "info"},
	}, nil
}

// LoadConfig reads path over the defaults. An empty path means the default
// location; a missing file at the default location is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	home, _ := os.UserHomeDir()

	explicit := path != ""
	if !explicit {
		if path, err = DefaultConfigPath(); err != nil {
			return nil, &ConfigError{Err: err}
		}
	}
	path = expandHome(path, home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, &ConfigError{Path: path, Err: err}
		}
		LogDebug("Loaded config from %s", path)
	} else if explicit {
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)
	cfg.CacheDir = expandHome(cfg.CacheDir, home)
	cfg.Logging.Path = expandHome(cfg.Logging.Path, home)

	if err := cfg.validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return &ConfigError{Err: err}
	}
	return nil
}

func (c *Config) validate() error {
	if c.Workers <= 0 {
		return errInvalidSetting("workers must be positive")
	}
	if c.Sampling.Threshold < 0 || c.Sampling.Size < 0 {
		return errInvalidSetting("sampling threshold and size must not be negative")
	}
	if c.Sampling.Threshold > 0 && c.Sampling.Size > c.Sampling.Threshold {
		return errInvalidSetting("sampling size exceeds threshold")
	}
	if c.Logging.Level != "" {
		if _, ok := parseLevel(c.Logging.Level); !ok {
			return errInvalidSetting("unknown log level " + c.Logging.Level)
		}
	}
	return nil
}

// AggregateOptions derives aggregator options from the config
func (c *Config) AggregateOptions() AggregateOptions {
	opts := DefaultAggregateOptions()
	opts.Workers = c.Workers
	opts.Sampling = c.Sampling
	return opts
}

type errInvalidSetting string

func (e errInvalidSetting) Error() string { return string(e) }

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
