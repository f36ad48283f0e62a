// Package appconfig loads deltakit's YAML configuration, following the
// shape of the teacher repo's server/config/config.go.
package appconfig

import (
	"os"

	"github.com/deltakit/deltakit/internal/errors"
	"github.com/deltakit/deltakit/internal/logging"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFileReadFailed   = errors.MustNewCode("appconfig.file_read_failed", errors.KindConfigError)
	ErrConfigFileParseFailed  = errors.MustNewCode("appconfig.file_parse_failed", errors.KindConfigError)
	ErrConfigValidationFailed = errors.MustNewCode("appconfig.validation_failed", errors.KindConfigError)
	ErrConfigFileWriteFailed  = errors.MustNewCode("appconfig.file_write_failed", errors.KindConfigError)
)

// ObjectStoreConfig holds defaults for the Object Reader's retry/fan-out policy.
type ObjectStoreConfig struct {
	MaxRetryAttempts  int `yaml:"max_retry_attempts"`
	MaxRetryTotalSecs int `yaml:"max_retry_total_secs"`
	MaxFanOut         int `yaml:"max_fan_out"`
	MaxConnsPerHost   int `yaml:"max_conns_per_host"`
}

// PlannerDefaultsConfig holds default Shard Planner settings a CLI invocation
// may omit on the command line.
type PlannerDefaultsConfig struct {
	Shards  int    `yaml:"shards"`
	Balance string `yaml:"balance"`
}

// Config is deltakit's top-level configuration.
type Config struct {
	Log       logging.Config        `yaml:"log"`
	ObjStore  ObjectStoreConfig     `yaml:"object_store"`
	Planner   PlannerDefaultsConfig `yaml:"planner"`
}

// Default returns deltakit's default configuration.
func Default() *Config {
	return &Config{
		Log: logging.DefaultConfig(),
		ObjStore: ObjectStoreConfig{
			MaxRetryAttempts:  5,
			MaxRetryTotalSecs: 30,
			MaxFanOut:         16,
			MaxConnsPerHost:   32,
		},
		Planner: PlannerDefaultsConfig{
			Shards:  1,
			Balance: "bytes",
		},
	}
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("path", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("path", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err).AddContext("path", path)
	}
	return nil
}

// Validate checks invariants on the loaded configuration.
func (c *Config) Validate() error {
	if c.ObjStore.MaxRetryAttempts <= 0 {
		c.ObjStore.MaxRetryAttempts = 5
	}
	if c.ObjStore.MaxFanOut <= 0 {
		c.ObjStore.MaxFanOut = 16
	}
	if c.Planner.Shards <= 0 {
		c.Planner.Shards = 1
	}
	switch c.Planner.Balance {
	case "bytes", "rows":
	default:
		c.Planner.Balance = "bytes"
	}
	return nil
}
