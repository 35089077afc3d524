// Package config holds run configuration and environment definitions.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scenaria/internal/log"
)

// Config holds the settings of a suite run.
type Config struct {
	// Environment
	Env    string `yaml:"env"`
	EnvDir string `yaml:"env_dir"`

	// Sources
	Scenarios string `yaml:"scenarios"`

	// Outputs
	Journal     string `yaml:"journal"`
	MetricsFile string `yaml:"metrics_file"`
	Format      string `yaml:"format"`
	Color       bool   `yaml:"color"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Keep skips cleanup of data created by the run.
	Keep bool `yaml:"keep"`
}

const (
	DefaultEnv       = "qa"
	DefaultEnvDir    = "config/environments"
	DefaultScenarios = "scenarios"
	DefaultFile      = "scenaria.yaml"

	FormatText = "text"
	FormatJSON = "json"
)

var (
	ErrEmptyEnv         = errors.New("environment name must not be empty")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidLogLevel  = errors.New("invalid log level")
)

// NewDefaultConfig creates a configuration with defaults for every
// setting.
func NewDefaultConfig() *Config {
	return &Config{
		Env:       DefaultEnv,
		EnvDir:    DefaultEnvDir,
		Scenarios: DefaultScenarios,
		Format:    FormatText,
		Color:     true,
		LogLevel:  "warn",
		LogFormat: FormatText,
	}
}

// LoadFile overlays the YAML file at path onto c. Unknown fields are
// rejected. A missing file is an error unless optional is set.
func (c *Config) LoadFile(path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// LoadFromEnv overlays SCENARIA_* environment variables onto c.
func (c *Config) LoadFromEnv() error {
	loadEnvString("SCENARIA_ENV", &c.Env)
	loadEnvString("SCENARIA_ENV_DIR", &c.EnvDir)
	loadEnvString("SCENARIA_SCENARIOS", &c.Scenarios)
	loadEnvString("SCENARIA_JOURNAL", &c.Journal)
	loadEnvString("SCENARIA_METRICS_FILE", &c.MetricsFile)
	loadEnvString("SCENARIA_FORMAT", &c.Format)
	loadEnvString("SCENARIA_LOG_LEVEL", &c.LogLevel)
	loadEnvString("SCENARIA_LOG_FORMAT", &c.LogFormat)

	if err := loadEnvBool("SCENARIA_KEEP", &c.Keep); err != nil {
		return err
	}
	if err := loadEnvBool("SCENARIA_COLOR", &c.Color); err != nil {
		return err
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.Color = false
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Env == "" {
		return ErrEmptyEnv
	}
	if c.Format != FormatText && c.Format != FormatJSON {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, c.Format)
	}
	if c.LogFormat != FormatText && c.LogFormat != FormatJSON {
		return fmt.Errorf("%w: %s", ErrInvalidLogFormat, c.LogFormat)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// Environment loads the environment named by c.Env from c.EnvDir.
func (c *Config) Environment() (*Environment, error) {
	return LoadEnvironment(c.EnvDir, c.Env)
}

func loadEnvString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func loadEnvBool(key string, dst *bool) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = v
	return nil
}
