package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config   *Config
	filePath string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		config: NewConfig(),
	}
}

// WithFile makes Load read path before the environment. A missing file is
// an error only when the path was given explicitly.
func (l *Loader) WithFile(path string) *Loader {
	l.filePath = path
	return l
}

// DefaultConfigPath is consulted when no file was given.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".task-assistant", "config.yaml")
}

// Load applies, in order: defaults, config file, environment, then
// validates the result.
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}

	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}

	if err := l.config.Validate(); err != nil {
		return nil, err
	}

	return l.config, nil
}

func (l *Loader) loadFile() error {
	path := l.filePath
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("config file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := v.Unmarshal(l.config); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		l.applyOverrides(config, overrides)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigOverrides holds command line flag overrides
type ConfigOverrides struct {
	DBDriver *string
	DBPath   *string
	DBDSN    *string

	Host *string
	Port *int

	ClassifierProvider *string
	ClassifierModel    *string
	ClassifierBaseURL  *string

	LogLevel  *string
	LogFormat *string

	Timeout *time.Duration
	Verbose *bool
}

func (l *Loader) applyOverrides(config *Config, o *ConfigOverrides) {
	if o.DBDriver != nil {
		config.Database.Driver = *o.DBDriver
	}
	if o.DBPath != nil {
		config.Database.Dir = filepath.Dir(*o.DBPath)
		config.Database.Filename = filepath.Base(*o.DBPath)
	}
	if o.DBDSN != nil {
		config.Database.DSN = *o.DBDSN
	}
	if o.Host != nil {
		config.Server.Host = *o.Host
	}
	if o.Port != nil {
		config.Server.Port = *o.Port
	}
	if o.ClassifierProvider != nil {
		config.Classifier.Provider = *o.ClassifierProvider
	}
	if o.ClassifierModel != nil {
		config.Classifier.Model = *o.ClassifierModel
	}
	if o.ClassifierBaseURL != nil {
		config.Classifier.BaseURL = *o.ClassifierBaseURL
	}
	if o.LogLevel != nil {
		config.Logging.Level = *o.LogLevel
	}
	if o.LogFormat != nil {
		config.Logging.Format = *o.LogFormat
	}
	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}
}

// ParseDurationWithFallback parses a duration string with a fallback value
func ParseDurationWithFallback(s string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return fallback
}

// ParseIntWithFallback parses an integer string with a fallback value
func ParseIntWithFallback(s string, fallback int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return fallback
}

// ParseBoolWithFallback parses a boolean string with a fallback value
func ParseBoolWithFallback(s string, fallback bool) bool {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return fallback
}

// ParseUint32WithFallback parses a uint32 string with a fallback value
func ParseUint32WithFallback(s string, base int, fallback uint32) uint32 {
	if u, err := strconv.ParseUint(s, base, 32); err == nil {
		return uint32(u)
	}
	return fallback
}
