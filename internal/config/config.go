package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration options for the task assistant
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	Classifier  ClassifierConfig  `mapstructure:"classifier"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Notify      NotifyConfig      `mapstructure:"notify"`
	Validation  ValidationConfig  `mapstructure:"validation"`
	Application ApplicationConfig `mapstructure:"application"`
}

// DatabaseConfig selects the store. DSN wins over Dir/Filename.
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver" env:"TA_DB_DRIVER"`
	Dir            string        `mapstructure:"dir" env:"TA_DB_DIR"`
	Filename       string        `mapstructure:"filename" env:"TA_DB_FILENAME"`
	DSN            string        `mapstructure:"dsn" env:"TA_DB_DSN"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" env:"TA_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" env:"TA_DB_WRITE_TIMEOUT"`
	MaxOpenConns   int           `mapstructure:"max_open_conns" env:"TA_DB_MAX_OPEN_CONNS"`
	DirPermissions uint32        `mapstructure:"dir_permissions" env:"TA_DB_DIR_PERMISSIONS"`
}

// ServerConfig configures the HTTP and WebSocket listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host" env:"TA_SERVER_HOST"`
	Port            int           `mapstructure:"port" env:"TA_SERVER_PORT"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" env:"TA_CORS_ORIGINS"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" env:"TA_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" env:"TA_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" env:"TA_SERVER_SHUTDOWN_TIMEOUT"`
	AuthSecret      string        `mapstructure:"auth_secret" env:"TA_AUTH_SECRET"`
}

// ClassifierConfig configures the language classifier.
type ClassifierConfig struct {
	Provider    string        `mapstructure:"provider" env:"TA_CLASSIFIER_PROVIDER"`
	BaseURL     string        `mapstructure:"base_url" env:"TA_CLASSIFIER_BASE_URL"`
	APIKey      string        `mapstructure:"api_key" env:"TA_CLASSIFIER_API_KEY"`
	Model       string        `mapstructure:"model" env:"TA_CLASSIFIER_MODEL"`
	Temperature float64       `mapstructure:"temperature" env:"TA_CLASSIFIER_TEMPERATURE"`
	MaxTokens   int           `mapstructure:"max_tokens" env:"TA_CLASSIFIER_MAX_TOKENS"`
	Timeout     time.Duration `mapstructure:"timeout" env:"TA_CLASSIFIER_TIMEOUT"`
	CacheSize   int           `mapstructure:"cache_size" env:"TA_CLASSIFIER_CACHE_SIZE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" env:"TA_LOG_LEVEL"`
	Format string `mapstructure:"format" env:"TA_LOG_FORMAT"`
}

// NotifyConfig tunes the push subscriber queues.
type NotifyConfig struct {
	BufferSize   int           `mapstructure:"buffer_size" env:"TA_NOTIFY_BUFFER"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" env:"TA_NOTIFY_WRITE_TIMEOUT"`
}

type ValidationConfig struct {
	TitleMaxLength int `mapstructure:"title_max_length" env:"TA_VALIDATION_TITLE_MAX"`
}

type ApplicationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" env:"TA_APP_TIMEOUT"`
	Verbose bool          `mapstructure:"verbose" env:"TA_APP_VERBOSE"`
}

// Classifier providers.
const (
	ProviderOpenAI = "openai"
	ProviderEcho   = "echo"
)

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Driver:         "sqlite",
			Dir:            filepath.Join(homeDir, ".task-assistant"),
			Filename:       "tasks.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			MaxOpenConns:   10,
			DirPermissions: 0755,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Classifier: ClassifierConfig{
			Provider:    ProviderOpenAI,
			BaseURL:     "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:       "gemini-2.0-flash",
			Temperature: 0.1,
			MaxTokens:   512,
			Timeout:     30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Notify: NotifyConfig{
			BufferSize:   16,
			WriteTimeout: 5 * time.Second,
		},
		Validation: ValidationConfig{
			TitleMaxLength: 255,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// DataSource returns the DSN handed to the store.
func (c *Config) DataSource() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.GetDatabasePath()
}

// ListenAddr returns host:port for the HTTP server.
func (c *Config) ListenAddr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// LoadFromEnvironment overrides fields from TA_* variables. Unparseable
// values are ignored and the current value kept.
func (c *Config) LoadFromEnvironment() error {
	setString(&c.Database.Driver, "TA_DB_DRIVER")
	setString(&c.Database.Dir, "TA_DB_DIR")
	setString(&c.Database.Filename, "TA_DB_FILENAME")
	setString(&c.Database.DSN, "TA_DB_DSN")
	if c.Database.DSN == "" {
		setString(&c.Database.DSN, "DATABASE_URL")
	}
	setDuration(&c.Database.QueryTimeout, "TA_DB_QUERY_TIMEOUT")
	setDuration(&c.Database.WriteTimeout, "TA_DB_WRITE_TIMEOUT")
	setInt(&c.Database.MaxOpenConns, "TA_DB_MAX_OPEN_CONNS")
	if perms := os.Getenv("TA_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	setString(&c.Server.Host, "TA_SERVER_HOST")
	setInt(&c.Server.Port, "TA_SERVER_PORT")
	if origins := os.Getenv("TA_CORS_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = splitList(origins)
	}
	setDuration(&c.Server.ReadTimeout, "TA_SERVER_READ_TIMEOUT")
	setDuration(&c.Server.WriteTimeout, "TA_SERVER_WRITE_TIMEOUT")
	setDuration(&c.Server.ShutdownTimeout, "TA_SERVER_SHUTDOWN_TIMEOUT")
	setString(&c.Server.AuthSecret, "TA_AUTH_SECRET")

	setString(&c.Classifier.Provider, "TA_CLASSIFIER_PROVIDER")
	setString(&c.Classifier.BaseURL, "TA_CLASSIFIER_BASE_URL")
	setString(&c.Classifier.APIKey, "TA_CLASSIFIER_API_KEY")
	if c.Classifier.APIKey == "" {
		setString(&c.Classifier.APIKey, "GOOGLE_API_KEY")
	}
	setString(&c.Classifier.Model, "TA_CLASSIFIER_MODEL")
	if temp := os.Getenv("TA_CLASSIFIER_TEMPERATURE"); temp != "" {
		if f, err := strconv.ParseFloat(temp, 64); err == nil {
			c.Classifier.Temperature = f
		}
	}
	setInt(&c.Classifier.MaxTokens, "TA_CLASSIFIER_MAX_TOKENS")
	setDuration(&c.Classifier.Timeout, "TA_CLASSIFIER_TIMEOUT")
	setInt(&c.Classifier.CacheSize, "TA_CLASSIFIER_CACHE_SIZE")

	setString(&c.Logging.Level, "TA_LOG_LEVEL")
	setString(&c.Logging.Format, "TA_LOG_FORMAT")

	setInt(&c.Notify.BufferSize, "TA_NOTIFY_BUFFER")
	setDuration(&c.Notify.WriteTimeout, "TA_NOTIFY_WRITE_TIMEOUT")

	setInt(&c.Validation.TitleMaxLength, "TA_VALIDATION_TITLE_MAX")

	setDuration(&c.Application.Timeout, "TA_APP_TIMEOUT")
	if verbose := os.Getenv("TA_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseIntWithFallback(v, *dst)
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = ParseDurationWithFallback(v, *dst)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3":
		if c.Database.DSN == "" && (c.Database.Dir == "" || c.Database.Filename == "") {
			return &ConfigError{Field: "database.dir", Message: "database directory and filename cannot be empty"}
		}
	case "postgres", "postgresql", "pq":
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres requires a DSN"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: "driver must be sqlite or postgres"}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port must be between 1 and 65535"}
	}

	switch c.Classifier.Provider {
	case ProviderOpenAI:
		if c.Classifier.BaseURL == "" {
			return &ConfigError{Field: "classifier.base_url", Message: "base URL cannot be empty"}
		}
		if c.Classifier.Model == "" {
			return &ConfigError{Field: "classifier.model", Message: "model cannot be empty"}
		}
	case ProviderEcho:
	default:
		return &ConfigError{Field: "classifier.provider", Message: "provider must be openai or echo"}
	}
	if c.Classifier.Timeout <= 0 {
		return &ConfigError{Field: "classifier.timeout", Message: "classifier timeout must be positive"}
	}
	if c.Classifier.CacheSize < 0 {
		return &ConfigError{Field: "classifier.cache_size", Message: "cache size cannot be negative"}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "logging.format", Message: "format must be text or json"}
	}

	if c.Notify.BufferSize < 1 {
		return &ConfigError{Field: "notify.buffer_size", Message: "buffer size must be at least 1"}
	}
	if c.Notify.WriteTimeout <= 0 {
		return &ConfigError{Field: "notify.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Validation.TitleMaxLength < 1 || c.Validation.TitleMaxLength > 255 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be between 1 and 255"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
