// Package config loads process settings from the environment, an optional
// .env file and an optional YAML overlay named by VANTA_CONFIG.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Backends accepted by DATA_BACKEND. The API server cannot serve "remote".
var Backends = []string{"memory", "sqlite", "postgres", "remote"}

type Config struct {
	// HTTP Server
	Port string `yaml:"port"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Backend selection
	DataBackend   string `yaml:"data_backend"`
	DataDirectory string `yaml:"data_directory"`
	SQLiteDBPath  string `yaml:"sqlite_db_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	AutoMigrate   bool   `yaml:"auto_migrate"`

	// Remote API (CLI)
	APIURL      string        `yaml:"api_url"`
	APITimeout  time.Duration `yaml:"api_timeout"`
	APIPageSize int           `yaml:"api_page_size"`

	// Auth
	APIToken  string        `yaml:"api_token"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// Rate limiting and caching
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
	CacheSize  int           `yaml:"cache_size"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`

	// AMQP
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Google Sheets mirror
	GoogleSpreadsheetID   string `yaml:"google_spreadsheet_id"`
	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	GoogleCredentialsJSON string `yaml:"google_credentials_json"`

	// Worker
	SyncInterval    time.Duration `yaml:"sync_interval"`
	SyncConcurrency int           `yaml:"sync_concurrency"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Port:            "8081",
		LogLevel:        "info",
		LogFormat:       "text",
		DataBackend:     "memory",
		DataDirectory:   "./data",
		SQLiteDBPath:    "./data/vanta.db",
		APIURL:          "http://localhost:8081",
		APITimeout:      30 * time.Second,
		TokenTTL:        24 * time.Hour,
		RateLimit:       60,
		RateWindow:      time.Minute,
		CacheSize:       256,
		CacheTTL:        30 * time.Second,
		AMQPExchange:    "vanta",
		AMQPQueue:       "vanta_changes",
		SyncInterval:    10 * time.Minute,
		SyncConcurrency: 4,
	}
}

// Load reads .env (if present), then the YAML file named by VANTA_CONFIG,
// then environment variables. Later sources win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("VANTA_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.DataDirectory = getEnv("DATA_DIRECTORY", c.DataDirectory)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.PostgresDSN = getEnv("POSTGRES_DSN", c.PostgresDSN)
	c.AutoMigrate = getEnvBool("AUTO_MIGRATE", c.AutoMigrate)

	c.APIURL = getEnv("VANTA_API_URL", c.APIURL)
	c.APITimeout = getEnvDuration("VANTA_API_TIMEOUT", c.APITimeout)
	c.APIPageSize = getEnvInt("VANTA_API_PAGE_SIZE", c.APIPageSize)

	c.APIToken = getEnv("VANTA_API_TOKEN", c.APIToken)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)

	c.RateLimit = getEnvInt("RATE_LIMIT", c.RateLimit)
	c.RateWindow = getEnvDuration("RATE_WINDOW", c.RateWindow)
	c.CacheSize = getEnvInt("CACHE_SIZE", c.CacheSize)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", c.GoogleSpreadsheetID)
	c.GoogleCredentialsFile = getEnv("GOOGLE_CREDENTIALS_FILE", c.GoogleCredentialsFile)
	c.GoogleCredentialsJSON = getEnv("GOOGLE_CREDENTIALS_JSON", c.GoogleCredentialsJSON)

	c.SyncInterval = getEnvDuration("SYNC_INTERVAL", c.SyncInterval)
	c.SyncConcurrency = getEnvInt("SYNC_CONCURRENCY", c.SyncConcurrency)
}

// SheetsEnabled reports whether a spreadsheet mirror is configured.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if !slices.Contains(Backends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, Backends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case "postgres":
		if c.PostgresDSN == "" {
			errors = append(errors, "POSTGRES_DSN is required when using postgres backend")
		}
	case "remote":
		if u, err := url.Parse(c.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid API URL '%s': must be an http(s) URL", c.APIURL))
		}
	}

	if c.APITimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid API timeout %v: must be positive", c.APITimeout))
	}
	if c.APIPageSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid API page size %d: must not be negative", c.APIPageSize))
	}

	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT secret must be at least 16 characters")
	}
	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.RateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimit))
	}
	if c.RateWindow < time.Second {
		errors = append(errors, fmt.Sprintf("invalid rate window %v: must be at least 1 second", c.RateWindow))
	}
	if c.CacheSize < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must not be negative", c.CacheSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() {
		hasFile := c.GoogleCredentialsFile != ""
		if !hasFile && c.GoogleCredentialsJSON == "" {
			errors = append(errors, "either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON must be provided when a spreadsheet is configured")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
			}
		}
	}

	if c.SyncInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at least 1 second", c.SyncInterval))
	} else if c.SyncInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sync interval %v: must be at most 24 hours", c.SyncInterval))
	}
	if c.SyncConcurrency < 1 || c.SyncConcurrency > 32 {
		errors = append(errors, fmt.Sprintf("invalid sync concurrency %d: must be between 1 and 32", c.SyncConcurrency))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// GoogleCredentials returns the service-account key, reading the file when
// no inline JSON is set.
func (c *Config) GoogleCredentials() ([]byte, error) {
	if c.GoogleCredentialsJSON != "" {
		return []byte(c.GoogleCredentialsJSON), nil
	}
	if c.GoogleCredentialsFile == "" {
		return nil, fmt.Errorf("no Google credentials configured")
	}
	return os.ReadFile(c.GoogleCredentialsFile)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
