package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ServerConfig contains HTTP listener configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" toml:"addr" env:"HOLOCRON_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"HOLOCRON_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"HOLOCRON_WRITE_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" toml:"request_timeout" env:"HOLOCRON_REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"HOLOCRON_SHUTDOWN_TIMEOUT"`
}

// APIConfig contains upstream SWAPI configuration
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" toml:"base_url" env:"HOLOCRON_API_BASE_URL"`
	ImageBaseURL      string        `yaml:"image_base_url" toml:"image_base_url" env:"HOLOCRON_IMAGE_BASE_URL"`
	Timeout           time.Duration `yaml:"timeout" toml:"timeout" env:"HOLOCRON_API_TIMEOUT"`
	DetailTimeout     time.Duration `yaml:"detail_timeout" toml:"detail_timeout" env:"HOLOCRON_DETAIL_TIMEOUT"`
	FetchConcurrency  int           `yaml:"fetch_concurrency" toml:"fetch_concurrency" env:"HOLOCRON_FETCH_CONCURRENCY"`
	ResolveReferences bool          `yaml:"resolve_references" toml:"resolve_references" env:"HOLOCRON_RESOLVE_REFERENCES"`
	ProbeSchedule     string        `yaml:"probe_schedule" toml:"probe_schedule" env:"HOLOCRON_PROBE_SCHEDULE"`
}

// SessionConfig contains cookie signing configuration
type SessionConfig struct {
	SigningKey   string `yaml:"signing_key" toml:"signing_key" env:"HOLOCRON_SESSION_KEY"`
	SecureCookie bool   `yaml:"secure_cookie" toml:"secure_cookie" env:"HOLOCRON_SECURE_COOKIE"`
}

// LoggerConfig contains logging configuration
type LoggerConfig struct {
	Level    string `yaml:"level" toml:"level" env:"HOLOCRON_LOG_LEVEL"`
	Format   string `yaml:"format" toml:"format" env:"HOLOCRON_LOG_FORMAT"`
	SaveToDB bool   `yaml:"save_to_db" toml:"save_to_db" env:"HOLOCRON_LOG_SAVE_DB"`
	DBLevel  string `yaml:"db_level" toml:"db_level" env:"HOLOCRON_LOG_DB_LEVEL"`
}

// DatabaseConfig contains optional log persistence configuration
type DatabaseConfig struct {
	URL               string        `yaml:"url" toml:"url" env:"DATABASE_URL"`
	Retention         time.Duration `yaml:"retention" toml:"retention" env:"HOLOCRON_LOG_RETENTION"`
	RetentionSchedule string        `yaml:"retention_schedule" toml:"retention_schedule" env:"HOLOCRON_LOG_RETENTION_SCHEDULE"`
}

// Config represents the complete configuration structure for YAML/TOML files
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	API      APIConfig      `yaml:"api" toml:"api"`
	Session  SessionConfig  `yaml:"session" toml:"session"`
	Logger   LoggerConfig   `yaml:"logger" toml:"logger"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
}

// Loader reads configuration from dir
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir ("config" when empty)
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = "config"
	}
	return &Loader{dir: dir}
}

// Load reads configuration in order of preference:
// 1. YAML file (config/holocron.yaml)
// 2. TOML file (config/holocron.toml)
// 3. Environment variables (.env file)
// 4. Default values
// Environment variables always override file values.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// Load reads configuration from the loader's directory
func (l *Loader) Load() (*Config, error) {
	cfg := Defaults()

	if err := l.loadYAML(cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := l.loadTOML(cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) loadYAML(cfg *Config) error {
	path := filepath.Join(l.dir, "holocron.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", path, err)
	}
	return nil
}

func (l *Loader) loadTOML(cfg *Config) error {
	path := filepath.Join(l.dir, "holocron.toml")
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse TOML config %s: %w", path, err)
	}
	return nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}
	return nil
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  25 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		API: APIConfig{
			BaseURL:           "https://swapi.dev/api",
			ImageBaseURL:      "https://starwars-visualguide.com/assets/img/characters",
			Timeout:           10 * time.Second,
			DetailTimeout:     15 * time.Second,
			FetchConcurrency:  4,
			ResolveReferences: true,
			ProbeSchedule:     "@every 5m",
		},
		Session: SessionConfig{
			SecureCookie: false,
		},
		Logger: LoggerConfig{
			Level:    "info",
			Format:   "json",
			SaveToDB: false,
			DBLevel:  "warn",
		},
		Database: DatabaseConfig{
			Retention:         7 * 24 * time.Hour,
			RetentionSchedule: "0 3 * * *",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Addr = getEnvString("HOLOCRON_ADDR", cfg.Server.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HOLOCRON_ADDR") == "" {
		cfg.Server.Addr = ":" + port
	}
	cfg.Server.ReadTimeout = getEnvDuration("HOLOCRON_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("HOLOCRON_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.RequestTimeout = getEnvDuration("HOLOCRON_REQUEST_TIMEOUT", cfg.Server.RequestTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("HOLOCRON_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)

	cfg.API.BaseURL = getEnvString("HOLOCRON_API_BASE_URL", cfg.API.BaseURL)
	cfg.API.ImageBaseURL = getEnvString("HOLOCRON_IMAGE_BASE_URL", cfg.API.ImageBaseURL)
	cfg.API.Timeout = getEnvDuration("HOLOCRON_API_TIMEOUT", cfg.API.Timeout)
	cfg.API.DetailTimeout = getEnvDuration("HOLOCRON_DETAIL_TIMEOUT", cfg.API.DetailTimeout)
	cfg.API.FetchConcurrency = getEnvInt("HOLOCRON_FETCH_CONCURRENCY", cfg.API.FetchConcurrency)
	cfg.API.ResolveReferences = getEnvBool("HOLOCRON_RESOLVE_REFERENCES", cfg.API.ResolveReferences)
	cfg.API.ProbeSchedule = getEnvString("HOLOCRON_PROBE_SCHEDULE", cfg.API.ProbeSchedule)

	cfg.Session.SigningKey = getEnvString("HOLOCRON_SESSION_KEY", cfg.Session.SigningKey)
	cfg.Session.SecureCookie = getEnvBool("HOLOCRON_SECURE_COOKIE", cfg.Session.SecureCookie)

	cfg.Logger.Level = getEnvString("HOLOCRON_LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = getEnvString("HOLOCRON_LOG_FORMAT", cfg.Logger.Format)
	cfg.Logger.SaveToDB = getEnvBool("HOLOCRON_LOG_SAVE_DB", cfg.Logger.SaveToDB)
	cfg.Logger.DBLevel = getEnvString("HOLOCRON_LOG_DB_LEVEL", cfg.Logger.DBLevel)

	cfg.Database.URL = getEnvString("DATABASE_URL", cfg.Database.URL)
	cfg.Database.Retention = getEnvDuration("HOLOCRON_LOG_RETENTION", cfg.Database.Retention)
	cfg.Database.RetentionSchedule = getEnvString("HOLOCRON_LOG_RETENTION_SCHEDULE", cfg.Database.RetentionSchedule)
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server addr cannot be empty")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server read/write timeouts must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server request_timeout must be positive, got %v", c.Server.RequestTimeout)
	}

	if err := validateURL("api base_url", c.API.BaseURL); err != nil {
		return err
	}
	if err := validateURL("api image_base_url", c.API.ImageBaseURL); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %v", c.API.Timeout)
	}
	if c.API.DetailTimeout <= 0 {
		return fmt.Errorf("api detail_timeout must be positive, got %v", c.API.DetailTimeout)
	}
	if c.API.FetchConcurrency <= 0 {
		return fmt.Errorf("api fetch_concurrency must be positive, got %d", c.API.FetchConcurrency)
	}
	// empty probe_schedule disables the upstream probe
	if c.API.ProbeSchedule != "" {
		if _, err := cron.ParseStandard(c.API.ProbeSchedule); err != nil {
			return fmt.Errorf("invalid api probe_schedule %q: %w", c.API.ProbeSchedule, err)
		}
	}

	if key := c.Session.SigningKey; key != "" && len(key) < 32 {
		return fmt.Errorf("session signing_key must be at least 32 bytes, got %d", len(key))
	}

	if !isValidLogLevel(c.Logger.Level) {
		return fmt.Errorf("invalid logger level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if !isValidLogLevel(c.Logger.DBLevel) {
		return fmt.Errorf("invalid logger db_level: %s (must be debug, info, warn, or error)", c.Logger.DBLevel)
	}
	if !isValidLogFormat(c.Logger.Format) {
		return fmt.Errorf("invalid logger format: %s (must be json or text)", c.Logger.Format)
	}

	if c.Logger.SaveToDB && c.Database.URL == "" {
		return fmt.Errorf("logger save_to_db requires database url")
	}
	if c.Database.URL != "" {
		if c.Database.Retention <= 0 {
			return fmt.Errorf("database retention must be positive, got %v", c.Database.Retention)
		}
		if _, err := cron.ParseStandard(c.Database.RetentionSchedule); err != nil {
			return fmt.Errorf("invalid database retention_schedule %q: %w", c.Database.RetentionSchedule, err)
		}
	}

	return nil
}

// PersistLogs reports whether log entries go to the database
func (c *Config) PersistLogs() bool {
	return c.Logger.SaveToDB && c.Database.URL != ""
}

func validateURL(name, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) url, got %q", name, raw)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func isValidLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "json", "text":
		return true
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
