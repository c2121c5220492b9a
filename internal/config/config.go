// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/j-veylop/calendar-widget-tui/internal/calendar"
)

// Config holds the application configuration.
type Config struct {
	SharedDir               string
	CountsPath              string
	DatabasePath            string
	LogPath                 string
	LogLevel                string
	AMQPURL                 string
	AMQPExchange            string
	TimelineRefreshInterval time.Duration
	FirstWeekday            calendar.Weekday
	FillerMode              calendar.FillerMode
	Notifications           bool
}

// fileConfig is the optional YAML file layout. Every field is optional.
type fileConfig struct {
	SharedDir       string `yaml:"shared_dir"`
	CountsPath      string `yaml:"counts_path"`
	DatabasePath    string `yaml:"database_path"`
	RefreshInterval string `yaml:"refresh_interval"`
	FirstWeekday    string `yaml:"first_weekday"`
	FillerMode      string `yaml:"filler_mode"`
	Notifications   *bool  `yaml:"notifications"`
	Log             struct {
		Path  string `yaml:"path"`
		Level string `yaml:"level"`
	} `yaml:"log"`
	AMQP struct {
		URL      string `yaml:"url"`
		Exchange string `yaml:"exchange"`
	} `yaml:"amqp"`
}

// CountsFileName is the shared document's file name inside the shared directory.
const CountsFileName = "appointmentCounts.json"

// Default values
const (
	defaultTimelineRefreshInterval = time.Hour
	defaultFirstWeekday            = "monday"
	defaultFillerMode              = "next-month"
	defaultAMQPExchange            = "calendar-widget"
)

// Load reads configuration from .env files, an optional YAML file and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	var file fileConfig
	if path := os.Getenv("CALW_CONFIG_PATH"); path != "" {
		if err := loadFile(path, &file); err != nil {
			return nil, err
		}
	}

	sharedDir := getEnvString("SHARED_DIR", orDefault(file.SharedDir, getDefaultSharedDir()))
	notifications := true
	if file.Notifications != nil {
		notifications = *file.Notifications
	}

	cfg := &Config{
		SharedDir:               sharedDir,
		CountsPath:              getEnvString("COUNTS_PATH", orDefault(file.CountsPath, filepath.Join(sharedDir, CountsFileName))),
		DatabasePath:            getEnvString("DATABASE_PATH", orDefault(file.DatabasePath, getDefaultDatabasePath())),
		LogPath:                 getEnvString("LOG_PATH", orDefault(file.Log.Path, getDefaultLogPath())),
		LogLevel:                getEnvString("LOG_LEVEL", orDefault(file.Log.Level, "info")),
		AMQPURL:                 getEnvString("AMQP_URL", file.AMQP.URL),
		AMQPExchange:            getEnvString("AMQP_EXCHANGE", orDefault(file.AMQP.Exchange, defaultAMQPExchange)),
		TimelineRefreshInterval: getEnvDuration("TIMELINE_REFRESH_INTERVAL", parseDuration(file.RefreshInterval, defaultTimelineRefreshInterval)),
		Notifications:           getEnvBool("NOTIFICATIONS", notifications),
	}

	var err error
	cfg.FirstWeekday, err = calendar.ParseWeekday(getEnvString("FIRST_WEEKDAY", orDefault(file.FirstWeekday, defaultFirstWeekday)))
	if err != nil {
		return nil, err
	}
	cfg.FillerMode, err = calendar.ParseFillerMode(getEnvString("FILLER_MODE", orDefault(file.FillerMode, defaultFillerMode)))
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure shared and database directories exist
	if err := ensureDir(filepath.Dir(cfg.CountsPath)); err != nil {
		return nil, err
	}
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the loaded values for consistency.
func (c *Config) Validate() error {
	var errs []error
	if c.CountsPath == "" {
		errs = append(errs, errors.New("COUNTS_PATH must not be empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}
	if c.TimelineRefreshInterval <= 0 {
		errs = append(errs, fmt.Errorf("TIMELINE_REFRESH_INTERVAL must be positive, got %s", c.TimelineRefreshInterval))
	}
	if !c.FirstWeekday.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", calendar.ErrInvalidWeekday, int(c.FirstWeekday)))
	}
	if c.AMQPURL != "" && c.AMQPExchange == "" {
		errs = append(errs, errors.New("AMQP_EXCHANGE is required when AMQP_URL is set"))
	}
	return errors.Join(errs...)
}

// GridOptions returns the grid layout options selected by the configuration.
func (c *Config) GridOptions() calendar.Options {
	return calendar.Options{FirstWeekday: c.FirstWeekday, Filler: c.FillerMode}
}

func loadFile(path string, file *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "calendar-widget", ".env"),
			filepath.Join(home, ".calendar-widget", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
	}

	return paths
}

func configHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "calendar-widget")
}

// getDefaultSharedDir returns the directory both the host and the widget can reach.
func getDefaultSharedDir() string {
	if dir := configHome(); dir != "" {
		return filepath.Join(dir, "shared")
	}
	return "shared"
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	if dir := configHome(); dir != "" {
		return filepath.Join(dir, "widget.db")
	}
	return "widget.db"
}

// getDefaultLogPath returns the default log file path.
func getDefaultLogPath() string {
	if dir := configHome(); dir != "" {
		return filepath.Join(dir, "widget.log")
	}
	return "widget.log"
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		return parseDuration(value, defaultValue)
	}
	return defaultValue
}

// parseDuration parses a Go duration or a bare number of seconds.
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	// Try parsing as seconds if no unit specified
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
