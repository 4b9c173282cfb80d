// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/dhikr-tally/internal/models"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	Catalogue         models.Catalogue
	DatabasePath      string
	StorageBackend    string
	RedisAddr         string
	RedisPassword     string
	VoiceInbox        string
	TranscribeURL     string
	PhrasesPath       string
	MetricsAddr       string
	LogPath           string
	LogLevel          string
	RedisDB           int
	TasbeehTarget     int
	HistoryDays       int
	TranscribeTimeout time.Duration
	DesktopNotify     bool
}

// Default values
const (
	defaultTranscribeTimeout = 30 * time.Second
	defaultHistoryDays       = 7
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath:      getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		StorageBackend:    strings.ToLower(getEnvString("STORAGE_BACKEND", BackendSQLite)),
		RedisAddr:         getEnvString("REDIS_ADDR", ""),
		RedisPassword:     getEnvString("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		VoiceInbox:        getEnvString("VOICE_INBOX", ""),
		TranscribeURL:     getEnvString("TRANSCRIBE_URL", ""),
		TranscribeTimeout: getEnvDuration("TRANSCRIBE_TIMEOUT", defaultTranscribeTimeout),
		PhrasesPath:       getEnvString("PHRASES_PATH", ""),
		TasbeehTarget:     getEnvInt("TASBEEH_TARGET", models.DefaultTasbeehTarget),
		HistoryDays:       getEnvInt("HISTORY_DAYS", defaultHistoryDays),
		DesktopNotify:     getEnvBool("DESKTOP_NOTIFY", true),
		MetricsAddr:       getEnvString("METRICS_ADDR", ""),
		LogPath:           getEnvString("LOG_PATH", getDefaultLogPath()),
		LogLevel:          getEnvString("LOG_LEVEL", "info"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	catalogue, err := LoadCatalogue(cfg.PhrasesPath)
	if err != nil {
		return nil, err
	}
	cfg.Catalogue = catalogue

	// Ensure database directory exists
	if cfg.StorageBackend == BackendSQLite {
		if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
			return nil, err
		}
	}

	if cfg.VoiceInbox != "" {
		if err := ensureDir(cfg.VoiceInbox); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageBackend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when STORAGE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of sqlite, redis, memory (got %q)", c.StorageBackend)
	}

	if c.TasbeehTarget <= 0 {
		return fmt.Errorf("TASBEEH_TARGET must be positive (got %d)", c.TasbeehTarget)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("HISTORY_DAYS must be positive (got %d)", c.HistoryDays)
	}
	return nil
}

// VoiceEnabled reports whether the voice inbox should be watched.
func (c *Config) VoiceEnabled() bool {
	return c.VoiceInbox != ""
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
			filepath.Join(home, ".config", "dhikr-tally", ".env"),
			filepath.Join(home, ".dhikr-tally", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tally.db"
	}
	return filepath.Join(home, ".config", "dhikr-tally", "tally.db")
}

// getDefaultLogPath returns the default path for the log file.
func getDefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tally.log"
	}
	return filepath.Join(home, ".config", "dhikr-tally", "tally.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts the forms understood by strconv.ParseBool.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
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
